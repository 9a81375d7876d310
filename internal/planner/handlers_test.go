package planner

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studysync-backend/internal/auth"
)

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return r.WithContext(auth.WithUserID(r.Context(), 1))
}

func TestBlueprintHandler_Unauthorized(t *testing.T) {
	h := BlueprintHandler(nil, nil, nil)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/planner/blueprint", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBlueprintHandler_BadDate(t *testing.T) {
	h := BlueprintHandler(nil, nil, nil)

	w := httptest.NewRecorder()
	h(w, authedRequest(http.MethodGet, "/planner/blueprint?date=03-02-2026", ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRescheduleHandler_BadBody(t *testing.T) {
	h := RescheduleHandler(nil, nil, nil)

	w := httptest.NewRecorder()
	h(w, authedRequest(http.MethodPost, "/planner/reschedule", "{not json"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRescheduleHandler_MissingReflectionID(t *testing.T) {
	h := RescheduleHandler(nil, nil, nil)

	w := httptest.NewRecorder()
	h(w, authedRequest(http.MethodPost, "/planner/reschedule", `{}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFocusHandler_Unauthorized(t *testing.T) {
	h := FocusHandler(nil, nil, nil)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/planner/focus", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdjustHandler_Unauthorized(t *testing.T) {
	h := AdjustHandler(nil)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/planner/adjust", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdjustHandler_Overload(t *testing.T) {
	e := newTestEngine(&fakeTaskStore{}, &fakeRoutineStore{}, &fakeReflectionStore{})
	h := AdjustHandler(e)

	body := `{"sessions":[
		{"task_id":1,"title":"Thesis","minutes":3100,"priority":5},
		{"task_id":2,"title":"Flashcards","minutes":45,"priority":1}
	]}`
	w := httptest.NewRecorder()
	h(w, authedRequest(http.MethodPost, "/planner/adjust", body))

	require.Equal(t, http.StatusOK, w.Code)

	var res AdjustResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.True(t, res.Overloaded)
	assert.Equal(t, 3145, res.TotalMinutes)
	require.NotNil(t, res.Suggestion)
	assert.Equal(t, 2, res.Suggestion.TaskID)
}

func TestAdjustHandler_UnderThreshold(t *testing.T) {
	e := newTestEngine(&fakeTaskStore{}, &fakeRoutineStore{}, &fakeReflectionStore{})
	h := AdjustHandler(e)

	w := httptest.NewRecorder()
	h(w, authedRequest(http.MethodPost, "/planner/adjust", `{"sessions":[{"task_id":1,"minutes":120,"priority":3}]}`))

	require.Equal(t, http.StatusOK, w.Code)

	var res AdjustResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.False(t, res.Overloaded)
	assert.Nil(t, res.Suggestion)
}
