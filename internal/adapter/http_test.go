// internal/adapter/http_test.go
package adapter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/camera-adapter/internal/focus"
	"github.com/tamzrod/camera-adapter/internal/hw"
)

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHandler_Zoom(t *testing.T) {
	a, port, _ := newAdapter(t, Options{})
	h := Handler(a)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodPost, "/zoom?stage=4").Code)
	assert.Equal(t, 4, a.Zoom().State().Current)
	assert.Len(t, port.Writes(hw.IndexDigitalZoom), 1)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/zoom?stage=40").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/zoom").Code)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodPost, "/zoom?stage=8&smooth=1").Code)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/zoom?stage=9&smooth=1").Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/zoom").Code)
	assert.True(t, a.Zoom().State().ReturnPending)
}

func TestHandler_FocusAndState(t *testing.T) {
	a, port, rec := newAdapter(t, Options{Focus: focus.Options{Mode: focus.ModeInfinity}})
	h := Handler(a)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodPost, "/focus").Code)
	results, _, _ := rec.snapshot()
	assert.Equal(t, []bool{true}, results)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodPost, "/focus/touch?x=320&y=240&w=64&h=48&pw=640&ph=480").Code)
	assert.Equal(t, []hw.Payload{hw.Words(127, 127, 25, 25)}, port.Writes(hw.IndexTouchFocusRegion))
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/focus/touch?x=1&y=1&w=1&h=1&pw=0&ph=480").Code)

	port.SetState(hw.StateIdle)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodPost, "/focus").Code)
	port.SetState(hw.StateExecuting)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodPost, "/faces?orientation=90").Code)

	res := do(t, h, http.MethodGet, "/state")
	require.Equal(t, http.StatusOK, res.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "idle", body["flags"])
	assert.Equal(t, "infinity", body["focus_mode"])
	assert.Equal(t, true, body["faces_running"])
	assert.Equal(t, float64(90), body["orientation"])
	assert.Equal(t, true, body["lock_3a"])
}
