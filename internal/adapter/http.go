// internal/adapter/http.go
package adapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tamzrod/camera-adapter/internal/focus"
	"github.com/tamzrod/camera-adapter/internal/zoom"
)

// Handler exposes the adapter operations over HTTP:
//
//	POST   /focus                  run autofocus (blocks until the result)
//	DELETE /focus                  cancel autofocus
//	POST   /focus/touch?x=&y=&w=&h=&pw=&ph=
//	POST   /zoom?stage=N[&smooth=1]
//	DELETE /zoom                   stop smooth zoom
//	POST   /faces?orientation=N    start face detection
//	DELETE /faces                  stop face detection
//	GET    /state
func Handler(a *Adapter) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /focus", func(w http.ResponseWriter, r *http.Request) {
		reply(w, a.AutoFocus(r.Context()))
	})
	mux.HandleFunc("DELETE /focus", func(w http.ResponseWriter, r *http.Request) {
		reply(w, a.CancelAutoFocus(r.Context()))
	})
	mux.HandleFunc("POST /focus/touch", func(w http.ResponseWriter, r *http.Request) {
		v, err := intParams(r, "x", "y", "w", "h", "pw", "ph")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		reply(w, a.SetTouchFocus(r.Context(), v[0], v[1], v[2], v[3], v[4], v[5]))
	})

	mux.HandleFunc("POST /zoom", func(w http.ResponseWriter, r *http.Request) {
		v, err := intParams(r, "stage")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("smooth") == "1" {
			reply(w, a.StartSmoothZoom(v[0]))
			return
		}
		reply(w, a.SetParameters(r.Context(), Parameters{Zoom: &v[0]}))
	})
	mux.HandleFunc("DELETE /zoom", func(w http.ResponseWriter, r *http.Request) {
		reply(w, a.StopSmoothZoom())
	})

	mux.HandleFunc("POST /faces", func(w http.ResponseWriter, r *http.Request) {
		v, err := intParams(r, "orientation")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		reply(w, a.StartFaceDetection(r.Context(), v[0]))
	})
	mux.HandleFunc("DELETE /faces", func(w http.ResponseWriter, r *http.Request) {
		reply(w, a.StopFaceDetection(r.Context()))
	})

	mux.HandleFunc("GET /state", func(w http.ResponseWriter, r *http.Request) {
		z := a.Zoom().State()
		running, paused, orientation := a.FaceDetection()
		writeJSON(w, http.StatusOK, map[string]any{
			"flags":           a.State().String(),
			"focus_mode":      a.Focus().Mode().String(),
			"focus_running":   a.Focus().Running(),
			"focus_distances": a.Focus().Distances().String(),
			"lock_3a":         a.Focus().Lock3A().Locked(),
			"zoom":            z,
			"faces_running":   running,
			"faces_paused":    paused,
			"orientation":     orientation,
		})
	})

	return mux
}

func intParams(r *http.Request, names ...string) ([]int, error) {
	q := r.URL.Query()
	out := make([]int, len(names))
	for i, n := range names {
		v, err := strconv.Atoi(q.Get(n))
		if err != nil {
			return nil, errors.New("bad or missing parameter " + n)
		}
		out[i] = v
	}
	return out, nil
}

func reply(w http.ResponseWriter, err error) {
	if err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, focus.ErrBusy), errors.Is(err, zoom.ErrSmoothActive):
		return http.StatusConflict
	case errors.Is(err, focus.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, zoom.ErrOutOfRange), errors.Is(err, focus.ErrPreviewSize),
		errors.Is(err, focus.ErrTouchRegion), errors.Is(err, focus.ErrTooManyAreas):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
