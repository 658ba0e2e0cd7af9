package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(15 * time.Second))
	return r
}

// SystemHandler: healthz + echo, endpoint servis tanpa dependensi.
type SystemHandler struct {
	Service string
	Version string
}

func (h *SystemHandler) Register(r *chi.Mux) {
	r.Get("/healthz", h.health)
	r.Post("/system/echo", h.echo)
}

type HealthResp struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func (h *SystemHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResp{Status: "OK", Service: h.Service, Version: h.Version})
}

type EchoReq struct {
	Message   string `json:"message"`
	Uppercase bool   `json:"uppercase"`
	// pointer supaya "times tidak dikirim" (default 1) bisa dibedakan dari
	// "times": 0 (ditolak).
	Times *int `json:"times"`
}

type EchoResp struct {
	Message string `json:"message"`
	Length  int    `json:"length"`
}

const (
	echoMaxMessage = 255
	echoMaxTimes   = 10
)

func (h *SystemHandler) echo(w http.ResponseWriter, r *http.Request) {
	var req EchoReq
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if n := len([]rune(req.Message)); n < 1 || n > echoMaxMessage {
		writeJSON(w, http.StatusBadRequest,
			map[string]string{"error": "message must be 1-255 characters"})
		return
	}
	times := 1
	if req.Times != nil {
		times = *req.Times
	}
	if times < 1 || times > echoMaxTimes {
		writeJSON(w, http.StatusBadRequest,
			map[string]string{"error": "times must be between 1 and 10"})
		return
	}
	text := req.Message
	if req.Uppercase {
		text = strings.ToUpper(text)
	}
	text = strings.Repeat(text, times)
	writeJSON(w, http.StatusOK, EchoResp{Message: text, Length: len([]rune(text))})
}
