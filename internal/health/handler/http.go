package handler

import (
	"net/http"

	"auth-session-service/internal/platform/httpjson"
)

type statusBody struct {
	Status string `json:"status"`
}

// Live always answers 200 while the process is up.
func Live(w http.ResponseWriter, _ *http.Request) {
	httpjson.Write(w, http.StatusOK, statusBody{Status: "ok"})
}

// Ready answers 200 when c is ready and 503 otherwise.
func Ready(c *Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.Ready(r.Context()); err != nil {
			httpjson.WriteError(w, http.StatusServiceUnavailable, "not_ready", "dependencies unavailable")
			return
		}
		httpjson.Write(w, http.StatusOK, statusBody{Status: "ready"})
	}
}
