package httpapi

import (
	"encoding/json"
	"net/http"
	"time"
)

// writeJSON renders v as plain JSON. The legacy REST endpoints (as
// opposed to /api/v1 and /api/v1/scheduler) never negotiate content
// type; they have always been JSON-only.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func secondsToDuration(s int64) time.Duration {
	return time.Duration(s) * time.Second
}
