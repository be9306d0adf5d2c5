package handler

import (
	"encoding/json"
	"net/http"
)

var screenEndpoints = []string{
	"POST /profile/screen",
	"GET /profile/screen",
	"DELETE /profile/screen",
	"POST /profile/screen/edit",
	"PATCH /profile/screen/edit",
	"DELETE /profile/screen/edit",
	"POST /profile/screen/edit/commit",
	"POST /profile/screen/photo",
	"DELETE /profile/screen/photo",
}

// Handler describes the API at its root path.
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"message":   "Profile Editor API",
		"path":      r.URL.Path,
		"docs":      "/swagger/index.html",
		"endpoints": screenEndpoints,
	})
}
