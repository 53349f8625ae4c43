package service

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mmynk/circles/internal/auth"
	"github.com/mmynk/circles/internal/drafts"
	"github.com/mmynk/circles/internal/middleware"
	"github.com/mmynk/circles/internal/models"
)

// maxDraftBytes bounds a stored question list.
const maxDraftBytes = 1 << 20

// DraftsHandler exposes the question draft store to the browser dashboard:
//
//	GET    /drafts/{key}  returns the saved list, [] when there is none
//	PUT    /drafts/{key}  replaces it with the JSON list in the body
//	DELETE /drafts/{key}  removes it
//
// Drafts are kept per signed-in user.
func DraftsHandler(store *drafts.Store, jwtManager *auth.JWTManager) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /drafts/{key}", func(w http.ResponseWriter, r *http.Request) {
		questions := store.Load(r.Context(), userDraftKey(r))
		writeJSON(w, http.StatusOK, questions)
	})
	mux.HandleFunc("PUT /drafts/{key}", func(w http.ResponseWriter, r *http.Request) {
		var questions []models.QuestionDraft
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDraftBytes)).Decode(&questions); err != nil {
			http.Error(w, "invalid draft: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := store.Save(r.Context(), userDraftKey(r), questions); err != nil {
			slog.Error("Failed to save draft", "key", r.PathValue("key"), "error", err)
			http.Error(w, "failed to save draft", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /drafts/{key}", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Clear(r.Context(), userDraftKey(r)); err != nil {
			slog.Error("Failed to clear draft", "key", r.PathValue("key"), "error", err)
			http.Error(w, "failed to clear draft", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return middleware.RequireAuthHTTP(jwtManager, mux)
}

func userDraftKey(r *http.Request) string {
	return middleware.GetUserID(r.Context()) + ":" + r.PathValue("key")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}
