package http

import "net/http"

// GetNotifications drains the session's pending toasts.
func GetNotifications(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	respondJSON(w, http.StatusOK, sess.Inbox.Drain())
}
