package adapthttp

import "net/http"

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	chatID, err := int64Query(r, "chat_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rows, err := s.leaderboard.Leaderboard(r.Context(), chatID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": rows})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	chatID, err := int64Query(r, "chat_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	userID, err := int64Query(r, "user_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := s.leaderboard.Profile(r.Context(), userID, chatID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
