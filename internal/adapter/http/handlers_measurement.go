package adapthttp

import (
	"fmt"
	"net/http"

	"fatrate/internal/app"
)

// Numeric bounds enforced at the command boundary; the engine itself only
// checks height presence and positivity.
const (
	minHeightCm       = 100
	maxHeightCm       = 250
	minWeightKg       = 30
	maxAddWeightKg    = 200
	maxUpdateWeightKg = 300
)

func (s *Server) handleMeasurements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		UserID   int64   `json:"userId"`
		ChatID   int64   `json:"chatId"`
		Username string  `json:"username"`
		Height   float64 `json:"height"`
		Weight   float64 `json:"weight"`
		Date     string  `json:"date"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Height != 0 && (body.Height < minHeightCm || body.Height > maxHeightCm) {
		writeAppError(w, fmt.Errorf("%w: height must be %d-%d cm", app.ErrValidation, minHeightCm, maxHeightCm))
		return
	}
	if body.Weight < minWeightKg || body.Weight > maxAddWeightKg {
		writeAppError(w, fmt.Errorf("%w: weight must be %d-%d kg", app.ErrValidation, minWeightKg, maxAddWeightKg))
		return
	}

	res, err := s.ranking.AddMeasurement(r.Context(), body.UserID, body.ChatID, body.Username, body.Height, body.Weight, body.Date)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleWeight(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		UserID int64   `json:"userId"`
		ChatID int64   `json:"chatId"`
		Weight float64 `json:"weight"`
		Date   string  `json:"date"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Weight < minWeightKg || body.Weight > maxUpdateWeightKg {
		writeAppError(w, fmt.Errorf("%w: weight must be %d-%d kg", app.ErrValidation, minWeightKg, maxUpdateWeightKg))
		return
	}

	res, err := s.ranking.UpdateWeight(r.Context(), body.UserID, body.ChatID, body.Weight, body.Date)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
