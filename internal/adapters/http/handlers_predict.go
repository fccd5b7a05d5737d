package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/adhassan/salescast/internal/core/domain"
)

func (rt *Router) predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var input domain.PredictionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	result, record, err := rt.predictUC.Predict(r.Context(), input)
	if rt.metrics != nil {
		rt.metrics.RecordPrediction(serviceName, err, time.Since(start))
	}
	if err != nil {
		writeError(w, err)
		return
	}

	identity := identityFromContext(r.Context())
	record.ID = uuid.NewString()
	record.UserID = identity.UserID
	record.CreatedAt = time.Now().UTC()
	if err := rt.predictions.Append(r.Context(), record); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) ownPredictions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	identity := identityFromContext(r.Context())
	records, err := rt.predictions.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (rt *Router) allPredictions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	records, err := rt.predictions.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (rt *Router) userPredictions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	userID := pathSuffix(r.URL.Path, "/v1/admin/predictions/")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user id is required"})
		return
	}

	records, err := rt.predictions.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
