package httpadapter

import (
	"encoding/json"
	"net/http"
)

func (rt *Router) listModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	summary, active, err := rt.selectUC.Catalog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": summary,
		"active":  active,
	})
}

func (rt *Router) selectModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		ModelNumber int `json:"model_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	info, err := rt.selectUC.Select(r.Context(), req.ModelNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordModelSelection(serviceName, info.Name)
	}
	writeJSON(w, http.StatusOK, info)
}
