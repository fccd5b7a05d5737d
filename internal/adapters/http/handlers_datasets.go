package httpadapter

import (
	"net/http"
	"strings"
	"time"
)

func (rt *Router) uploadDataset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.opts.MaxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	identity := identityFromContext(r.Context())
	start := time.Now()
	ds, summary, err := rt.uploadUC.Upload(r.Context(), fileHeader.Filename, identity.UserID, file)
	if rt.metrics != nil {
		rowsUsed := 0
		if summary != nil {
			rowsUsed = summary.RowsUsed
		}
		rt.metrics.RecordTrainingRun(serviceName, "upload", rowsUsed, time.Since(start), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"dataset": ds,
		"summary": summary,
	})
}

// datasetSubroutes dispatches /v1/admin/datasets/{id} and
// /v1/admin/datasets/{id}/retrain.
func (rt *Router) datasetSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/admin/datasets/")
	if id, ok := strings.CutSuffix(rest, "/retrain"); ok {
		rt.scheduleRetrain(w, r, id)
		return
	}
	rt.getDataset(w, r, rest)
}

func (rt *Router) getDataset(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dataset id is required"})
		return
	}

	ds, err := rt.datasets.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// scheduleRetrain hands the dataset to the worker pool; the upload path
// trains inline, this one is for re-running on demand.
func (rt *Router) scheduleRetrain(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dataset id is required"})
		return
	}

	if _, err := rt.datasets.GetByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if err := rt.queue.PublishRetrainRequested(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":     "scheduled",
		"dataset_id": id,
	})
}
