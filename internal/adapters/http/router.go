package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/adhassan/salescast/internal/core/ports"
	"github.com/adhassan/salescast/internal/observability/metrics"
)

const serviceName = "api"

// Options are the HTTP-level knobs the router needs beyond its dependencies.
type Options struct {
	MaxUploadBytes int64
	RateLimitRPS   int
	RateLimitBurst int
	MaxInFlight    int
}

type Router struct {
	authUC    ports.AuthService
	uploadUC  ports.DatasetUploader
	selectUC  ports.ModelSelector
	predictUC ports.PredictionEngine

	datasets    ports.DatasetRepository
	users       ports.UserRepository
	roles       ports.RoleRepository
	predictions ports.PredictionRepository
	queue       ports.MessageQueue
	tokens      ports.TokenIssuer

	metrics *metrics.HTTPServerMetrics
	opts    Options
}

func NewRouter(
	authUC ports.AuthService,
	uploadUC ports.DatasetUploader,
	selectUC ports.ModelSelector,
	predictUC ports.PredictionEngine,
	datasets ports.DatasetRepository,
	users ports.UserRepository,
	roles ports.RoleRepository,
	predictions ports.PredictionRepository,
	queue ports.MessageQueue,
	tokens ports.TokenIssuer,
	m *metrics.HTTPServerMetrics,
	opts Options,
) *Router {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &Router{
		authUC:      authUC,
		uploadUC:    uploadUC,
		selectUC:    selectUC,
		predictUC:   predictUC,
		datasets:    datasets,
		users:       users,
		roles:       roles,
		predictions: predictions,
		queue:       queue,
		tokens:      tokens,
		metrics:     m,
		opts:        opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("/v1/auth/register", rt.register)
	mux.HandleFunc("/v1/auth/login", rt.login)

	mux.Handle("/v1/predict", rt.requireAuth(http.HandlerFunc(rt.predict)))
	mux.Handle("/v1/predictions", rt.requireAuth(http.HandlerFunc(rt.ownPredictions)))

	mux.Handle("/v1/admin/datasets", rt.requireAdmin(http.HandlerFunc(rt.uploadDataset)))
	mux.Handle("/v1/admin/datasets/", rt.requireAdmin(http.HandlerFunc(rt.datasetSubroutes)))
	mux.Handle("/v1/admin/models", rt.requireAdmin(http.HandlerFunc(rt.listModels)))
	mux.Handle("/v1/admin/models/select", rt.requireAdmin(http.HandlerFunc(rt.selectModel)))
	mux.Handle("/v1/admin/users", rt.requireAdmin(http.HandlerFunc(rt.listUsers)))
	mux.Handle("/v1/admin/users/", rt.requireAdmin(http.HandlerFunc(rt.userByID)))
	mux.Handle("/v1/admin/roles", rt.requireAdmin(http.HandlerFunc(rt.rolesCollection)))
	mux.Handle("/v1/admin/roles/", rt.requireAdmin(http.HandlerFunc(rt.roleByID)))
	mux.Handle("/v1/admin/predictions", rt.requireAdmin(http.HandlerFunc(rt.allPredictions)))
	mux.Handle("/v1/admin/predictions/", rt.requireAdmin(http.HandlerFunc(rt.userPredictions)))

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.opts.MaxInFlight, backpressureWait)
	handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": errorMessage(err)})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}
