package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adhassan/salescast/internal/core/domain"
	"github.com/adhassan/salescast/internal/observability/metrics"
)

type tokensStub struct{}

func (tokensStub) Issue(user *domain.User) (string, error) { return "tok-" + user.ID, nil }

func (tokensStub) Verify(token string) (*domain.Identity, error) {
	switch token {
	case "admin-token":
		return &domain.Identity{UserID: "admin-1", Role: domain.RoleAdmin}, nil
	case "user-token":
		return &domain.Identity{UserID: "user-1", Role: domain.RoleUser}, nil
	default:
		return nil, domain.WrapError(domain.ErrUnauthorized, "verify token", errors.New("bad token"))
	}
}

type authStub struct {
	user *domain.User
	err  error
}

func (s *authStub) Register(context.Context, string, string, string) (*domain.User, error) {
	return s.user, s.err
}

func (s *authStub) Login(context.Context, string, string) (string, *domain.User, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	return "tok-" + s.user.ID, s.user, nil
}

type uploaderStub struct {
	ds      *domain.Dataset
	summary *domain.TrainingSummary
	err     error
	gotName string
	gotBy   string
}

func (s *uploaderStub) Upload(_ context.Context, filename, uploadedBy string, _ io.Reader) (*domain.Dataset, *domain.TrainingSummary, error) {
	s.gotName = filename
	s.gotBy = uploadedBy
	return s.ds, s.summary, s.err
}

type selectorStub struct {
	info    *domain.ActiveModelInfo
	summary *domain.TrainingSummary
	active  *domain.ActiveModelInfo
	err     error
}

func (s *selectorStub) Select(context.Context, int) (*domain.ActiveModelInfo, error) {
	return s.info, s.err
}

func (s *selectorStub) Catalog(context.Context) (*domain.TrainingSummary, *domain.ActiveModelInfo, error) {
	return s.summary, s.active, s.err
}

type predictorStub struct {
	result *domain.PredictionResult
	record *domain.PredictionRecord
	err    error
}

func (s *predictorStub) Predict(context.Context, domain.PredictionInput) (*domain.PredictionResult, *domain.PredictionRecord, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	rec := *s.record
	return s.result, &rec, nil
}

type datasetsStub struct {
	ds  *domain.Dataset
	err error
}

func (s *datasetsStub) Create(context.Context, *domain.Dataset) error { return nil }

func (s *datasetsStub) GetByID(context.Context, string) (*domain.Dataset, error) {
	return s.ds, s.err
}

func (s *datasetsStub) UpdateStatus(context.Context, string, domain.DatasetStatus, string) error {
	return nil
}

func (s *datasetsStub) SetRowCount(context.Context, string, int) error { return nil }

type usersStub struct {
	user    *domain.User
	updated *domain.User
	deleted string
	err     error
}

func (s *usersStub) Create(context.Context, *domain.User) error { return nil }

func (s *usersStub) GetByID(context.Context, string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	copyUser := *s.user
	return &copyUser, nil
}

func (s *usersStub) GetByEmail(context.Context, string) (*domain.User, error) {
	return s.user, s.err
}

func (s *usersStub) List(context.Context) ([]domain.User, error) {
	if s.user == nil {
		return []domain.User{}, nil
	}
	return []domain.User{*s.user}, nil
}

func (s *usersStub) Update(_ context.Context, user *domain.User) error {
	s.updated = user
	return nil
}

func (s *usersStub) Delete(_ context.Context, id string) error {
	s.deleted = id
	return nil
}

type rolesStub struct{}

func (rolesStub) Create(context.Context, *domain.Role) error { return nil }

func (rolesStub) GetByID(context.Context, string) (*domain.Role, error) {
	return &domain.Role{ID: "r-1", Name: "analyst"}, nil
}

func (rolesStub) List(context.Context) ([]domain.Role, error) {
	return []domain.Role{{ID: "r-1", Name: "analyst"}}, nil
}

func (rolesStub) Update(context.Context, *domain.Role) error { return nil }
func (rolesStub) Delete(context.Context, string) error       { return nil }

type predictionsStub struct {
	appended []*domain.PredictionRecord
	records  []domain.PredictionRecord
	err      error
}

func (s *predictionsStub) Append(_ context.Context, rec *domain.PredictionRecord) error {
	if s.err != nil {
		return s.err
	}
	s.appended = append(s.appended, rec)
	return nil
}

func (s *predictionsStub) List(context.Context) ([]domain.PredictionRecord, error) {
	return s.records, nil
}

func (s *predictionsStub) ListByUser(context.Context, string) ([]domain.PredictionRecord, error) {
	return s.records, nil
}

type queueStub struct {
	published []string
	err       error
}

func (s *queueStub) PublishRetrainRequested(_ context.Context, datasetID string) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, datasetID)
	return nil
}

func (s *queueStub) SubscribeRetrainRequested(context.Context, func(context.Context, string) error) error {
	return nil
}

type testEnv struct {
	auth        *authStub
	uploader    *uploaderStub
	selector    *selectorStub
	predictor   *predictorStub
	datasets    *datasetsStub
	users       *usersStub
	predictions *predictionsStub
	queue       *queueStub
}

func newTestRouter(t *testing.T, env *testEnv, opts Options) http.Handler {
	t.Helper()
	if env.auth == nil {
		env.auth = &authStub{user: &domain.User{ID: "u-1", Email: "u@example.com", Role: domain.RoleUser}}
	}
	if env.uploader == nil {
		env.uploader = &uploaderStub{
			ds:      &domain.Dataset{ID: "ds-1", Status: domain.DatasetTrained},
			summary: &domain.TrainingSummary{DatasetID: "ds-1", RowsUsed: 30},
		}
	}
	if env.selector == nil {
		env.selector = &selectorStub{summary: &domain.TrainingSummary{DatasetID: "ds-1"}}
	}
	if env.predictor == nil {
		env.predictor = &predictorStub{
			result: &domain.PredictionResult{PredictedSales: 300, PredictedProfit: 110},
			record: &domain.PredictionRecord{Year: 2025, Month: 6, PredictedSales: 300, PredictedProfit: 110},
		}
	}
	if env.datasets == nil {
		env.datasets = &datasetsStub{ds: &domain.Dataset{ID: "ds-1"}}
	}
	if env.users == nil {
		env.users = &usersStub{user: &domain.User{ID: "u-1", Email: "u@example.com", Role: domain.RoleUser}}
	}
	if env.predictions == nil {
		env.predictions = &predictionsStub{}
	}
	if env.queue == nil {
		env.queue = &queueStub{}
	}

	router := NewRouter(
		env.auth, env.uploader, env.selector, env.predictor,
		env.datasets, env.users, rolesStub{}, env.predictions,
		env.queue, tokensStub{},
		metrics.NewHTTPServerMetrics(serviceName),
		opts,
	)
	return router.Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func decodeBody(t *testing.T, res *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(t, &testEnv{}, Options{})

	res := doJSON(t, handler, http.MethodGet, "/healthz", "", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestPredictRequiresAuth(t *testing.T) {
	handler := newTestRouter(t, &testEnv{}, Options{})

	res := doJSON(t, handler, http.MethodPost, "/v1/predict", "", map[string]any{"year": 2024})
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestPredictRecordsHistoryForCaller(t *testing.T) {
	env := &testEnv{}
	handler := newTestRouter(t, env, Options{})

	res := doJSON(t, handler, http.MethodPost, "/v1/predict", "user-token", map[string]any{
		"year": 2024, "month": 6, "units_sold": 150, "sale_price": 12.5, "cogs": 40,
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	body := decodeBody(t, res)
	if body["predicted_sales"] != float64(300) {
		t.Fatalf("unexpected body: %v", body)
	}
	if len(env.predictions.appended) != 1 {
		t.Fatalf("expected one history row, got %d", len(env.predictions.appended))
	}
	rec := env.predictions.appended[0]
	if rec.UserID != "user-1" || rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("history row not attributed: %+v", rec)
	}
	if rec.Year != 2025 {
		t.Fatalf("recorded year = %d", rec.Year)
	}
}

func TestPredictWithoutSelectedModel(t *testing.T) {
	env := &testEnv{predictor: &predictorStub{
		err: domain.WrapError(domain.ErrNoActiveModel, "load serving", errors.New("nothing selected")),
	}}
	handler := newTestRouter(t, env, Options{})

	res := doJSON(t, handler, http.MethodPost, "/v1/predict", "user-token", map[string]any{
		"year": 2024, "month": 6, "units_sold": 150, "sale_price": 12.5, "cogs": 40,
	})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if body := decodeBody(t, res); body["error"] != "no model selected yet" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestSelectModelUnknownNumber(t *testing.T) {
	env := &testEnv{selector: &selectorStub{
		err: domain.WrapError(domain.ErrModelNotFound, "select model", errors.New("no candidate with key 9")),
	}}
	handler := newTestRouter(t, env, Options{})

	res := doJSON(t, handler, http.MethodPost, "/v1/admin/models/select", "admin-token", map[string]any{"model_number": 9})
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
	if body := decodeBody(t, res); body["error"] != "invalid model number" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestAdminRoutesRejectUserRole(t *testing.T) {
	handler := newTestRouter(t, &testEnv{}, Options{})

	res := doJSON(t, handler, http.MethodGet, "/v1/admin/models", "user-token", nil)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
}

func TestUploadDatasetReturnsSummary(t *testing.T) {
	env := &testEnv{}
	handler := newTestRouter(t, env, Options{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "sales.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("Year,Month Number\n2014,1\n")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/datasets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer admin-token")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if env.uploader.gotName != "sales.csv" || env.uploader.gotBy != "admin-1" {
		t.Fatalf("uploader got name=%q by=%q", env.uploader.gotName, env.uploader.gotBy)
	}
	body := decodeBody(t, res)
	if body["summary"] == nil {
		t.Fatalf("expected training summary in response: %v", body)
	}
}

func TestRetrainScheduled(t *testing.T) {
	env := &testEnv{}
	handler := newTestRouter(t, env, Options{})

	res := doJSON(t, handler, http.MethodPost, "/v1/admin/datasets/ds-1/retrain", "admin-token", nil)
	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	if len(env.queue.published) != 1 || env.queue.published[0] != "ds-1" {
		t.Fatalf("queue published = %v", env.queue.published)
	}
}

func TestRetrainUnknownDataset(t *testing.T) {
	env := &testEnv{datasets: &datasetsStub{
		err: domain.WrapError(domain.ErrDatasetNotFound, "get dataset", errors.New("id=missing")),
	}}
	handler := newTestRouter(t, env, Options{})

	res := doJSON(t, handler, http.MethodPost, "/v1/admin/datasets/missing/retrain", "admin-token", nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestPatchUserAppliesOptionalFields(t *testing.T) {
	env := &testEnv{users: &usersStub{user: &domain.User{
		ID: "u-1", Name: "Ada", Email: "ada@example.com", Role: domain.RoleUser,
	}}}
	handler := newTestRouter(t, env, Options{})

	res := doJSON(t, handler, http.MethodPatch, "/v1/admin/users/u-1", "admin-token", map[string]any{
		"blocked": true,
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if env.users.updated == nil || !env.users.updated.Blocked {
		t.Fatalf("blocked flag not applied: %+v", env.users.updated)
	}
	if env.users.updated.Name != "Ada" {
		t.Fatalf("untouched field changed: %+v", env.users.updated)
	}
}

func TestPatchUserRejectsUnknownRole(t *testing.T) {
	handler := newTestRouter(t, &testEnv{}, Options{})

	res := doJSON(t, handler, http.MethodPatch, "/v1/admin/users/u-1", "admin-token", map[string]any{
		"role": "superuser",
	})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestDeleteOwnAccountRejected(t *testing.T) {
	handler := newTestRouter(t, &testEnv{}, Options{})

	res := doJSON(t, handler, http.MethodDelete, "/v1/admin/users/admin-1", "admin-token", nil)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestRegisterConflict(t *testing.T) {
	env := &testEnv{auth: &authStub{
		err: domain.WrapError(domain.ErrEmailTaken, "register user", errors.New("email ada@example.com")),
	}}
	handler := newTestRouter(t, env, Options{})

	res := doJSON(t, handler, http.MethodPost, "/v1/auth/register", "", map[string]any{
		"name": "Ada", "email": "ada@example.com", "password": "correct horse",
	})
	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", res.Code)
	}
}

func TestLoginReturnsToken(t *testing.T) {
	env := &testEnv{auth: &authStub{user: &domain.User{ID: "u-1", Email: "ada@example.com"}}}
	handler := newTestRouter(t, env, Options{})

	res := doJSON(t, handler, http.MethodPost, "/v1/auth/login", "", map[string]any{
		"email": "ada@example.com", "password": "correct horse",
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if body := decodeBody(t, res); body["token"] != "tok-u-1" {
		t.Fatalf("unexpected token: %v", body["token"])
	}
}
