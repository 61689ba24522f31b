package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/paxcalc-backend/internal/config"
	"github.com/stemsi/paxcalc-backend/internal/handler"
	"github.com/stemsi/paxcalc-backend/internal/middleware"
	"github.com/stemsi/paxcalc-backend/internal/model"
	"github.com/stemsi/paxcalc-backend/internal/repository"
	"github.com/stemsi/paxcalc-backend/internal/service"
	"github.com/stemsi/paxcalc-backend/internal/validator"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Setup()
	m.Run()
}

// ─── In-memory adapters ─────────────────────────────────────────────

type memIndexRepo struct {
	indices map[string]*model.PaxIndex
}

func indexID(year int, t model.IndexType) string {
	return fmt.Sprintf("%d:%s", year, t)
}

func (r *memIndexRepo) List(ctx context.Context) ([]model.PaxIndexSummary, error) {
	var out []model.PaxIndexSummary
	for _, idx := range r.indices {
		out = append(out, idx.Summary(model.IndexSourceStored))
	}
	return out, nil
}

func (r *memIndexRepo) Get(ctx context.Context, year int, t model.IndexType) (*model.PaxIndex, error) {
	if idx, ok := r.indices[indexID(year, t)]; ok {
		return idx, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memIndexRepo) Replace(ctx context.Context, idx *model.PaxIndex) error {
	r.indices[indexID(idx.Year, idx.IndexType)] = idx
	return nil
}

func (r *memIndexRepo) Delete(ctx context.Context, year int, t model.IndexType) error {
	if _, ok := r.indices[indexID(year, t)]; !ok {
		return repository.ErrNotFound
	}
	delete(r.indices, indexID(year, t))
	return nil
}

type memQueue struct{ records []model.CalculationRecord }

func (q *memQueue) Push(ctx context.Context, records ...model.CalculationRecord) error {
	q.records = append(q.records, records...)
	return nil
}

func (q *memQueue) Requeue(ctx context.Context, items ...model.QueuedCalculation) error {
	for _, item := range items {
		q.records = append(q.records, item.Record)
	}
	return nil
}

func (q *memQueue) Pop(ctx context.Context, timeout time.Duration) (*model.QueuedCalculation, error) {
	if len(q.records) == 0 {
		return nil, nil
	}
	rec := q.records[0]
	q.records = q.records[1:]
	return &model.QueuedCalculation{Record: rec}, nil
}

func (q *memQueue) Len(ctx context.Context) (int64, error) {
	return int64(len(q.records)), nil
}

type memLastUsed struct{ saved map[string]*model.LastUsed }

func (r *memLastUsed) Save(ctx context.Context, clientID string, lu *model.LastUsed) error {
	r.saved[clientID] = lu
	return nil
}

func (r *memLastUsed) Get(ctx context.Context, clientID string) (*model.LastUsed, error) {
	if lu, ok := r.saved[clientID]; ok {
		return lu, nil
	}
	return nil, repository.ErrNotFound
}

type memHistory struct{ queue *memQueue }

func (h *memHistory) InsertBatch(ctx context.Context, records []model.CalculationRecord) error {
	return nil
}

func (h *memHistory) Insert(ctx context.Context, rec model.CalculationRecord) error { return nil }

func (h *memHistory) ListRecent(ctx context.Context, limit int) ([]model.CalculationRecord, error) {
	return h.queue.records, nil
}

type memAdmins struct{ admins []*model.Admin }

func (r *memAdmins) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	for _, a := range r.admins {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memAdmins) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	for _, a := range r.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memAdmins) Create(ctx context.Context, a *model.Admin) error {
	a.ID = len(r.admins) + 1
	r.admins = append(r.admins, a)
	return nil
}

// ─── Fixture ────────────────────────────────────────────────────────

type testApp struct {
	engine   *gin.Engine
	queue    *memQueue
	lastUsed *memLastUsed
	indices  *memIndexRepo
	auth     *service.AuthService

	healthErr error
}

func fixtureIndex(version string) *model.PaxIndex {
	released := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	return model.NewPaxIndex(2025, model.IndexTypeSolo, version, released, released, []model.ClassGroup{
		{
			ID:   "street",
			Name: "Street",
			Classes: []model.Class{
				{Code: "SS", Name: "Super Street", PaxIndex: 0.844, IsActive: true},
				{Code: "GS", Name: "G Street", PaxIndex: 0.83, IsActive: true},
				{Code: "HS", Name: "H Street", PaxIndex: 0.8, IsActive: false},
			},
		},
	})
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		GinMode:    gin.TestMode,
		JWTSecret:  "router-test",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	log := zerolog.Nop()

	app := &testApp{
		queue:    &memQueue{},
		lastUsed: &memLastUsed{saved: map[string]*model.LastUsed{}},
		indices:  &memIndexRepo{indices: map[string]*model.PaxIndex{}},
	}

	paxSvc := service.NewPaxService(app.indices, nil, []*model.PaxIndex{fixtureIndex("bundled")}, 0, log)
	calcSvc := service.NewCalculatorService(paxSvc, app.queue, app.lastUsed, &memHistory{queue: app.queue}, log)
	app.auth = service.NewAuthService(cfg, &memAdmins{})
	if _, err := app.auth.CreateAdmin(ctx, "chief@example.com", "Chief", "secret-pass"); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	systemHandler := handler.NewSystemHandler(map[string]handler.HealthCheck{
		"store": func(ctx context.Context) error { return app.healthErr },
	}, app.queue, log)

	handlers := &Handlers{
		Auth:       handler.NewAuthHandler(app.auth),
		Pax:        handler.NewPaxHandler(paxSvc, service.NewExportService(), log),
		Calculator: handler.NewCalculatorHandler(calcSvc),
		WS:         handler.NewWSHandler(calcSvc, log, nil),
		System:     systemHandler,
	}
	app.engine = SetupRouter(app.auth, handlers, middleware.NewRateLimiter(ctx, 100, time.Minute), cfg)
	return app
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func (a *testApp) do(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, env
}

func errCode(env envelope) string {
	if env.Error == nil {
		return ""
	}
	return env.Error.Code
}

func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	w, env := a.do(t, http.MethodPost, "/api/v1/auth/admin/login",
		map[string]string{"email": "chief@example.com", "password": "secret-pass"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	var resp model.AdminLoginResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return resp.Token
}

// ─── Tests ──────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	w, _ := app.do(t, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	app.healthErr = errors.New("connection refused")
	w, env := app.do(t, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if env.Error == nil || env.Error.Code != "SERVICE_UNAVAILABLE" {
		t.Fatalf("error = %+v, want SERVICE_UNAVAILABLE", env.Error)
	}
	if !strings.Contains(string(env.Data), "connection refused") {
		t.Errorf("report does not name the failure: %s", env.Data)
	}
}

func TestIndexRoutes(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, http.MethodGet, "/api/v1/indices", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list struct {
		Indices []model.PaxIndexSummary `json:"indices"`
	}
	json.Unmarshal(env.Data, &list)
	if len(list.Indices) != 1 || list.Indices[0].Source != model.IndexSourceBundled {
		t.Errorf("indices = %+v", list.Indices)
	}

	w, env = app.do(t, http.MethodGet, "/api/v1/indices/2025/Solo", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
		t.Errorf("Cache-Control = %q", cc)
	}
	var got struct {
		Index model.PaxIndex `json:"index"`
	}
	json.Unmarshal(env.Data, &got)
	if _, ok := got.Index.ClassesByCode["GS"]; !ok {
		t.Errorf("decoded index lacks GS")
	}

	w, env = app.do(t, http.MethodGet, "/api/v1/indices/latest/Solo/classes", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("classes status = %d", w.Code)
	}
	var classes struct {
		Classes []model.Class `json:"classes"`
	}
	json.Unmarshal(env.Data, &classes)
	if len(classes.Classes) != 2 {
		t.Errorf("active classes = %d, want 2", len(classes.Classes))
	}

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/v1/indices/abc/Solo", http.StatusBadRequest, "INVALID_YEAR"},
		{"/api/v1/indices/2019/Solo", http.StatusNotFound, "INDEX_NOT_FOUND"},
		{"/api/v1/indices/2025/Rally", http.StatusNotFound, "INDEX_NOT_FOUND"},
	}
	for _, tt := range tests {
		w, env := app.do(t, http.MethodGet, tt.path, nil, nil)
		if w.Code != tt.status || errCode(env) != tt.code {
			t.Errorf("%s = %d %s, want %d %s", tt.path, w.Code, errCode(env), tt.status, tt.code)
		}
	}
}

func TestCalculateRoutes(t *testing.T) {
	app := newTestApp(t)
	headers := map[string]string{"X-Client-ID": "browser-1"}

	w, env := app.do(t, http.MethodPost, "/api/v1/calculate", map[string]any{
		"year": 2025, "index_type": "Solo", "time": "1:00.000", "from_class": "SS", "to_class": "GS",
	}, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Client-ID") != "browser-1" {
		t.Errorf("client id not echoed")
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", w.Header().Get("Cache-Control"))
	}

	var got struct {
		Calculation model.Calculation `json:"calculation"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Calculation.FormattedOutput != "61.012" || got.Calculation.FormattedDifference != "+1.012" {
		t.Errorf("calculation = %+v", got.Calculation)
	}
	if len(app.queue.records) != 1 || app.queue.records[0].ClientID != "browser-1" {
		t.Errorf("queued = %+v", app.queue.records)
	}

	w, env = app.do(t, http.MethodGet, "/api/v1/calculate/last", nil, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("last status = %d", w.Code)
	}
	var last struct {
		LastUsed model.LastUsed `json:"last_used"`
	}
	json.Unmarshal(env.Data, &last)
	if last.LastUsed.Time != "1:00.000" || last.LastUsed.ToClass != "GS" {
		t.Errorf("last used = %+v", last.LastUsed)
	}

	w, env = app.do(t, http.MethodGet, "/api/v1/calculate/last", nil, map[string]string{"X-Client-ID": "browser-2"})
	if w.Code != http.StatusNotFound || errCode(env) != "NO_LAST_USED" {
		t.Errorf("fresh client = %d %s, want 404 NO_LAST_USED", w.Code, errCode(env))
	}
}

func TestCalculateFailures(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		body   map[string]any
		status int
		code   string
		field  string
	}{
		{"bad time", map[string]any{"index_type": "Solo", "time": "1:2:3", "from_class": "SS", "to_class": "GS"}, http.StatusBadRequest, "VALIDATION_ERROR", "time"},
		{"long time", map[string]any{"index_type": "Solo", "time": strings.Repeat("1", 4096), "from_class": "SS", "to_class": "GS"}, http.StatusBadRequest, "VALIDATION_ERROR", "time"},
		{"oversized body", map[string]any{"index_type": "Solo", "time": strings.Repeat("1", 64<<10), "from_class": "SS", "to_class": "GS"}, http.StatusBadRequest, "VALIDATION_ERROR", "detail"},
		{"bad type", map[string]any{"index_type": "Rally", "time": "60", "from_class": "SS", "to_class": "GS"}, http.StatusBadRequest, "VALIDATION_ERROR", "index_type"},
		{"zero time", map[string]any{"index_type": "Solo", "time": "0", "from_class": "SS", "to_class": "GS"}, http.StatusBadRequest, "INVALID_TIME", ""},
		{"unknown class", map[string]any{"index_type": "Solo", "time": "60", "from_class": "SS", "to_class": "ZZ"}, http.StatusNotFound, "CLASS_NOT_FOUND", ""},
		{"unknown year", map[string]any{"year": 2019, "index_type": "Solo", "time": "60", "from_class": "SS", "to_class": "GS"}, http.StatusNotFound, "INDEX_NOT_FOUND", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := app.do(t, http.MethodPost, "/api/v1/calculate", tt.body, nil)
			if w.Code != tt.status || errCode(env) != tt.code {
				t.Fatalf("got %d %s, want %d %s (%s)", w.Code, errCode(env), tt.status, tt.code, w.Body.String())
			}
			if tt.field != "" {
				if _, ok := env.Error.Fields[tt.field]; !ok {
					t.Errorf("fields = %v, want %s", env.Error.Fields, tt.field)
				}
			}
		})
	}
	if len(app.queue.records) != 0 {
		t.Errorf("failed calculations were queued")
	}
}

func TestValidateIndexRoute(t *testing.T) {
	app := newTestApp(t)

	broken := fixtureIndex("broken")
	broken.ClassGroups[0].Classes = append(broken.ClassGroups[0].Classes, model.Class{Code: "SS", Name: "Dup", PaxIndex: 1.1})

	w, env := app.do(t, http.MethodPost, "/api/v1/indices/validate", broken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got struct {
		Result model.ValidationResult `json:"result"`
	}
	json.Unmarshal(env.Data, &got)
	if got.Result.IsValid {
		t.Errorf("broken index reported valid")
	}
	if got.Result.ClassCount != 4 || len(got.Result.Warnings) != 1 {
		t.Errorf("result = %+v", got.Result)
	}

	w, env = app.do(t, http.MethodPost, "/api/v1/indices/validate", `{"year":`, nil)
	if w.Code != http.StatusBadRequest || errCode(env) != "INVALID_PAYLOAD" {
		t.Errorf("malformed = %d %s", w.Code, errCode(env))
	}
}

func TestAdminRoutes(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, http.MethodGet, "/api/v1/admin/calculations", nil, nil)
	if w.Code != http.StatusUnauthorized || errCode(env) != "TOKEN_REQUIRED" {
		t.Fatalf("anonymous = %d %s", w.Code, errCode(env))
	}

	w, env = app.do(t, http.MethodPost, "/api/v1/auth/admin/login",
		map[string]string{"email": "chief@example.com", "password": "wrong-pass"}, nil)
	if w.Code != http.StatusUnauthorized || errCode(env) != "INVALID_CREDENTIALS" {
		t.Errorf("wrong password = %d %s", w.Code, errCode(env))
	}

	auth := map[string]string{"Authorization": "Bearer " + app.adminToken(t)}

	w, _ = app.do(t, http.MethodGet, "/api/v1/auth/admin/me", nil, auth)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "chief@example.com") {
		t.Errorf("me = %d %s", w.Code, w.Body.String())
	}

	broken := fixtureIndex("broken")
	broken.Year = 1999
	w, env = app.do(t, http.MethodPost, "/api/v1/admin/indices", broken, auth)
	if w.Code != http.StatusUnprocessableEntity || errCode(env) != "INDEX_INVALID" {
		t.Fatalf("invalid import = %d %s", w.Code, errCode(env))
	}
	if !strings.Contains(string(env.Data), "invalid year: 1999") {
		t.Errorf("data = %s, want validation report", env.Data)
	}

	w, _ = app.do(t, http.MethodPost, "/api/v1/admin/indices", fixtureIndex("2025.2"), auth)
	if w.Code != http.StatusCreated {
		t.Fatalf("import = %d %s", w.Code, w.Body.String())
	}
	if _, err := app.indices.Get(context.Background(), 2025, model.IndexTypeSolo); err != nil {
		t.Errorf("imported index not stored: %v", err)
	}

	w, env = app.do(t, http.MethodGet, "/api/v1/indices", nil, nil)
	var list struct {
		Indices []model.PaxIndexSummary `json:"indices"`
	}
	json.Unmarshal(env.Data, &list)
	if len(list.Indices) != 1 || list.Indices[0].Source != model.IndexSourceStored || list.Indices[0].Version != "2025.2" {
		t.Errorf("indices after import = %+v", list.Indices)
	}

	w, _ = app.do(t, http.MethodGet, "/api/v1/admin/calculations?limit=5", nil, auth)
	if w.Code != http.StatusOK {
		t.Errorf("calculations = %d", w.Code)
	}

	w, _ = app.do(t, http.MethodDelete, "/api/v1/admin/indices/2025/Solo", nil, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("delete = %d %s", w.Code, w.Body.String())
	}
	w, env = app.do(t, http.MethodGet, "/api/v1/indices/2025/Solo", nil, nil)
	var got struct {
		Index model.PaxIndex `json:"index"`
	}
	json.Unmarshal(env.Data, &got)
	if w.Code != http.StatusOK || got.Index.Version != "bundled" {
		t.Errorf("after delete = %d version %q, want bundled", w.Code, got.Index.Version)
	}

	w, env = app.do(t, http.MethodDelete, "/api/v1/admin/indices/2025/Solo", nil, auth)
	if w.Code != http.StatusNotFound || errCode(env) != "INDEX_NOT_FOUND" {
		t.Errorf("second delete = %d %s", w.Code, errCode(env))
	}
}

func TestExportRoute(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/indices/2025/Solo/export?time=1:00.000&class=SS", nil)
	req.Header.Set("Accept-Encoding", "br")
	w := httptest.NewRecorder()
	app.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if enc := w.Header().Get("Content-Encoding"); enc != "" {
		t.Errorf("workbook was re-encoded as %q", enc)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "pax-2025-Solo-SS.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Conversion", "D5"); v != "61.012" {
		t.Errorf("D5 = %q, want 61.012", v)
	}

	w2, env := app.do(t, http.MethodGet, "/api/v1/indices/2025/Solo/export?time=abc&class=SS", nil, nil)
	if w2.Code != http.StatusBadRequest || errCode(env) != "INVALID_TIME" {
		t.Errorf("bad time = %d %s", w2.Code, errCode(env))
	}

	w3, env := app.do(t, http.MethodGet, "/api/v1/indices/2025/Solo/export?class=SS&time="+strings.Repeat("9", 1024), nil, nil)
	if w3.Code != http.StatusBadRequest || errCode(env) != "INVALID_TIME" {
		t.Errorf("long time = %d %s", w3.Code, errCode(env))
	}
}
