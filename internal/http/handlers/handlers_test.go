package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/akaris/go-dns-admin-backend/internal/domain"
	"github.com/akaris/go-dns-admin-backend/internal/http/middleware"
	"github.com/akaris/go-dns-admin-backend/internal/repo"
	"github.com/akaris/go-dns-admin-backend/internal/services"
	"github.com/akaris/go-dns-admin-backend/internal/sessioncookie"
	"github.com/akaris/go-dns-admin-backend/internal/telemetry"
)

// testAPI is a fully wired API instance over a per-test database.
type testAPI struct {
	engine   *gin.Engine
	db       *gorm.DB
	recorder *telemetry.Recorder
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := repo.EnsureConfigRow(db); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	hash, err := services.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := repo.CreateUser(context.Background(), db, "admin", hash); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	sealer, err := sessioncookie.NewSealer(make([]byte, 32))
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}

	authSvc := services.NewAuthService(db, time.Hour)
	blocklistSvc := services.NewBlocklistService(db)
	rec := telemetry.NewRecorder(db, 64, time.Hour)
	go rec.Run()
	t.Cleanup(rec.Close)

	h := New(
		authSvc,
		&services.ActivityService{DB: db},
		blocklistSvc,
		rec,
		&services.ConfigService{DB: db},
		sealer,
		CookieOptions{Secure: false, TTL: time.Hour},
	)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/login", h.Login)

	authed := api.Group("")
	authed.Use(middleware.SessionAuth(sealer, authSvc))
	authed.POST("/auth/check", h.Check)
	authed.POST("/auth/logout", h.Logout)
	authed.GET("/activity", h.ListActivity)
	authed.GET("/blocklist", h.ListBlocklist)
	authed.POST("/blocklist", h.CreateBlocklistEntry)
	authed.DELETE("/blocklist", h.DeleteBlocklistEntry)
	authed.GET("/stats/live", h.LiveStats)
	authed.GET("/config", h.GetConfig)
	authed.PUT("/config", h.UpdateConfig)

	return &testAPI{engine: r, db: db, recorder: rec}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// login authenticates the seeded admin and returns the session cookie.
func (a *testAPI) login(t *testing.T) *http.Cookie {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": "admin", "password": "s3cret"}, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == sessioncookie.Name && c.Value != "" {
			return c
		}
	}
	t.Fatalf("login response has no session cookie")
	return nil
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body.Error
}

func TestLogin_SetsHardenedCookie(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": "admin", "password": "s3cret"}, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var sess *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessioncookie.Name {
			sess = c
		}
	}
	if sess == nil {
		t.Fatalf("no session cookie set")
	}
	if !sess.HttpOnly {
		t.Fatalf("session cookie must be HttpOnly")
	}
	if sess.SameSite != http.SameSiteStrictMode {
		t.Fatalf("session cookie SameSite = %v, want strict", sess.SameSite)
	}
	if sess.Path != "/" {
		t.Fatalf("session cookie path = %q, want /", sess.Path)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	api := newTestAPI(t)

	for _, body := range []gin.H{
		{"username": "admin", "password": "wrong"},
		{"username": "ghost", "password": "s3cret"},
	} {
		w := api.do(t, http.MethodPost, "/api/auth/login", body, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401 for %v", w.Code, body)
		}
		if code := errCode(t, w); code != "invalid_credentials" {
			t.Fatalf("error code = %q, want invalid_credentials", code)
		}
	}

	// Missing fields are a validation failure, not an auth failure.
	w := api.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": "admin"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSessionLifecycle_LoginCheckLogout(t *testing.T) {
	api := newTestAPI(t)

	// Unauthenticated check is rejected with the distinguished code.
	w := api.do(t, http.MethodPost, "/api/auth/check", nil, nil)
	if w.Code != http.StatusUnauthorized || errCode(t, w) != "authentication_required" {
		t.Fatalf("anonymous check: status %d body %s", w.Code, w.Body.String())
	}

	cookie := api.login(t)

	if w := api.do(t, http.MethodPost, "/api/auth/check", nil, cookie); w.Code != http.StatusNoContent {
		t.Fatalf("check status = %d", w.Code)
	}

	w = api.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == sessioncookie.Name && c.MaxAge >= 0 {
			t.Fatalf("logout must clear the cookie, got MaxAge %d", c.MaxAge)
		}
	}

	// The old cookie is dead server-side.
	if w := api.do(t, http.MethodPost, "/api/auth/check", nil, cookie); w.Code != http.StatusUnauthorized {
		t.Fatalf("check after logout status = %d, want 401", w.Code)
	}
}

func TestBlocklistEndpoints_FullCycle(t *testing.T) {
	api := newTestAPI(t)
	cookie := api.login(t)

	// Anonymous mutation is rejected.
	w := api.do(t, http.MethodPost, "/api/blocklist", gin.H{"domain": "ads.example"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create status = %d, want 401", w.Code)
	}

	w = api.do(t, http.MethodPost, "/api/blocklist", gin.H{"domain": "Ads.Example"}, cookie)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var created domain.BlocklistEntry
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.Domain != "ads.example" {
		t.Fatalf("created domain = %q, want normalized form", created.Domain)
	}

	w = api.do(t, http.MethodPost, "/api/blocklist", gin.H{"domain": "ads.example."}, cookie)
	if w.Code != http.StatusConflict || errCode(t, w) != "already_blocked" {
		t.Fatalf("duplicate create: status %d body %s", w.Code, w.Body.String())
	}

	w = api.do(t, http.MethodPost, "/api/blocklist", gin.H{"domain": "   "}, cookie)
	if w.Code != http.StatusBadRequest || errCode(t, w) != "invalid_argument" {
		t.Fatalf("invalid create: status %d body %s", w.Code, w.Body.String())
	}

	w = api.do(t, http.MethodGet, "/api/blocklist", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var page Page[domain.BlocklistEntry]
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.HasMore || page.NextOffset != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Top != 25 || page.Skip != 0 {
		t.Fatalf("default paging not applied: %+v", page)
	}

	w = api.do(t, http.MethodDelete, "/api/blocklist", gin.H{"domain": "ads.example"}, cookie)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	// Idempotent delete.
	w = api.do(t, http.MethodDelete, "/api/blocklist", gin.H{"domain": "ads.example"}, cookie)
	if w.Code != http.StatusNoContent {
		t.Fatalf("repeat delete status = %d", w.Code)
	}
}

func TestActivityEndpoint_PaginationEnvelope(t *testing.T) {
	api := newTestAPI(t)
	cookie := api.login(t)
	ctx := context.Background()

	if err := repo.InsertQueryEvents(ctx, api.db, []domain.QueryEvent{
		{TS: 1000, QName: "a.example", QType: 1},
		{TS: 2000, QName: "b.example", QType: 1},
	}); err != nil {
		t.Fatalf("insert queries: %v", err)
	}
	if err := repo.InsertErrorEvents(ctx, api.db, []domain.ErrorEvent{
		{TS: 3000, Message: "upstream timeout", ErrorType: 2},
	}); err != nil {
		t.Fatalf("insert errors: %v", err)
	}

	w := api.do(t, http.MethodGet, "/api/activity?top=2&skip=0", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var page Page[domain.ActivityRecord]
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 || !page.HasMore || page.NextOffset != 2 {
		t.Fatalf("unexpected first page: total=%d len=%d has_more=%v next=%d",
			page.Total, len(page.Items), page.HasMore, page.NextOffset)
	}
	if page.Items[0].Kind != domain.ActivityKindError || page.Items[0].Timestamp != 3000 {
		t.Fatalf("feed not newest-first: %+v", page.Items[0])
	}

	w = api.do(t, http.MethodGet, "/api/activity?top=2&skip=2", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("second page status = %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Items) != 1 || page.HasMore || page.NextOffset != 3 {
		t.Fatalf("unexpected last page: %+v", page)
	}

	// Out-of-range page size is rejected.
	w = api.do(t, http.MethodGet, "/api/activity?top=5000", nil, cookie)
	if w.Code != http.StatusBadRequest || errCode(t, w) != "invalid_argument" {
		t.Fatalf("oversized top: status %d body %s", w.Code, w.Body.String())
	}
}

func TestLiveStats_FreshProcessStartsAtZero(t *testing.T) {
	api := newTestAPI(t)
	cookie := api.login(t)

	w := api.do(t, http.MethodGet, "/api/stats/live", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var stats domain.LiveCounters
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Total != 0 || stats.Blocked != 0 || stats.Cached != 0 || stats.Errors != 0 || stats.SumDurationMS != 0 {
		t.Fatalf("fresh process counters not zero: %+v", stats)
	}
	if stats.LiveSince == 0 {
		t.Fatalf("live_since not set")
	}
}

func TestLiveStats_ReflectRecordedEvents(t *testing.T) {
	api := newTestAPI(t)
	cookie := api.login(t)

	api.recorder.RecordQuery(domain.QueryEvent{QName: "a.example", QType: 1, DurMS: 10, Blocked: true})
	api.recorder.RecordQuery(domain.QueryEvent{QName: "b.example", QType: 1, DurMS: 5, CacheHit: true})
	api.recorder.RecordError(domain.ErrorEvent{Message: "boom", ErrorType: 1})

	// Snapshot consistency is only guaranteed once the drain goroutine has
	// applied the events; poll briefly instead of assuming scheduling.
	deadline := time.Now().Add(2 * time.Second)
	for {
		s := api.recorder.Snapshot()
		if s.Total == 2 && s.Errors == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("recorder did not apply events in time: %+v", s)
		}
		time.Sleep(5 * time.Millisecond)
	}

	w := api.do(t, http.MethodGet, "/api/stats/live", nil, cookie)
	var stats domain.LiveCounters
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Total != 2 || stats.Blocked != 1 || stats.Cached != 1 || stats.Errors != 1 || stats.SumDurationMS != 15 {
		t.Fatalf("unexpected counters: %+v", stats)
	}
}

func TestConfigEndpoints_VersionedUpdate(t *testing.T) {
	api := newTestAPI(t)
	cookie := api.login(t)

	w := api.do(t, http.MethodGet, "/api/config", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var doc domain.ConfigDocument
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Version != 1 {
		t.Fatalf("seed version = %d, want 1", doc.Version)
	}

	w = api.do(t, http.MethodPut, "/api/config",
		gin.H{"version": 1, "data": gin.H{"upstream": "1.1.1.1"}}, cookie)
	if w.Code != http.StatusNoContent {
		t.Fatalf("put status = %d, body %s", w.Code, w.Body.String())
	}

	// A writer still holding version 1 lost the race.
	w = api.do(t, http.MethodPut, "/api/config",
		gin.H{"version": 1, "data": gin.H{"upstream": "8.8.8.8"}}, cookie)
	if w.Code != http.StatusConflict || errCode(t, w) != "version_conflict" {
		t.Fatalf("stale put: status %d body %s", w.Code, w.Body.String())
	}

	w = api.do(t, http.MethodGet, "/api/config", nil, cookie)
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Version != 2 {
		t.Fatalf("version after update = %d, want 2", doc.Version)
	}
	var data map[string]string
	if err := json.Unmarshal([]byte(doc.Data), &data); err != nil {
		t.Fatalf("stored data is not JSON: %v", err)
	}
	if data["upstream"] != "1.1.1.1" {
		t.Fatalf("stale write overwrote the document: %v", data)
	}
}

func TestAuthenticatedEndpoints_RejectAnonymous(t *testing.T) {
	api := newTestAPI(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/activity"},
		{http.MethodGet, "/api/blocklist"},
		{http.MethodGet, "/api/stats/live"},
		{http.MethodGet, "/api/config"},
		{http.MethodPost, "/api/auth/logout"},
	}
	for _, p := range paths {
		w := api.do(t, p.method, p.path, nil, nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", p.method, p.path, w.Code)
		}
		if code := errCode(t, w); code != "authentication_required" {
			t.Errorf("%s %s error code = %q", p.method, p.path, code)
		}
	}
}
