package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"todo_webapp/internal/assistant"
	"todo_webapp/internal/config"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/service"
	"todo_webapp/internal/storage/sqlite"
	"todo_webapp/internal/ws"

	"github.com/gin-gonic/gin"
)

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T, assistantURL string) *testAPI {
	t.Helper()
	return newTestAPIWith(t, assistantURL, nil)
}

func newTestAPIWith(t *testing.T, assistantURL string, tune func(*config.Config)) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service.InitJWT("routes-test-secret", time.Hour)
	middleware.InitRedisRateLimiter(nil)

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{
		SessionCookieName:   "session",
		SignupEnabled:       true,
		APIRateLimit:        1000,
		APIRateWindow:       time.Minute,
		AuthRateLimit:       1000,
		AuthRateWindow:      time.Minute,
		AssistantRateLimit:  1000,
		AssistantRateWindow: time.Minute,
	}
	if tune != nil {
		tune(cfg)
	}

	hub := ws.NewHub()
	audit := service.NewAuditService(store.Audit())

	var client service.Assistant
	if c := assistant.New(assistantURL, time.Second); c != nil {
		client = c
	}

	h := handlers.NewHandler(
		service.NewTaskService(store.Tasks(), audit, hub),
		service.NewAccountService(store.Accounts(), audit),
		service.NewAssistantService(client, service.NewMemoryActivityStore(), audit, hub),
		audit,
		handlers.SessionConfig{CookieName: cfg.SessionCookieName, SignupEnabled: true},
	)

	r := gin.New()
	RegisterRoutes(r, Deps{
		Config:  cfg,
		Handler: h,
		Health:  handlers.NewHealthHandler(store, nil, "test"),
		Hub:     hub,
	})
	return &testAPI{t: t, router: r}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "routes-test/1.0")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) signup(email string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/auth/signup", "", gin.H{"email": email, "password": "password123"})
	if w.Code != http.StatusCreated {
		a.t.Fatalf("signup: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(a.t, w, &resp)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	api := newTestAPI(t, "")
	token := api.signup("alice@example.com")

	w := api.do(http.MethodPost, "/api/v1/todos", token, gin.H{"title": "  Buy milk ", "description": "2 litres"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var task domain.Task
	decode(t, w, &task)
	if task.Title != "Buy milk" || task.Completed {
		t.Fatalf("created = %+v", task)
	}

	w = api.do(http.MethodPatch, "/api/v1/todos/"+task.ID+"/toggle", token, gin.H{"completed": true})
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: %d %s", w.Code, w.Body.String())
	}
	decode(t, w, &task)
	if !task.Completed {
		t.Fatal("expected completed")
	}

	w = api.do(http.MethodPut, "/api/v1/todos/"+task.ID, token, gin.H{"title": "Buy oat milk"})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	decode(t, w, &task)
	if task.Title != "Buy oat milk" || task.DescriptionText() != "2 litres" {
		t.Fatalf("updated = %+v", task)
	}

	w = api.do(http.MethodGet, "/api/v1/todos/"+task.ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}

	w = api.do(http.MethodDelete, "/api/v1/todos/"+task.ID, token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	w = api.do(http.MethodDelete, "/api/v1/todos/"+task.ID, token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d", w.Code)
	}
}

func TestTaskValidation(t *testing.T) {
	api := newTestAPI(t, "")
	token := api.signup("bob@example.com")

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"blank title", http.MethodPost, "/api/v1/todos", gin.H{"title": "   "}, http.StatusBadRequest},
		{"missing title", http.MethodPost, "/api/v1/todos", gin.H{}, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/api/v1/todos/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown task", http.MethodGet, "/api/v1/todos/00000000-0000-0000-0000-000000000001", nil, http.StatusNotFound},
		{"bad filter", http.MethodGet, "/api/v1/todos?filter=done", nil, http.StatusBadRequest},
		{"bad sort", http.MethodGet, "/api/v1/todos?sort=random", nil, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := api.do(tc.method, tc.path, token, tc.body); w.Code != tc.want {
				t.Fatalf("status %d, want %d: %s", w.Code, tc.want, w.Body.String())
			}
		})
	}

	w := api.do(http.MethodPost, "/api/v1/todos", token, gin.H{"title": "x"})
	var task domain.Task
	decode(t, w, &task)

	if w := api.do(http.MethodPut, "/api/v1/todos/"+task.ID, token, gin.H{"title": " ", "description": ""}); w.Code != http.StatusBadRequest {
		t.Fatalf("blank update: %d", w.Code)
	}
	if w := api.do(http.MethodPatch, "/api/v1/todos/"+task.ID+"/toggle", token, gin.H{"completed": "yes"}); w.Code != http.StatusBadRequest {
		t.Fatalf("non-bool toggle: %d", w.Code)
	}
	if w := api.do(http.MethodPatch, "/api/v1/todos/"+task.ID+"/toggle", token, gin.H{}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing completed: %d", w.Code)
	}
}

func TestListPipeline(t *testing.T) {
	api := newTestAPI(t, "")
	token := api.signup("carol@example.com")

	for _, title := range []string{"banana", "Apple", "cherry pie"} {
		if w := api.do(http.MethodPost, "/api/v1/todos", token, gin.H{"title": title}); w.Code != http.StatusCreated {
			t.Fatalf("create %q: %d", title, w.Code)
		}
	}

	var list []domain.Task
	decode(t, api.do(http.MethodGet, "/api/v1/todos?sort=a-z", token, nil), &list)
	if len(list) != 3 || list[0].Title != "Apple" || list[1].Title != "banana" {
		t.Fatalf("a-z = %+v", list)
	}

	decode(t, api.do(http.MethodGet, "/api/v1/todos?q=PIE", token, nil), &list)
	if len(list) != 1 || list[0].Title != "cherry pie" {
		t.Fatalf("search = %+v", list)
	}

	decode(t, api.do(http.MethodGet, "/api/v1/todos?filter=completed", token, nil), &list)
	if len(list) != 0 {
		t.Fatalf("completed = %+v", list)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	api := newTestAPI(t, "")
	alice := api.signup("alice@example.com")
	mallory := api.signup("mallory@example.com")

	var task domain.Task
	decode(t, api.do(http.MethodPost, "/api/v1/todos", alice, gin.H{"title": "private"}), &task)

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/todos/" + task.ID},
		{http.MethodPut, "/api/v1/todos/" + task.ID},
		{http.MethodPatch, "/api/v1/todos/" + task.ID + "/toggle"},
		{http.MethodDelete, "/api/v1/todos/" + task.ID},
	} {
		body := gin.H{"title": "stolen", "completed": true}
		if w := api.do(req.method, req.path, mallory, body); w.Code != http.StatusNotFound {
			t.Fatalf("%s %s as other user: %d", req.method, req.path, w.Code)
		}
	}

	w := api.do(http.MethodDelete, "/api/v1/todos", mallory, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete all: %d", w.Code)
	}

	var list []domain.Task
	decode(t, api.do(http.MethodGet, "/api/v1/todos", alice, nil), &list)
	if len(list) != 1 || list[0].Title != "private" {
		t.Fatalf("alice tasks = %+v", list)
	}
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t, "")

	if w := api.do(http.MethodGet, "/api/v1/todos", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list: %d", w.Code)
	}

	api.signup("dave@example.com")
	w := api.do(http.MethodPost, "/api/v1/auth/signup", "", gin.H{"email": "DAVE@example.com", "password": "password123"})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: %d", w.Code)
	}

	w = api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "dave@example.com", "password": "wrong-password"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", w.Code)
	}

	w = api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "dave@example.com", "password": "password123"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string         `json:"token"`
		User  domain.Account `json:"user"`
	}
	decode(t, w, &resp)
	if resp.User.Email != "dave@example.com" {
		t.Fatalf("user = %+v", resp.User)
	}
	if len(w.Result().Cookies()) == 0 {
		t.Fatal("expected session cookie")
	}

	w = api.do(http.MethodGet, "/api/me", resp.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d", w.Code)
	}

	w = api.do(http.MethodPost, "/api/v1/auth/logout", resp.Token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout: %d", w.Code)
	}

	var logs []domain.AuditLog
	decode(t, api.do(http.MethodGet, "/api/v1/audit?limit=10", resp.Token, nil), &logs)
	if len(logs) == 0 || logs[0].Action != domain.AuditActionLogout {
		t.Fatalf("audit = %+v", logs)
	}
}

func TestTaskAuditRecordsClient(t *testing.T) {
	api := newTestAPI(t, "")
	token := api.signup("erin@example.com")

	if w := api.do(http.MethodPost, "/api/v1/todos", token, gin.H{"title": "Audited"}); w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}

	var logs []domain.AuditLog
	decode(t, api.do(http.MethodGet, "/api/v1/audit?limit=1", token, nil), &logs)
	if len(logs) != 1 || logs[0].Action != domain.AuditActionTaskCreate {
		t.Fatalf("audit = %+v", logs)
	}
	if logs[0].IP == "" || logs[0].UserAgent != "routes-test/1.0" {
		t.Fatalf("client info = %q %q", logs[0].IP, logs[0].UserAgent)
	}
}

func TestAuthLimitSharedAcrossPrefixes(t *testing.T) {
	api := newTestAPIWith(t, "", func(cfg *config.Config) {
		cfg.AuthRateLimit = 2
	})

	login := gin.H{"email": "nobody@example.com", "password": "password123"}
	if w := api.do(http.MethodPost, "/api/v1/auth/login", "", login); w.Code != http.StatusUnauthorized {
		t.Fatalf("first login: %d", w.Code)
	}
	if w := api.do(http.MethodPost, "/api/auth/login", "", login); w.Code != http.StatusUnauthorized {
		t.Fatalf("second login: %d", w.Code)
	}
	if w := api.do(http.MethodPost, "/api/v1/auth/login", "", login); w.Code != http.StatusTooManyRequests {
		t.Fatalf("third login: %d, want 429", w.Code)
	}
}

func TestAskProxy(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req assistant.Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(assistant.Response{Reply: "I have added '" + req.Prompt + "'"})
	}))
	defer upstream.Close()

	api := newTestAPI(t, upstream.URL)
	token := api.signup("erin@example.com")

	w := api.do(http.MethodPost, "/ask", token, gin.H{"prompt": "walk the dog"})
	if w.Code != http.StatusOK {
		t.Fatalf("ask: %d %s", w.Code, w.Body.String())
	}
	var res service.AskResult
	decode(t, w, &res)
	if res.Reply != "I have added 'walk the dog'" || res.Activity == nil {
		t.Fatalf("result = %+v", res)
	}

	var activity []domain.Activity
	decode(t, api.do(http.MethodGet, "/api/v1/assistant/activity", token, nil), &activity)
	if len(activity) != 1 || activity[0].Type != domain.ActivityCreate {
		t.Fatalf("activity = %+v", activity)
	}

	if w := api.do(http.MethodDelete, "/api/v1/assistant/activity", token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("clear: %d", w.Code)
	}

	if w := api.do(http.MethodPost, "/api/v1/ask", token, gin.H{"prompt": "  "}); w.Code != http.StatusBadRequest {
		t.Fatalf("blank prompt: %d", w.Code)
	}
}

func TestAskWithoutAssistant(t *testing.T) {
	api := newTestAPI(t, "")
	token := api.signup("frank@example.com")

	if w := api.do(http.MethodPost, "/api/v1/ask", token, gin.H{"prompt": "hi"}); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, "")
	for _, path := range []string{"/health", "/healthz", "/readyz", "/api/health"} {
		if w := api.do(http.MethodGet, path, "", nil); w.Code != http.StatusOK {
			t.Fatalf("%s: %d", path, w.Code)
		}
	}
}
