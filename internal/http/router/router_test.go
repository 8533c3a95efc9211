package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/taskbuddy-backend/internal/cache"
	"github.com/ignatzorin/taskbuddy-backend/internal/config"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/event"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/handlers"
	"github.com/ignatzorin/taskbuddy-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/taskbuddy-backend/internal/service"
	"github.com/ignatzorin/taskbuddy-backend/internal/storage"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/chat"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/leaderboard"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/notification"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/profile"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/task"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/wallet"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type testServer struct {
	engine *gin.Engine
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:              "test",
		AllowedOrigins:   []string{"http://localhost:3000"},
		RateLimitLimit:   1000,
		RateLimitPeriod:  time.Minute,
		MediaStoragePath: t.TempDir(),
		MaxUploadSizeMB:  1,
	}

	store := memory.NewStore(3)
	tokens := service.NewTokenManager("router-test-secret-router-test-secret", time.Hour)
	pub := event.Nop{}
	board := leaderboard.NewUseCase(store.Users(), cache.New(), time.Minute)

	avatars, err := storage.NewAvatarStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	assert.NoError(t, err)

	h := Handlers{
		Auth: handlers.NewAuthHandler(service.NewAuthService(store, store.Users(), tokens)),
		Task: handlers.NewTaskHandler(
			task.NewCreateTaskUseCase(store),
			task.NewGetTaskUseCase(store.Tasks()),
			task.NewListTasksUseCase(store.Tasks()),
			task.NewAcceptTaskUseCase(store, pub),
			task.NewRequestPaymentUseCase(store, pub),
			task.NewReleasePaymentUseCase(store, pub, board),
			task.NewCancelTaskUseCase(store, pub),
		),
		Chat: handlers.NewChatHandler(
			chat.NewSendMessageUseCase(store.Tasks(), store.Messages(), pub),
			chat.NewListMessagesUseCase(store.Tasks(), store.Messages()),
		),
		Wallet: handlers.NewWalletHandler(
			wallet.NewGetWalletUseCase(store.Users()),
			wallet.NewListTransactionsUseCase(store.Ledger()),
			wallet.NewDepositUseCase(store, pub),
			wallet.NewWithdrawUseCase(store, pub),
		),
		Notification: handlers.NewNotificationHandler(
			notification.NewListNotificationsUseCase(store.Notifications()),
			notification.NewCountUnreadUseCase(store.Notifications()),
			notification.NewMarkAsReadUseCase(store.Notifications()),
			notification.NewMarkAllAsReadUseCase(store.Notifications()),
		),
		Leaderboard: handlers.NewLeaderboardHandler(board),
		Profile: handlers.NewProfileHandler(
			profile.NewGetProfileUseCase(store.Users()),
			profile.NewUpdateProfileUseCase(store.Users()),
			profile.NewUploadAvatarUseCase(store.Users(), avatars),
			avatars.MaxUploadBytes(),
		),
		Health: handlers.NewHealthHandler(nil, "memory"),
	}

	return &testServer{engine: SetupRouter(cfg, h, tokens), store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

type account struct {
	ID    string
	Token string
}

func (s *testServer) register(t *testing.T, email, name string) account {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "Secret123",
		"name":     name,
	})
	assert.Equal(t, http.StatusCreated, status, env.Error)

	var data struct {
		User        struct{ ID string } `json:"user"`
		AccessToken string              `json:"access_token"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &data))
	return account{ID: data.User.ID, Token: data.AccessToken}
}

type taskView struct {
	ID      string  `json:"id"`
	Status  string  `json:"status"`
	BuddyID *string `json:"buddy_id"`
}

type walletView struct {
	Balance int64  `json:"wallet_balance"`
	XP      int64  `json:"xp"`
	Level   string `json:"level"`
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	assert.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestFullTaskLifecycle(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com", "Alice")
	bob := s.register(t, "bob@example.com", "Bob")

	status, env := s.do(t, http.MethodPost, "/api/tasks", alice.Token, map[string]any{
		"title":    "Fix the sink",
		"category": "Household",
		"budget":   50,
	})
	assert.Equal(t, http.StatusCreated, status, env.Error)
	created := decode[taskView](t, env)
	assert.Equal(t, "Open", created.Status)

	base := "/api/tasks/" + created.ID

	// Автор не может принять свою задачу.
	status, env = s.do(t, http.MethodPost, base+"/accept", alice.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.False(t, env.Success)
	assert.Equal(t, "you cannot accept your own task", env.Error)

	status, env = s.do(t, http.MethodPost, base+"/accept", bob.Token, nil)
	assert.Equal(t, http.StatusOK, status, env.Error)
	accepted := decode[taskView](t, env)
	assert.Equal(t, "assigned", accepted.Status)
	if assert.NotNil(t, accepted.BuddyID) {
		assert.Equal(t, bob.ID, *accepted.BuddyID)
	}

	// Выплата до завершения невозможна.
	status, env = s.do(t, http.MethodPost, base+"/release-payment", alice.Token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "task not completed", env.Error)

	status, env = s.do(t, http.MethodPost, base+"/request-payment", bob.Token, nil)
	assert.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "completed", decode[taskView](t, env).Status)

	status, env = s.do(t, http.MethodPost, base+"/release-payment", alice.Token, nil)
	assert.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "paid", decode[taskView](t, env).Status)

	// Повторная выплата отклоняется и не двигает деньги.
	status, _ = s.do(t, http.MethodPost, base+"/release-payment", alice.Token, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, env = s.do(t, http.MethodGet, "/api/wallet", bob.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	w := decode[walletView](t, env)
	assert.Equal(t, int64(1050), w.Balance)
	assert.Equal(t, int64(10), w.XP)
	assert.Equal(t, "Rookie", w.Level)

	status, env = s.do(t, http.MethodGet, "/api/wallet", alice.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1000), decode[walletView](t, env).Balance)

	status, env = s.do(t, http.MethodGet, "/api/wallet/transactions?type=release", bob.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env), 1)

	status, env = s.do(t, http.MethodGet, "/api/notifications/unread/count", alice.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, decode[struct{ Count int }](t, env).Count)

	status, env = s.do(t, http.MethodGet, "/api/leaderboard", "", nil)
	assert.Equal(t, http.StatusOK, status)
	board := decode[[]struct {
		Rank   int    `json:"rank"`
		UserID string `json:"user_id"`
	}](t, env)
	if assert.NotEmpty(t, board) {
		assert.Equal(t, bob.ID, board[0].UserID)
		assert.Equal(t, 1, board[0].Rank)
	}
}

func TestTaskRoutes_RequireAuth(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/tasks/00000000-0000-0000-0000-000000000001/accept", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = s.do(t, http.MethodPost, "/api/tasks", "bogus", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestTaskRoutes_InvalidAndUnknownIDs(t *testing.T) {
	s := newTestServer(t)
	bob := s.register(t, "bob@example.com", "Bob")

	status, _ := s.do(t, http.MethodGet, "/api/tasks/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := s.do(t, http.MethodPost, "/api/tasks/00000000-0000-0000-0000-000000000001/accept", bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "task does not exist", env.Error)
}

func TestListTasks_FilterByStatus(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com", "Alice")

	for _, title := range []string{"Walk the dog", "Mow the lawn"} {
		status, env := s.do(t, http.MethodPost, "/api/tasks", alice.Token, map[string]any{
			"title":    title,
			"category": "Other",
			"budget":   20,
		})
		assert.Equal(t, http.StatusCreated, status, env.Error)
	}

	req, _ := http.NewRequest(http.MethodGet, "/api/tasks?status=Open&limit=1", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Data       []taskView `json:"data"`
		Pagination struct {
			Total   int  `json:"total"`
			HasMore bool `json:"has_more"`
		} `json:"pagination"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 2, page.Pagination.Total)
	assert.True(t, page.Pagination.HasMore)

	status, _ := s.do(t, http.MethodGet, "/api/tasks?status=unknown", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWallet_WithdrawBeyondBalance(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com", "Alice")

	status, env := s.do(t, http.MethodPost, "/api/wallet/withdraw", alice.Token, map[string]int{"amount": 5000})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "insufficient funds", env.Error)

	status, env = s.do(t, http.MethodPost, "/api/wallet/deposit", alice.Token, map[string]int{"amount": 250})
	assert.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, int64(1250), decode[walletView](t, env).Balance)

	status, _ = s.do(t, http.MethodPost, "/api/wallet/deposit", alice.Token, map[string]int{"amount": -1})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestChat_OnlyParticipants(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com", "Alice")
	bob := s.register(t, "bob@example.com", "Bob")
	eve := s.register(t, "eve@example.com", "Eve")

	_, env := s.do(t, http.MethodPost, "/api/tasks", alice.Token, map[string]any{
		"title":    "Assemble a shelf",
		"category": "Assembly",
		"budget":   40,
	})
	created := decode[taskView](t, env)
	base := "/api/tasks/" + created.ID

	status, _ := s.do(t, http.MethodPost, base+"/accept", bob.Token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodPost, base+"/messages", bob.Token, map[string]string{"content": "On my way"})
	assert.Equal(t, http.StatusCreated, status, env.Error)

	status, _ = s.do(t, http.MethodPost, base+"/messages", eve.Token, map[string]string{"content": "Hi"})
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(t, http.MethodGet, base+"/messages", alice.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env), 1)
}

func TestProfile_UpdateAndPublicView(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com", "Alice")

	status, env := s.do(t, http.MethodPut, "/api/profile", alice.Token, map[string]string{"location": "Berlin"})
	assert.Equal(t, http.StatusOK, status, env.Error)

	status, env = s.do(t, http.MethodGet, "/api/users/"+alice.ID, "", nil)
	assert.Equal(t, http.StatusOK, status)
	public := decode[map[string]any](t, env)
	assert.Equal(t, "Berlin", public["location"])
	assert.NotContains(t, public, "email")
	assert.NotContains(t, public, "wallet_balance")
}

func TestAuth_DuplicateEmailAndBadLogin(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice@example.com", "Alice")

	status, env := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "Secret123",
		"name":     "Alice",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "email is already registered", env.Error)

	status, env = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "Wrong1234",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid email or password", env.Error)
}
