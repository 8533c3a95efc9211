package main

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/taskbuddy-backend/internal/cache"
	"github.com/ignatzorin/taskbuddy-backend/internal/config"
	"github.com/ignatzorin/taskbuddy-backend/internal/db"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/taskbuddy-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/taskbuddy-backend/internal/http/router"
	"github.com/ignatzorin/taskbuddy-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/taskbuddy-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/taskbuddy-backend/internal/logger"
	"github.com/ignatzorin/taskbuddy-backend/internal/service"
	"github.com/ignatzorin/taskbuddy-backend/internal/storage"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/chat"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/leaderboard"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/notification"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/profile"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/task"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/wallet"
	"github.com/ignatzorin/taskbuddy-backend/internal/ws"
	"github.com/ignatzorin/taskbuddy-backend/migrations"
)

// backend описывает хранилище, выбранное через DB_DRIVER.
type backend struct {
	tx            repository.Transactor
	tasks         repository.TaskRepository
	users         repository.UserRepository
	ledger        repository.LedgerRepository
	notifications repository.NotificationRepository
	messages      repository.MessageRepository
	conn          *sqlx.DB
}

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	store, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: не удалось подготовить хранилище")
	}
	if store.conn != nil {
		defer safeClose(store.conn)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	avatarStorage, err := storage.NewAvatarStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: не удалось подготовить файловое хранилище")
	}

	appCache := cache.New()
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		appCache.RunCleanup(ctx, time.Minute)
	})

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	goroutine.SafeGo(hub.Run)

	board := leaderboard.NewUseCase(store.users, appCache, cfg.LeaderboardTTL)

	// HTTP хэндлеры.
	handlers := httpRouter.Handlers{
		Auth: httpHandlers.NewAuthHandler(service.NewAuthService(store.tx, store.users, tokenManager)),
		Task: httpHandlers.NewTaskHandler(
			task.NewCreateTaskUseCase(store.tx),
			task.NewGetTaskUseCase(store.tasks),
			task.NewListTasksUseCase(store.tasks),
			task.NewAcceptTaskUseCase(store.tx, hub),
			task.NewRequestPaymentUseCase(store.tx, hub),
			task.NewReleasePaymentUseCase(store.tx, hub, board),
			task.NewCancelTaskUseCase(store.tx, hub),
		),
		Chat: httpHandlers.NewChatHandler(
			chat.NewSendMessageUseCase(store.tasks, store.messages, hub),
			chat.NewListMessagesUseCase(store.tasks, store.messages),
		),
		Wallet: httpHandlers.NewWalletHandler(
			wallet.NewGetWalletUseCase(store.users),
			wallet.NewListTransactionsUseCase(store.ledger),
			wallet.NewDepositUseCase(store.tx, hub),
			wallet.NewWithdrawUseCase(store.tx, hub),
		),
		Notification: httpHandlers.NewNotificationHandler(
			notification.NewListNotificationsUseCase(store.notifications),
			notification.NewCountUnreadUseCase(store.notifications),
			notification.NewMarkAsReadUseCase(store.notifications),
			notification.NewMarkAllAsReadUseCase(store.notifications),
		),
		Leaderboard: httpHandlers.NewLeaderboardHandler(board),
		Profile: httpHandlers.NewProfileHandler(
			profile.NewGetProfileUseCase(store.users),
			profile.NewUpdateProfileUseCase(store.users),
			profile.NewUploadAvatarUseCase(store.users, avatarStorage),
			avatarStorage.MaxUploadBytes(),
		),
		Health: newHealthHandler(store, cfg.DBDriver),
		WS:     httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
	}

	engine := httpRouter.SetupRouter(cfg, handlers, tokenManager)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	})

	logger.Log.WithField("port", cfg.HTTPPort).WithField("driver", cfg.DBDriver).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.WithError(err).Fatal("main: сервер завершился с ошибкой")
	}
}

// openBackend подключает SQL базу с миграциями либо хранилище в памяти.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.DBDriver == "memory" {
		logger.Log.Warn("main: используется хранилище в памяти, данные не сохраняются")
		mem := memory.NewStore(cfg.TxMaxAttempts)
		return &backend{
			tx:            mem,
			tasks:         mem.Tasks(),
			users:         mem.Users(),
			ledger:        mem.Ledger(),
			notifications: mem.Notifications(),
			messages:      mem.Messages(),
		}, nil
	}

	conn, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	var migrationsFS fs.FS = migrations.FS
	if cfg.MigrationsPath != "" {
		migrationsFS = os.DirFS(cfg.MigrationsPath)
	}
	if err := db.RunMigrations(ctx, conn, migrationsFS); err != nil {
		safeClose(conn)
		return nil, err
	}

	return &backend{
		tx:            persistence.NewStore(conn, cfg.TxMaxAttempts, cfg.TxRetryBackoff),
		tasks:         persistence.NewTaskRepository(conn),
		users:         persistence.NewUserRepository(conn),
		ledger:        persistence.NewLedgerRepository(conn),
		notifications: persistence.NewNotificationRepository(conn),
		messages:      persistence.NewMessageRepository(conn),
		conn:          conn,
	}, nil
}

func newHealthHandler(b *backend, driver string) *httpHandlers.HealthHandler {
	if b.conn == nil {
		return httpHandlers.NewHealthHandler(nil, driver)
	}
	return httpHandlers.NewHealthHandler(b.conn, driver)
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
