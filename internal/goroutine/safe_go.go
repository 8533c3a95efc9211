package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/ignatzorin/taskbuddy-backend/internal/logger"
)

// Logger интерфейс для логирования ошибок
type Logger interface {
	Errorf(format string, args ...interface{})
}

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	logger Logger
}

func NewRecoveryHandler(logger Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// SafeGo запускает горутину с обработкой panic
func (rh *RecoveryHandler) SafeGo(fn func()) {
	go func() {
		defer rh.handlePanic("")
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer rh.handlePanic(" (with context)")
		fn(ctx)
	}()
}

func (rh *RecoveryHandler) handlePanic(suffix string) {
	if r := recover(); r != nil {
		rh.logger.Errorf("Panic in goroutine%s: %v\nStack trace:\n%s", suffix, r, debug.Stack())
	}
}

// logrusLogger откладывает обращение к logger.Log до момента паники,
// чтобы подхватить логгер, настроенный в main.
type logrusLogger struct{}

func (logrusLogger) Errorf(format string, args ...interface{}) {
	logger.Log.Errorf(format, args...)
}

var DefaultRecoveryHandler = NewRecoveryHandler(logrusLogger{})

func SafeGo(fn func()) {
	DefaultRecoveryHandler.SafeGo(fn)
}

func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, fn)
}
