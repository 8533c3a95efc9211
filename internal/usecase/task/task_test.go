package task_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/event"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/valueobject"
	"github.com/ignatzorin/taskbuddy-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/task"
)

type published struct {
	userID uuid.UUID
	event  string
	data   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(userID uuid.UUID, name string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{userID: userID, event: name, data: data})
}

func (p *recordingPublisher) count(userID uuid.UUID, name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.userID == userID && e.event == name {
			n++
		}
	}
	return n
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

type fixture struct {
	store  *memory.Store
	pub    *recordingPublisher
	poster *entity.User
	buddy  *entity.User
	task   *entity.Task
}

func newFixture(t *testing.T, status valueobject.TaskStatus) *fixture {
	t.Helper()
	store := memory.NewStore(5)
	poster := entity.NewUser("poster@example.com", "hash", "Poster")
	buddy := entity.NewUser("buddy@example.com", "hash", "Buddy")
	store.SeedUser(poster)
	store.SeedUser(buddy)

	tk, err := entity.NewTask(poster.ID, "Assemble a wardrobe", "IKEA PAX", "Assembly", "Bengaluru", 500)
	if err != nil {
		t.Fatalf("не удалось создать задачу: %v", err)
	}
	if status != valueobject.TaskStatusOpen {
		if err := tk.Accept(buddy.ID); err != nil {
			t.Fatalf("accept: %v", err)
		}
	}
	if status == valueobject.TaskStatusCompleted || status == valueobject.TaskStatusPaid {
		if err := tk.RequestPayment(buddy.ID); err != nil {
			t.Fatalf("request payment: %v", err)
		}
	}
	if status == valueobject.TaskStatusPaid {
		if err := tk.MarkPaid(poster.ID); err != nil {
			t.Fatalf("mark paid: %v", err)
		}
	}
	if status == valueobject.TaskStatusCancelled {
		if _, err := tk.Cancel(poster.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
	}
	store.SeedTask(tk)

	return &fixture{store: store, pub: &recordingPublisher{}, poster: poster, buddy: buddy, task: tk}
}

func (f *fixture) storedTask(t *testing.T) *entity.Task {
	t.Helper()
	tk, err := f.store.Tasks().FindByID(context.Background(), f.task.ID)
	if err != nil {
		t.Fatalf("задача не найдена: %v", err)
	}
	return tk
}

func (f *fixture) storedUser(t *testing.T, id uuid.UUID) *entity.User {
	t.Helper()
	u, err := f.store.Users().FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("пользователь не найден: %v", err)
	}
	return u
}

func (f *fixture) notifications(t *testing.T, userID uuid.UUID) []*entity.Notification {
	t.Helper()
	list, err := f.store.Notifications().List(context.Background(), userID, false, 100, 0)
	if err != nil {
		t.Fatalf("уведомления: %v", err)
	}
	return list
}

func TestCreateTask_Success(t *testing.T) {
	f := newFixture(t, valueobject.TaskStatusOpen)
	uc := task.NewCreateTaskUseCase(f.store)

	created, err := uc.Execute(context.Background(), task.CreateTaskInput{
		PosterID:    f.poster.ID,
		Title:       "  Walk my dog  ",
		Description: "Twice a day",
		Category:    "Other",
		Location:    "Mumbai",
		Budget:      250,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Walk my dog", created.Title)
	assert.Equal(t, valueobject.TaskStatusOpen, created.Status)
	assert.Nil(t, created.BuddyID)

	stored, err := f.store.Tasks().FindByID(context.Background(), created.ID)
	assert.NoError(t, err)
	assert.Equal(t, valueobject.Money(250), stored.Budget)
}

func TestCreateTask_Validation(t *testing.T) {
	f := newFixture(t, valueobject.TaskStatusOpen)
	uc := task.NewCreateTaskUseCase(f.store)

	tests := []struct {
		name  string
		input task.CreateTaskInput
	}{
		{"short title", task.CreateTaskInput{PosterID: f.poster.ID, Title: "ab", Category: "Tech", Budget: 10}},
		{"zero budget", task.CreateTaskInput{PosterID: f.poster.ID, Title: "Fix wifi", Category: "Tech", Budget: 0}},
		{"budget over limit", task.CreateTaskInput{PosterID: f.poster.ID, Title: "Fix wifi", Category: "Tech", Budget: 10_000_001}},
		{"unknown category", task.CreateTaskInput{PosterID: f.poster.ID, Title: "Fix wifi", Category: "Space", Budget: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.input)
			assert.True(t, apperror.IsValidation(err), "ожидалась ошибка валидации, получено %v", err)
		})
	}
}

func TestCreateTask_UnknownPoster(t *testing.T) {
	f := newFixture(t, valueobject.TaskStatusOpen)
	uc := task.NewCreateTaskUseCase(f.store)

	_, err := uc.Execute(context.Background(), task.CreateTaskInput{
		PosterID: uuid.New(),
		Title:    "Fix wifi",
		Category: "Tech",
		Budget:   10,
	})

	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
}

func TestListTasks_FiltersAndLimits(t *testing.T) {
	f := newFixture(t, valueobject.TaskStatusAssigned)
	uc := task.NewListTasksUseCase(f.store.Tasks())

	assigned, total, err := uc.Execute(context.Background(), task.ListTasksInput{Status: "assigned"})
	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, assigned, 1)

	open, total, err := uc.Execute(context.Background(), task.ListTasksInput{Status: "Open"})
	assert.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, open)

	_, _, err = uc.Execute(context.Background(), task.ListTasksInput{Status: "done"})
	assert.True(t, apperror.IsValidation(err))

	_, _, err = uc.Execute(context.Background(), task.ListTasksInput{Category: "Space"})
	assert.True(t, apperror.IsValidation(err))

	assert.Equal(t, task.DefaultListLimit, task.NormalizeLimit(0))
	assert.Equal(t, task.MaxListLimit, task.NormalizeLimit(1000))
	assert.Equal(t, 7, task.NormalizeLimit(7))
}

func TestGetTask_NotFound(t *testing.T) {
	f := newFixture(t, valueobject.TaskStatusOpen)

	_, err := task.NewGetTaskUseCase(f.store.Tasks()).Execute(context.Background(), uuid.New())

	assert.ErrorIs(t, err, apperror.ErrTaskNotFound)
}

func TestAcceptTask_Success(t *testing.T) {
	f := newFixture(t, valueobject.TaskStatusOpen)
	uc := task.NewAcceptTaskUseCase(f.store, f.pub)

	accepted, err := uc.Execute(context.Background(), f.task.ID, f.buddy.ID)

	assert.NoError(t, err)
	assert.Equal(t, valueobject.TaskStatusAssigned, accepted.Status)

	stored := f.storedTask(t)
	assert.Equal(t, valueobject.TaskStatusAssigned, stored.Status)
	if assert.NotNil(t, stored.BuddyID) {
		assert.Equal(t, f.buddy.ID, *stored.BuddyID)
	}

	notes := f.notifications(t, f.poster.ID)
	if assert.Len(t, notes, 1) {
		assert.Equal(t, valueobject.NotificationTaskAccepted, notes[0].Type)
		assert.Equal(t, "Task Accepted!", notes[0].Title)
		assert.Equal(t, `A buddy has accepted your task: "Assemble a wardrobe"`, notes[0].Message)
		assert.False(t, notes[0].IsRead)
	}
	assert.Empty(t, f.notifications(t, f.buddy.ID))

	assert.Equal(t, 1, f.pub.count(f.poster.ID, event.TaskUpdated))
	assert.Equal(t, 1, f.pub.count(f.buddy.ID, event.TaskUpdated))
	assert.Equal(t, 1, f.pub.count(f.poster.ID, event.Notification))
}

func TestAcceptTask_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  valueobject.TaskStatus
		taskID  func(f *fixture) uuid.UUID
		buddyID func(f *fixture) uuid.UUID
		wantErr error
	}{
		{
			name:    "unauthenticated",
			status:  valueobject.TaskStatusOpen,
			taskID:  func(f *fixture) uuid.UUID { return uuid.New() },
			buddyID: func(f *fixture) uuid.UUID { return uuid.Nil },
			wantErr: apperror.ErrUnauthorized,
		},
		{
			name:    "missing task",
			status:  valueobject.TaskStatusOpen,
			taskID:  func(f *fixture) uuid.UUID { return uuid.New() },
			buddyID: func(f *fixture) uuid.UUID { return f.buddy.ID },
			wantErr: apperror.ErrTaskNotFound,
		},
		{
			name:    "own task",
			status:  valueobject.TaskStatusOpen,
			taskID:  func(f *fixture) uuid.UUID { return f.task.ID },
			buddyID: func(f *fixture) uuid.UUID { return f.poster.ID },
			wantErr: apperror.ErrSelfAccept,
		},
		{
			name:    "own task assigned",
			status:  valueobject.TaskStatusAssigned,
			taskID:  func(f *fixture) uuid.UUID { return f.task.ID },
			buddyID: func(f *fixture) uuid.UUID { return f.poster.ID },
			wantErr: apperror.ErrTaskNotOpen,
		},
		{
			name:    "own task completed",
			status:  valueobject.TaskStatusCompleted,
			taskID:  func(f *fixture) uuid.UUID { return f.task.ID },
			buddyID: func(f *fixture) uuid.UUID { return f.poster.ID },
			wantErr: apperror.ErrTaskNotOpen,
		},
		{
			name:    "own task paid",
			status:  valueobject.TaskStatusPaid,
			taskID:  func(f *fixture) uuid.UUID { return f.task.ID },
			buddyID: func(f *fixture) uuid.UUID { return f.poster.ID },
			wantErr: apperror.ErrTaskNotOpen,
		},
		{
			name:    "own task cancelled",
			status:  valueobject.TaskStatusCancelled,
			taskID:  func(f *fixture) uuid.UUID { return f.task.ID },
			buddyID: func(f *fixture) uuid.UUID { return f.poster.ID },
			wantErr: apperror.ErrTaskNotOpen,
		},
		{
			name:    "already assigned",
			status:  valueobject.TaskStatusAssigned,
			taskID:  func(f *fixture) uuid.UUID { return f.task.ID },
			buddyID: func(f *fixture) uuid.UUID { return uuid.New() },
			wantErr: apperror.ErrTaskNotOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.status)
			before := f.storedTask(t)

			_, err := task.NewAcceptTaskUseCase(f.store, f.pub).Execute(context.Background(), tt.taskID(f), tt.buddyID(f))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, f.storedTask(t))
			assert.Empty(t, f.notifications(t, f.poster.ID))
			assert.Empty(t, f.pub.events)
		})
	}
}

func TestAcceptTask_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t, valueobject.TaskStatusOpen)
	uc := task.NewAcceptTaskUseCase(f.store, f.pub)

	const contenders = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []uuid.UUID
	)
	for i := 0; i < contenders; i++ {
		buddyID := uuid.New()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), f.task.ID, buddyID)
			if err != nil {
				assert.ErrorIs(t, err, apperror.ErrTaskNotOpen)
				return
			}
			mu.Lock()
			winners = append(winners, buddyID)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if assert.Len(t, winners, 1) {
		stored := f.storedTask(t)
		assert.Equal(t, winners[0], *stored.BuddyID)
	}
	assert.Len(t, f.notifications(t, f.poster.ID), 1)
}

func TestAcceptTask_RetriesOnConflict(t *testing.T) {
	f := newFixture(t, valueobject.TaskStatusOpen)
	f.store.InjectConflicts(2)

	_, err := task.NewAcceptTaskUseCase(f.store, f.pub).Execute(context.Background(), f.task.ID, f.buddy.ID)

	assert.NoError(t, err)
	assert.Equal(t, 3, f.store.Attempts())
	assert.Len(t, f.notifications(t, f.poster.ID), 1)
}

func TestRequestPayment_Success(t *testing.T) {
	f := newFixture(t, valueobject.TaskStatusAssigned)

	completed, err := task.NewRequestPaymentUseCase(f.store, f.pub).Execute(context.Background(), f.task.ID, f.buddy.ID)

	assert.NoError(t, err)
	assert.Equal(t, valueobject.TaskStatusCompleted, completed.Status)
	assert.Equal(t, valueobject.TaskStatusCompleted, f.storedTask(t).Status)

	notes := f.notifications(t, f.poster.ID)
	if assert.Len(t, notes, 1) {
		assert.Equal(t, valueobject.NotificationPaymentRequested, notes[0].Type)
	}
}

func TestRequestPayment_Errors(t *testing.T) {
	t.Run("not the buddy", func(t *testing.T) {
		f := newFixture(t, valueobject.TaskStatusAssigned)
		_, err := task.NewRequestPaymentUseCase(f.store, f.pub).Execute(context.Background(), f.task.ID, f.poster.ID)
		assert.ErrorIs(t, err, apperror.ErrNotTaskBuddy)
		assert.Equal(t, valueobject.TaskStatusAssigned, f.storedTask(t).Status)
	})

	t.Run("already completed", func(t *testing.T) {
		f := newFixture(t, valueobject.TaskStatusCompleted)
		_, err := task.NewRequestPaymentUseCase(f.store, f.pub).Execute(context.Background(), f.task.ID, f.buddy.ID)
		assert.ErrorIs(t, err, apperror.ErrTaskNotAssigned)
	})

	t.Run("open task has no buddy", func(t *testing.T) {
		f := newFixture(t, valueobject.TaskStatusOpen)
		_, err := task.NewRequestPaymentUseCase(f.store, f.pub).Execute(context.Background(), f.task.ID, f.buddy.ID)
		assert.ErrorIs(t, err, apperror.ErrNotTaskBuddy)
	})
}

func TestReleasePayment_Success(t *testing.T) {
	f := newFixture(t, valueobject.TaskStatusCompleted)
	inv := &countingInvalidator{}
	uc := task.NewReleasePaymentUseCase(f.store, f.pub, inv)

	paid, err := uc.Execute(context.Background(), f.task.ID, f.poster.ID)

	assert.NoError(t, err)
	assert.Equal(t, valueobject.TaskStatusPaid, paid.Status)
	assert.Equal(t, valueobject.TaskStatusPaid, f.storedTask(t).Status)

	buddy := f.storedUser(t, f.buddy.ID)
	assert.Equal(t, entity.StartingBalance+500, buddy.WalletBalance)
	assert.Equal(t, int64(10), buddy.XP)

	poster := f.storedUser(t, f.poster.ID)
	assert.Equal(t, entity.StartingBalance, poster.WalletBalance)
	assert.Equal(t, int64(0), poster.XP)

	entries, err := f.store.Ledger().ListByTask(context.Background(), f.task.ID)
	assert.NoError(t, err)
	if assert.Len(t, entries, 2) {
		assert.Equal(t, f.buddy.ID, entries[0].UserID)
		assert.Equal(t, valueobject.TransactionTypeRelease, entries[0].Type)
		assert.Equal(t, f.poster.ID, entries[1].UserID)
		assert.Equal(t, valueobject.TransactionTypeWithdraw, entries[1].Type)
		for _, e := range entries {
			assert.Equal(t, valueobject.Money(500), e.Amount)
			assert.Equal(t, valueobject.TransactionStatusSuccess, e.Status)
		}
	}

	notes := f.notifications(t, f.buddy.ID)
	if assert.Len(t, notes, 1) {
		assert.Equal(t, valueobject.NotificationPaymentReleased, notes[0].Type)
	}
	assert.Equal(t, 1, inv.calls)
	assert.Equal(t, 1, f.pub.count(f.buddy.ID, event.WalletUpdated))
}

func TestReleasePayment_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  valueobject.TaskStatus
		actor   func(f *fixture) uuid.UUID
		wantErr error
	}{
		{"buddy cannot release", valueobject.TaskStatusCompleted, func(f *fixture) uuid.UUID { return f.buddy.ID }, apperror.ErrNotTaskPoster},
		{"not completed yet", valueobject.TaskStatusAssigned, func(f *fixture) uuid.UUID { return f.poster.ID }, apperror.ErrTaskNotCompleted},
		{"already paid", valueobject.TaskStatusPaid, func(f *fixture) uuid.UUID { return f.poster.ID }, apperror.ErrTaskNotCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.status)
			inv := &countingInvalidator{}

			_, err := task.NewReleasePaymentUseCase(f.store, f.pub, inv).Execute(context.Background(), f.task.ID, tt.actor(f))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, entity.StartingBalance, f.storedUser(t, f.buddy.ID).WalletBalance)
			entries, _ := f.store.Ledger().ListByTask(context.Background(), f.task.ID)
			assert.Empty(t, entries)
			assert.Equal(t, 0, inv.calls)
		})
	}
}

func TestReleasePayment_MissingBuddyRollsBack(t *testing.T) {
	f := newFixture(t, valueobject.TaskStatusCompleted)
	ghost := uuid.New()
	tk := f.storedTask(t)
	tk.BuddyID = &ghost
	f.store.SeedTask(tk)

	_, err := task.NewReleasePaymentUseCase(f.store, f.pub, nil).Execute(context.Background(), f.task.ID, f.poster.ID)

	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
	assert.Equal(t, valueobject.TaskStatusCompleted, f.storedTask(t).Status)
}

func TestReleasePayment_ConflictExhaustionLeavesNoTrace(t *testing.T) {
	f := newFixture(t, valueobject.TaskStatusCompleted)
	f.store.InjectConflicts(5)

	_, err := task.NewReleasePaymentUseCase(f.store, f.pub, nil).Execute(context.Background(), f.task.ID, f.poster.ID)

	assert.ErrorIs(t, err, apperror.ErrTxAborted)
	assert.Equal(t, valueobject.TaskStatusCompleted, f.storedTask(t).Status)
	assert.Equal(t, entity.StartingBalance, f.storedUser(t, f.buddy.ID).WalletBalance)
	entries, _ := f.store.Ledger().ListByTask(context.Background(), f.task.ID)
	assert.Empty(t, entries)
	assert.Empty(t, f.notifications(t, f.buddy.ID))
	assert.Empty(t, f.pub.events)
}

func TestReleasePayment_ConcurrentPaysOnce(t *testing.T) {
	f := newFixture(t, valueobject.TaskStatusCompleted)
	uc := task.NewReleasePaymentUseCase(f.store, f.pub, nil)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), f.task.ID, f.poster.ID)
			if err != nil {
				assert.ErrorIs(t, err, apperror.ErrTaskNotCompleted)
				return
			}
			mu.Lock()
			successes++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	buddy := f.storedUser(t, f.buddy.ID)
	assert.Equal(t, entity.StartingBalance+500, buddy.WalletBalance)
	assert.Equal(t, int64(10), buddy.XP)

	releases, err := f.store.Ledger().ListByUser(context.Background(), f.buddy.ID, repository.LedgerFilter{
		Type: valueobject.TransactionTypeRelease,
	})
	assert.NoError(t, err)
	assert.Len(t, releases, 1)
}

func TestCancelTask(t *testing.T) {
	t.Run("poster cancels open task", func(t *testing.T) {
		f := newFixture(t, valueobject.TaskStatusOpen)

		cancelled, err := task.NewCancelTaskUseCase(f.store, f.pub).Execute(context.Background(), f.task.ID, f.poster.ID)

		assert.NoError(t, err)
		assert.Equal(t, valueobject.TaskStatusCancelled, cancelled.Status)
		assert.Empty(t, f.notifications(t, f.poster.ID))
	})

	t.Run("stranger cannot cancel open task", func(t *testing.T) {
		f := newFixture(t, valueobject.TaskStatusOpen)

		_, err := task.NewCancelTaskUseCase(f.store, f.pub).Execute(context.Background(), f.task.ID, f.buddy.ID)

		assert.ErrorIs(t, err, apperror.ErrNotTaskPoster)
		assert.Equal(t, valueobject.TaskStatusOpen, f.storedTask(t).Status)
	})

	t.Run("buddy withdraws from assigned task", func(t *testing.T) {
		f := newFixture(t, valueobject.TaskStatusAssigned)

		_, err := task.NewCancelTaskUseCase(f.store, f.pub).Execute(context.Background(), f.task.ID, f.buddy.ID)

		assert.NoError(t, err)
		stored := f.storedTask(t)
		assert.Equal(t, valueobject.TaskStatusCancelled, stored.Status)
		assert.Nil(t, stored.BuddyID)

		notes := f.notifications(t, f.poster.ID)
		if assert.Len(t, notes, 1) {
			assert.Equal(t, valueobject.NotificationTaskCancelled, notes[0].Type)
		}
		assert.Equal(t, 1, f.pub.count(f.buddy.ID, event.TaskUpdated))
	})

	t.Run("paid task is final", func(t *testing.T) {
		f := newFixture(t, valueobject.TaskStatusPaid)

		_, err := task.NewCancelTaskUseCase(f.store, f.pub).Execute(context.Background(), f.task.ID, f.poster.ID)

		assert.ErrorIs(t, err, apperror.ErrTaskNotCancelable)
	})
}
