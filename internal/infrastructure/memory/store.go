// Package memory хранит данные в памяти процесса. Семантика транзакций та же,
// что у persistence.Store: записи буферизуются и применяются при фиксации
// с проверкой версий, конфликт перезапускает транзакционную функцию.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

const defaultMaxAttempts = 5

type Store struct {
	mu sync.Mutex

	tasks         map[uuid.UUID]entity.Task
	users         map[uuid.UUID]entity.User
	ledger        []entity.LedgerEntry
	notifications []entity.Notification
	messages      []entity.Message

	maxAttempts int
	// Сколько ближайших фиксаций искусственно завершить конфликтом.
	conflicts int
	attempts  int
}

func NewStore(maxAttempts int) *Store {
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	return &Store{
		tasks:       make(map[uuid.UUID]entity.Task),
		users:       make(map[uuid.UUID]entity.User),
		maxAttempts: maxAttempts,
	}
}

// InjectConflicts заставляет следующие n фиксаций завершиться конфликтом версий.
func (s *Store) InjectConflicts(n int) {
	s.mu.Lock()
	s.conflicts = n
	s.mu.Unlock()
}

// Attempts возвращает число запусков транзакционных функций.
func (s *Store) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func (s *Store) SeedUser(u *entity.User) {
	s.mu.Lock()
	s.users[u.ID] = *u
	s.mu.Unlock()
}

func (s *Store) SeedTask(t *entity.Task) {
	s.mu.Lock()
	s.tasks[t.ID] = *t
	s.mu.Unlock()
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.mu.Lock()
		s.attempts++
		s.mu.Unlock()

		tx := &memTx{store: s}
		err := fn(ctx, tx)
		if err == nil {
			err = s.commit(tx)
		}
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return err
		}
	}
	return apperror.ErrTxAborted
}

func (s *Store) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflicts > 0 {
		s.conflicts--
		return repository.ErrVersionConflict
	}

	for _, w := range tx.taskWrites {
		current, ok := s.tasks[w.task.ID]
		if w.create {
			if ok {
				return apperror.New(apperror.ErrCodeConflict, "task already exists")
			}
			continue
		}
		if !ok || current.Version != w.expected {
			return repository.ErrVersionConflict
		}
	}
	for _, w := range tx.userWrites {
		current, ok := s.users[w.user.ID]
		if w.create {
			if ok {
				return apperror.New(apperror.ErrCodeConflict, "user already exists")
			}
			for _, u := range s.users {
				if u.Email == w.user.Email {
					return apperror.ErrEmailTaken
				}
			}
			continue
		}
		if !ok || current.Version != w.expected {
			return repository.ErrVersionConflict
		}
	}

	for _, w := range tx.taskWrites {
		s.tasks[w.task.ID] = w.task
	}
	for _, w := range tx.userWrites {
		u := w.user
		if !w.create {
			// Поля профиля принадлежат UpdateProfile, транзакция их не трогает.
			current := s.users[u.ID]
			u.Name, u.Location, u.PhotoPath = current.Name, current.Location, current.PhotoPath
		}
		s.users[u.ID] = u
	}
	s.ledger = append(s.ledger, tx.ledger...)
	s.notifications = append(s.notifications, tx.notifications...)
	return nil
}

type taskWrite struct {
	task     entity.Task
	expected int64
	create   bool
}

type userWrite struct {
	user     entity.User
	expected int64
	create   bool
}

type memTx struct {
	store         *Store
	taskWrites    []taskWrite
	userWrites    []userWrite
	ledger        []entity.LedgerEntry
	notifications []entity.Notification
}

func (t *memTx) GetTask(_ context.Context, id uuid.UUID) (*entity.Task, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	task, ok := t.store.tasks[id]
	if !ok {
		return nil, apperror.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

func (t *memTx) CreateTask(_ context.Context, task *entity.Task) error {
	if err := task.CheckInvariants(); err != nil {
		return err
	}
	t.taskWrites = append(t.taskWrites, taskWrite{task: *cloneTask(*task), create: true})
	return nil
}

func (t *memTx) UpdateTask(_ context.Context, task *entity.Task) error {
	if err := task.CheckInvariants(); err != nil {
		return err
	}
	w := taskWrite{task: *cloneTask(*task), expected: task.Version}
	w.task.Version = task.Version + 1
	t.taskWrites = append(t.taskWrites, w)
	task.Version++
	return nil
}

func (t *memTx) GetUser(_ context.Context, id uuid.UUID) (*entity.User, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	user, ok := t.store.users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (t *memTx) CreateUser(_ context.Context, user *entity.User) error {
	t.userWrites = append(t.userWrites, userWrite{user: *cloneUser(*user), create: true})
	return nil
}

func (t *memTx) UpdateUser(_ context.Context, user *entity.User) error {
	w := userWrite{user: *cloneUser(*user), expected: user.Version}
	w.user.Version = user.Version + 1
	t.userWrites = append(t.userWrites, w)
	user.Version++
	return nil
}

func (t *memTx) AppendLedger(_ context.Context, entry *entity.LedgerEntry) error {
	t.ledger = append(t.ledger, *entry)
	return nil
}

func (t *memTx) CreateNotification(_ context.Context, n *entity.Notification) error {
	t.notifications = append(t.notifications, *n)
	return nil
}

func cloneTask(t entity.Task) *entity.Task {
	if t.BuddyID != nil {
		id := *t.BuddyID
		t.BuddyID = &id
	}
	return &t
}

func cloneUser(u entity.User) *entity.User {
	if u.PhotoPath != nil {
		p := *u.PhotoPath
		u.PhotoPath = &p
	}
	return &u
}

// Tasks, Users и остальные возвращают представления хранилища
// под интерфейсы репозиториев чтения.
func (s *Store) Tasks() *TaskRepository                 { return &TaskRepository{s} }
func (s *Store) Users() *UserRepository                 { return &UserRepository{s} }
func (s *Store) Ledger() *LedgerRepository              { return &LedgerRepository{s} }
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{s} }
func (s *Store) Messages() *MessageRepository           { return &MessageRepository{s} }

type TaskRepository struct{ s *Store }

func (r *TaskRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	task, ok := r.s.tasks[id]
	if !ok {
		return nil, apperror.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

func (r *TaskRepository) List(_ context.Context, f repository.TaskFilter) ([]*entity.Task, int, error) {
	r.s.mu.Lock()
	var matched []*entity.Task
	for _, t := range r.s.tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.PosterID != nil && t.PosterID != *f.PosterID {
			continue
		}
		if f.BuddyID != nil && (t.BuddyID == nil || *t.BuddyID != *f.BuddyID) {
			continue
		}
		matched = append(matched, cloneTask(t))
	}
	r.s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})
	return page(matched, f.Limit, f.Offset), len(matched), nil
}

type UserRepository struct{ s *Store }

func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, apperror.ErrUserNotFound
}

func (r *UserRepository) UpdateProfile(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.users[user.ID]
	if !ok {
		return apperror.ErrUserNotFound
	}
	updated := cloneUser(*user)
	current.Name, current.Location, current.PhotoPath = updated.Name, updated.Location, updated.PhotoPath
	r.s.users[user.ID] = current
	return nil
}

func (r *UserRepository) TopByXP(_ context.Context, limit int) ([]*entity.User, error) {
	r.s.mu.Lock()
	users := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, cloneUser(u))
	}
	r.s.mu.Unlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].XP != users[j].XP {
			return users[i].XP > users[j].XP
		}
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID.String() < users[j].ID.String()
	})
	return page(users, limit, 0), nil
}

type LedgerRepository struct{ s *Store }

func (r *LedgerRepository) ListByUser(_ context.Context, userID uuid.UUID, f repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	r.s.mu.Lock()
	var result []*entity.LedgerEntry
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		e := r.s.ledger[i]
		if e.UserID != userID || (f.Type != "" && e.Type != f.Type) {
			continue
		}
		result = append(result, &e)
	}
	r.s.mu.Unlock()
	return page(result, f.Limit, f.Offset), nil
}

func (r *LedgerRepository) ListByTask(_ context.Context, taskID uuid.UUID) ([]*entity.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.LedgerEntry
	for _, e := range r.s.ledger {
		if e.TaskID != nil && *e.TaskID == taskID {
			entry := e
			result = append(result, &entry)
		}
	}
	return result, nil
}

type NotificationRepository struct{ s *Store }

func (r *NotificationRepository) List(_ context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	r.s.mu.Lock()
	var result []*entity.Notification
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		n := r.s.notifications[i]
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		result = append(result, &n)
	}
	r.s.mu.Unlock()
	return page(result, limit, offset), nil
}

func (r *NotificationRepository) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) MarkAsRead(_ context.Context, id, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.notifications {
		if r.s.notifications[i].ID == id && r.s.notifications[i].UserID == userID {
			r.s.notifications[i].IsRead = true
			return nil
		}
	}
	return apperror.ErrNotificationNotFound
}

func (r *NotificationRepository) MarkAllAsRead(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.notifications {
		if r.s.notifications[i].UserID == userID {
			r.s.notifications[i].IsRead = true
		}
	}
	return nil
}

type MessageRepository struct{ s *Store }

func (r *MessageRepository) Create(_ context.Context, msg *entity.Message) error {
	r.s.mu.Lock()
	r.s.messages = append(r.s.messages, *msg)
	r.s.mu.Unlock()
	return nil
}

func (r *MessageRepository) ListByTask(_ context.Context, taskID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	r.s.mu.Lock()
	var result []*entity.Message
	for _, m := range r.s.messages {
		if m.TaskID == taskID {
			msg := m
			result = append(result, &msg)
		}
	}
	r.s.mu.Unlock()
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return page(result, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var (
	_ repository.Transactor             = (*Store)(nil)
	_ repository.TaskRepository         = (*TaskRepository)(nil)
	_ repository.UserRepository         = (*UserRepository)(nil)
	_ repository.LedgerRepository       = (*LedgerRepository)(nil)
	_ repository.NotificationRepository = (*NotificationRepository)(nil)
	_ repository.MessageRepository      = (*MessageRepository)(nil)
)
