package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/service"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/leaderboard"
)

type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	PosterID    uuid.UUID  `json:"poster_id"`
	BuddyID     *uuid.UUID `json:"buddy_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Location    string     `json:"location"`
	Budget      int64      `json:"budget"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func ToTaskResponse(t *entity.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		PosterID:    t.PosterID,
		BuddyID:     t.BuddyID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Location:    t.Location,
		Budget:      t.Budget.Int64(),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func ToTaskResponses(tasks []*entity.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ToTaskResponse(t))
	}
	return out
}

// ProfileResponse описывает профиль текущего пользователя, включая кошелёк.
type ProfileResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Location      string    `json:"location"`
	PhotoPath     *string   `json:"photo_path"`
	WalletBalance int64     `json:"wallet_balance"`
	XP            int64     `json:"xp"`
	Level         string    `json:"level"`
	CreatedAt     time.Time `json:"created_at"`
}

func ToProfileResponse(u *entity.User) ProfileResponse {
	return ProfileResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Location:      u.Location,
		PhotoPath:     u.PhotoPath,
		WalletBalance: u.WalletBalance.Int64(),
		XP:            u.XP,
		Level:         string(u.Level()),
		CreatedAt:     u.CreatedAt,
	}
}

// PublicUserResponse содержит то, что видят другие пользователи.
type PublicUserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	PhotoPath *string   `json:"photo_path"`
	XP        int64     `json:"xp"`
	Level     string    `json:"level"`
}

func ToPublicUserResponse(u *entity.User) PublicUserResponse {
	return PublicUserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Location:  u.Location,
		PhotoPath: u.PhotoPath,
		XP:        u.XP,
		Level:     string(u.Level()),
	}
}

type AuthResponse struct {
	User        ProfileResponse `json:"user"`
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

func ToAuthResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{
		User:        ToProfileResponse(res.User),
		AccessToken: res.Token.Token,
		ExpiresAt:   res.Token.ExpiresAt,
	}
}

type WalletResponse struct {
	Balance int64  `json:"wallet_balance"`
	XP      int64  `json:"xp"`
	Level   string `json:"level"`
}

func ToWalletResponse(u *entity.User) WalletResponse {
	return WalletResponse{
		Balance: u.WalletBalance.Int64(),
		XP:      u.XP,
		Level:   string(u.Level()),
	}
}

type TransactionResponse struct {
	ID        uuid.UUID  `json:"id"`
	TaskID    *uuid.UUID `json:"task_id"`
	Type      string     `json:"type"`
	Amount    int64      `json:"amount"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

func ToTransactionResponses(entries []*entity.LedgerEntry) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, TransactionResponse{
			ID:        e.ID,
			TaskID:    e.TaskID,
			Type:      string(e.Type),
			Amount:    e.Amount.Int64(),
			Status:    string(e.Status),
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	TaskID    *uuid.UUID `json:"task_id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
}

func ToNotificationResponses(items []*entity.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, NotificationResponse{
			ID:        n.ID,
			TaskID:    n.TaskID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      string(n.Type),
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}

type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func ToMessageResponse(m *entity.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		TaskID:    m.TaskID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func ToMessageResponses(items []*entity.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(items))
	for _, m := range items {
		out = append(out, ToMessageResponse(m))
	}
	return out
}

type LeaderboardEntryResponse struct {
	Rank      int       `json:"rank"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	PhotoPath *string   `json:"photo_path"`
	XP        int64     `json:"xp"`
	Level     string    `json:"level"`
}

func ToLeaderboardResponse(entries []leaderboard.Entry) []LeaderboardEntryResponse {
	out := make([]LeaderboardEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LeaderboardEntryResponse{
			Rank:      e.Rank,
			UserID:    e.UserID,
			Name:      e.Name,
			PhotoPath: e.PhotoPath,
			XP:        e.XP,
			Level:     string(e.Level),
		})
	}
	return out
}
