package dto

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required"`
	Location    string `json:"location"`
	Budget      int64  `json:"budget" binding:"required,gt=0"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// AmountRequest используется для пополнения и вывода средств.
type AmountRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}
