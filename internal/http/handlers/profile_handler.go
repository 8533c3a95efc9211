package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/taskbuddy-backend/internal/http/dto"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/handlers/common"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/response"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/profile"
)

// Разрешённые типы аватаров, определяются по содержимому файла.
var allowedAvatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ProfileHandler обслуживает профиль текущего пользователя и публичные профили.
type ProfileHandler struct {
	getProfileUC    *profile.GetProfileUseCase
	updateProfileUC *profile.UpdateProfileUseCase
	uploadAvatarUC  *profile.UploadAvatarUseCase
	maxUploadBytes  int64
}

func NewProfileHandler(
	getProfileUC *profile.GetProfileUseCase,
	updateProfileUC *profile.UpdateProfileUseCase,
	uploadAvatarUC *profile.UploadAvatarUseCase,
	maxUploadBytes int64,
) *ProfileHandler {
	return &ProfileHandler{
		getProfileUC:    getProfileUC,
		updateProfileUC: updateProfileUC,
		uploadAvatarUC:  uploadAvatarUC,
		maxUploadBytes:  maxUploadBytes,
	}
}

// GetMe обрабатывает GET /api/profile.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	user, err := h.getProfileUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProfileResponse(user))
}

// GetUser обрабатывает GET /api/users/:id.
func (h *ProfileHandler) GetUser(c *gin.Context) {
	userID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.getProfileUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToPublicUserResponse(user))
}

// UpdateMe обрабатывает PUT /api/profile.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.updateProfileUC.Execute(c.Request.Context(), userID, profile.UpdateProfileInput{
		Name:     req.Name,
		Location: req.Location,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProfileResponse(user))
}

// UploadAvatar обрабатывает POST /api/profile/avatar (multipart, поле file).
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "field file is required")
		return
	}
	if file.Size == 0 {
		response.BadRequest(c, "file cannot be empty")
		return
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, response.Response{
			Success: false,
			Error:   "file is too large",
			Code:    "VALIDATION_ERROR",
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer src.Close()

	// Проверяем магические байты (реальный тип файла)
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		response.BadRequest(c, "could not read file")
		return
	}
	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown || !allowedAvatarTypes[kind.MIME.Value] {
		response.BadRequest(c, "only jpeg, png, gif and webp images are allowed")
		return
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.uploadAvatarUC.Execute(c.Request.Context(), userID, kind.Extension, src)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProfileResponse(user))
}
