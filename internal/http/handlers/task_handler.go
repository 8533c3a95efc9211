package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/dto"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/handlers/common"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/response"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/task"
)

// TaskHandler обслуживает задачи и переходы их состояний.
type TaskHandler struct {
	createTaskUC     *task.CreateTaskUseCase
	getTaskUC        *task.GetTaskUseCase
	listTasksUC      *task.ListTasksUseCase
	acceptTaskUC     *task.AcceptTaskUseCase
	requestPaymentUC *task.RequestPaymentUseCase
	releasePaymentUC *task.ReleasePaymentUseCase
	cancelTaskUC     *task.CancelTaskUseCase
}

func NewTaskHandler(
	createTaskUC *task.CreateTaskUseCase,
	getTaskUC *task.GetTaskUseCase,
	listTasksUC *task.ListTasksUseCase,
	acceptTaskUC *task.AcceptTaskUseCase,
	requestPaymentUC *task.RequestPaymentUseCase,
	releasePaymentUC *task.ReleasePaymentUseCase,
	cancelTaskUC *task.CancelTaskUseCase,
) *TaskHandler {
	return &TaskHandler{
		createTaskUC:     createTaskUC,
		getTaskUC:        getTaskUC,
		listTasksUC:      listTasksUC,
		acceptTaskUC:     acceptTaskUC,
		requestPaymentUC: requestPaymentUC,
		releasePaymentUC: releasePaymentUC,
		cancelTaskUC:     cancelTaskUC,
	}
}

// CreateTask обрабатывает POST /api/tasks.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	created, err := h.createTaskUC.Execute(c.Request.Context(), task.CreateTaskInput{
		PosterID:    userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Budget:      req.Budget,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTaskResponse(created))
}

// GetTask обрабатывает GET /api/tasks/:id.
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	t, err := h.getTaskUC.Execute(c.Request.Context(), taskID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponse(t))
}

// ListTasks обрабатывает GET /api/tasks?status=&category=&poster_id=&buddy_id=.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	input := task.ListTasksInput{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Limit:    limit,
		Offset:   offset,
	}

	var ok bool
	if input.PosterID, ok = optionalUUIDQuery(c, "poster_id"); !ok {
		return
	}
	if input.BuddyID, ok = optionalUUIDQuery(c, "buddy_id"); !ok {
		return
	}

	tasks, total, err := h.listTasksUC.Execute(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToTaskResponses(tasks), total, task.NormalizeLimit(limit), offset)
}

// AcceptTask обрабатывает POST /api/tasks/:id/accept.
func (h *TaskHandler) AcceptTask(c *gin.Context) {
	h.transition(c, h.acceptTaskUC.Execute)
}

// RequestPayment обрабатывает POST /api/tasks/:id/request-payment.
func (h *TaskHandler) RequestPayment(c *gin.Context) {
	h.transition(c, h.requestPaymentUC.Execute)
}

// ReleasePayment обрабатывает POST /api/tasks/:id/release-payment.
func (h *TaskHandler) ReleasePayment(c *gin.Context) {
	h.transition(c, h.releasePaymentUC.Execute)
}

// CancelTask обрабатывает POST /api/tasks/:id/cancel.
func (h *TaskHandler) CancelTask(c *gin.Context) {
	h.transition(c, h.cancelTaskUC.Execute)
}

type transitionFunc func(ctx context.Context, taskID, actorID uuid.UUID) (*entity.Task, error)

// transition выполняет переход состояния от имени текущего пользователя.
func (h *TaskHandler) transition(c *gin.Context, run transitionFunc) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	taskID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	updated, err := run(c.Request.Context(), taskID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponse(updated))
}

func optionalUUIDQuery(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(c, "parameter "+key+" must be a valid UUID")
		return nil, false
	}
	return &id, true
}
