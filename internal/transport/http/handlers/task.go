package http_handlers

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/workspace"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/response"
)

type TaskHandler struct {
	tasks workspace.TaskCreator
}

func NewTaskHandler(tasks workspace.TaskCreator) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// CreateTask handles POST /create-task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTaskRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	created, err := h.tasks.CreateTask(r.Context(), workspace.Task{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("page_id", created.ID).
		Msg("task_created")

	response.WriteJSON(w, http.StatusOK, dto.CreateTaskResponse{
		Message: "Task created in Notion!",
		Data:    created.Raw,
	})
}
