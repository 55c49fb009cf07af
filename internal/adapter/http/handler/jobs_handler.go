package handler

import (
	"github.com/gin-gonic/gin"

	"paygate/internal/core/ports"
	"paygate/pkg/apperror"
	"paygate/pkg/response"
)

// JobsHandler exposes broker-level queue statistics for test tooling.
type JobsHandler struct {
	queue ports.JobQueue
}

// NewJobsHandler creates a new JobsHandler.
func NewJobsHandler(queue ports.JobQueue) *JobsHandler {
	return &JobsHandler{queue: queue}
}

// Status handles GET /api/v1/test/jobs/status.
func (h *JobsHandler) Status(c *gin.Context) {
	counts, err := h.queue.Counts(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.Internal(err))
		return
	}
	response.OK(c, counts)
}
