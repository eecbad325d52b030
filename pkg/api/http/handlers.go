package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecanizales/plandag/pkg/domain"
)

// PlanRequest represents a planning or run submission request
type PlanRequest struct {
	Stories []domain.Story `json:"stories" binding:"required"`
}

// RunSubmitResponse represents a run submission response
type RunSubmitResponse struct {
	RunID       string `json:"run_id"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submitted_at"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	health := s.pool.Health()

	status := "healthy"
	code := http.StatusOK
	if !health.Healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": gin.H{
			"worker_pool": health,
		},
	})
}

// handleComputePlan handles one-shot planning requests
func (s *Server) handleComputePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Error("invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	plan, err := s.coordinator.Plan(req.Stories)
	if err != nil {
		var cycleErr *domain.CycleError
		if errors.As(err, &cycleErr) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error: ErrorDetail{
					Code:    "CYCLE_DETECTED",
					Message: cycleErr.Error(),
					Details: cycleErr.Cycles,
				},
			})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: ErrorDetail{
				Code:    "PLANNING_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, plan)
}

// handleExportDOT renders the dependency graph of a story batch as Graphviz DOT
func (s *Server) handleExportDOT(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	dot, err := s.coordinator.ExportDOT(req.Stories)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: ErrorDetail{
				Code:    "EXPORT_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	c.Data(http.StatusOK, "text/vnd.graphviz", []byte(dot))
}

// handleSubmitRun handles run submission
func (s *Server) handleSubmitRun(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Error("invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	runID, err := s.coordinator.SubmitRun(c.Request.Context(), req.Stories)
	if err != nil {
		s.logger.Error("failed to submit run", zap.Error(err))
		var cycleErr *domain.CycleError
		if errors.As(err, &cycleErr) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error: ErrorDetail{
					Code:    "CYCLE_DETECTED",
					Message: cycleErr.Error(),
					Details: cycleErr.Cycles,
				},
			})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: ErrorDetail{
				Code:    "SUBMISSION_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, RunSubmitResponse{
		RunID:       runID,
		Status:      "submitted",
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleGetRun handles getting full run details
func (s *Server) handleGetRun(c *gin.Context) {
	runID := c.Param("id")

	state, err := s.coordinator.GetStatus(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "Run not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, state)
}

// handleGetStatus handles getting run status
func (s *Server) handleGetStatus(c *gin.Context) {
	runID := c.Param("id")

	state, err := s.coordinator.GetStatus(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "Run not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":       state.RunID,
		"status":       state.Status,
		"submitted_at": state.SubmittedAt,
		"started_at":   state.StartedAt,
		"completed_at": state.CompletedAt,
	})
}

// handleCancelRun handles run cancellation
func (s *Server) handleCancelRun(c *gin.Context) {
	runID := c.Param("id")

	if err := s.coordinator.Cancel(c.Request.Context(), runID); err != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: ErrorDetail{
				Code:    "CANCELLATION_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":       runID,
		"status":       "cancelled",
		"cancelled_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleListWorkers reports the status of the worker pool
func (s *Server) handleListWorkers(c *gin.Context) {
	health := s.pool.Health()

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"totalWorkers":   health.Total,
			"idleWorkers":    health.Idle,
			"busyWorkers":    health.Busy,
			"stoppedWorkers": health.Stopped,
			"saturated":      health.Saturated,
			"workers":        s.pool.GetStatus(),
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
