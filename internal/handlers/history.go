package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kdigo-rationale-server/internal/audit"
	"kdigo-rationale-server/internal/logger"
	"kdigo-rationale-server/internal/middleware"
	"kdigo-rationale-server/internal/models"
	"kdigo-rationale-server/internal/utils"
)

// HistoryHandler serves read-only access to the audit trail.
type HistoryHandler struct {
	Reader audit.Reader
	Log    *logger.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(reader audit.Reader, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{Reader: reader, Log: log.With("handler", "HistoryHandler")}
}

// GetHistory returns the most recent audit records, newest first.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	records, err := h.Reader.Recent(c.Request.Context())
	if err != nil {
		h.Log.Error("Failed to load audit history", "request_id", middleware.GetRequestID(c), "error", err)
		utils.InternalServerError(c, utils.MsgHistoryFailed)
		return
	}
	if records == nil {
		records = []models.AuditRecord{}
	}
	utils.Success(c, utils.DataResponse{Data: records})
}

// HealthHandler reports liveness and the active capability profile.
func HealthHandler(auditingEnabled bool, edition string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "UP",
			"auditing": auditingEnabled,
			"edition":  edition,
		})
	}
}
