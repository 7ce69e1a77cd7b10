package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"kdigo-rationale-server/internal/audit"
	"kdigo-rationale-server/internal/config"
	"kdigo-rationale-server/internal/logger"
	"kdigo-rationale-server/internal/middleware"
	"kdigo-rationale-server/internal/models"
	"kdigo-rationale-server/internal/rationale"
	"kdigo-rationale-server/internal/utils"
)

// Composer builds the generation prompt.
type Composer interface {
	Compose(inputs models.PatientInputs, ruleOutput models.RuleOutput) (string, error)
	Edition() string
}

// Generator produces the sanitized rationale text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// MaxRequestBodyBytes caps the POST /api/kdigo-rationale payload.
const MaxRequestBodyBytes = 64 << 10

// RationaleHandler serves POST /api/kdigo-rationale.
type RationaleHandler struct {
	Composer    Composer
	Generator   Generator
	Recorder    audit.Recorder // nil when auditing is disabled
	AuditPolicy string
	Log         *logger.Logger
}

// NewRationaleHandler creates a new RationaleHandler.
func NewRationaleHandler(composer Composer, generator Generator, recorder audit.Recorder, auditPolicy string, log *logger.Logger) *RationaleHandler {
	return &RationaleHandler{
		Composer:    composer,
		Generator:   generator,
		Recorder:    recorder,
		AuditPolicy: auditPolicy,
		Log:         log.With("handler", "RationaleHandler"),
	}
}

// GenerateRationale validates the payload, asks the generator for an
// explanation and records it. The rule output is passed through untouched.
func (h *RationaleHandler) GenerateRationale(c *gin.Context) {
	requestID := middleware.GetRequestID(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxRequestBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ValidationFailed(c, &utils.ValidationError{Details: []utils.FieldError{
				{Field: "body", Message: fmt.Sprintf("Request body exceeds %d bytes", MaxRequestBodyBytes)},
			}})
			return
		}
		h.Log.Error("Failed to read request body", "request_id", requestID, "error", err)
		utils.InternalServerError(c, utils.MsgGenerationFailed)
		return
	}

	req, err := utils.ParseRationaleRequest(body)
	if err != nil {
		var verr *utils.ValidationError
		if errors.As(err, &verr) {
			utils.ValidationFailed(c, verr)
			return
		}
		h.Log.Error("Unexpected validation failure", "request_id", requestID, "error", err)
		utils.InternalServerError(c, utils.MsgGenerationFailed)
		return
	}

	prompt, err := h.Composer.Compose(req.Inputs, req.RuleOutput)
	if err != nil {
		h.Log.Error("Failed to compose prompt", "request_id", requestID, "error", err)
		utils.InternalServerError(c, utils.MsgGenerationFailed)
		return
	}

	explanation, err := h.Generator.Generate(c.Request.Context(), prompt)
	if err != nil {
		kind := rationale.KindProvider
		var genErr *rationale.GenerationError
		if errors.As(err, &genErr) {
			kind = genErr.Kind
		}
		h.Log.Error("Rationale generation failed", "request_id", requestID, "kind", string(kind), "error", err)
		utils.InternalServerError(c, utils.MsgGenerationFailed)
		return
	}

	if h.Recorder != nil {
		record, err := h.Recorder.Record(c.Request.Context(), audit.Entry{
			Inputs:           req.Inputs,
			RuleOutput:       req.RuleOutput,
			Extra:            req.Extra,
			Explanation:      explanation,
			GuidelineEdition: h.Composer.Edition(),
			Model:            h.Generator.Model(),
			RequestID:        requestID,
		})
		if err != nil {
			h.Log.Error("Audit record not persisted; rationale was generated", "request_id", requestID, "policy", h.AuditPolicy, "error", err)
			if h.AuditPolicy == config.AuditPolicyFail {
				utils.InternalServerError(c, utils.MsgGenerationFailed)
				return
			}
		} else {
			h.Log.Info("Audit record persisted", "request_id", requestID, "audit_id", record.ID, "patient_name", record.PatientName)
		}
	}

	utils.Success(c, utils.ExplanationResponse{Explanation: explanation})
}
