package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kdigo-rationale-server/internal/audit"
	"kdigo-rationale-server/internal/config"
	"kdigo-rationale-server/internal/logger"
	"kdigo-rationale-server/internal/models"
	"kdigo-rationale-server/internal/rationale"
	"kdigo-rationale-server/internal/utils"
)

type fakeComposer struct{ calls int }

func (f *fakeComposer) Compose(inputs models.PatientInputs, out models.RuleOutput) (string, error) {
	f.calls++
	return "prompt", nil
}
func (f *fakeComposer) Edition() string { return "test edition" }

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.text, f.err
}
func (f *fakeGenerator) Model() string { return "test-model" }

type fakeRecorder struct {
	entries []audit.Entry
	err     error
}

func (f *fakeRecorder) Record(ctx context.Context, entry audit.Entry) (*models.AuditRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.entries = append(f.entries, entry)
	return &models.AuditRecord{ID: uint(len(f.entries)), PatientName: entry.Extra.PatientNameOrDefault()}, nil
}

type fakeReader struct {
	records []models.AuditRecord
	err     error
}

func (f *fakeReader) Recent(ctx context.Context) ([]models.AuditRecord, error) {
	return f.records, f.err
}

const validBody = `{
	"inputs": {"hemoglobin": 9.2, "esaAgent": "darbepoetin", "weight": 70},
	"ruleOutput": {"weeklyDose": 31.5, "perDose": 31.5, "unit": "mcg/week", "note": "Initial dose within guideline range"},
	"extra": {"patientName": "Jane Doe", "age": 64, "sex": "F"}
}`

func serve(t *testing.T, h *RationaleHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/kdigo-rationale", h.GenerateRationale)
	req := httptest.NewRequest(http.MethodPost, "/api/kdigo-rationale", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGenerateRationaleSuccess(t *testing.T) {
	gen := &fakeGenerator{text: "Rationale."}
	rec := &fakeRecorder{}
	h := NewRationaleHandler(&fakeComposer{}, gen, rec, config.AuditPolicyDeliver, logger.Nop())

	resp := serve(t, h, validBody)
	require.Equal(t, http.StatusOK, resp.Code)

	var body utils.ExplanationResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Rationale.", body.Explanation)

	require.Len(t, rec.entries, 1)
	entry := rec.entries[0]
	assert.Equal(t, "Rationale.", entry.Explanation)
	assert.Equal(t, "test edition", entry.GuidelineEdition)
	assert.Equal(t, "test-model", entry.Model)
	assert.Equal(t, 31.5, entry.RuleOutput.WeeklyDose)
	assert.Equal(t, "Jane Doe", *entry.Extra.PatientName)
}

func TestGenerateRationaleValidationFailure(t *testing.T) {
	comp := &fakeComposer{}
	gen := &fakeGenerator{text: "x"}
	rec := &fakeRecorder{}
	h := NewRationaleHandler(comp, gen, rec, config.AuditPolicyDeliver, logger.Nop())

	resp := serve(t, h, `{"inputs": {"hemoglobin": "high", "esaAgent": 3}, "ruleOutput": {"weeklyDose": 1, "perDose": 1, "unit": "u", "note": "n"}}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Invalid inputs", body.Error)
	fields := map[string]bool{}
	for _, d := range body.Details {
		fields[d.Field] = true
	}
	assert.True(t, fields["inputs.hemoglobin"])
	assert.True(t, fields["inputs.weight"])
	assert.True(t, fields["inputs.esaAgent"])

	assert.Zero(t, comp.calls)
	assert.Zero(t, gen.calls)
	assert.Empty(t, rec.entries)
}

func TestGenerateRationaleOversizedBody(t *testing.T) {
	comp := &fakeComposer{}
	gen := &fakeGenerator{text: "x"}
	h := NewRationaleHandler(comp, gen, &fakeRecorder{}, config.AuditPolicyDeliver, logger.Nop())

	padding := strings.Repeat("a", MaxRequestBodyBytes)
	resp := serve(t, h, `{"inputs": {"hemoglobin": 9.2, "esaAgent": "`+padding+`", "weight": 70}}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Invalid inputs", body.Error)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "body", body.Details[0].Field)
	assert.Zero(t, comp.calls)
	assert.Zero(t, gen.calls)
}

func TestGenerateRationaleGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: &rationale.GenerationError{Kind: rationale.KindRateLimited, Err: errors.New("openai http 429: secret detail")}}
	rec := &fakeRecorder{}
	h := NewRationaleHandler(&fakeComposer{}, gen, rec, config.AuditPolicyDeliver, logger.Nop())

	resp := serve(t, h, validBody)
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"error":"Failed to generate rationale"}`, resp.Body.String())
	assert.Empty(t, rec.entries)
}

func TestGenerateRationaleAuditFailurePolicy(t *testing.T) {
	persistErr := &audit.PersistenceError{Op: "insert", Err: errors.New("disk full")}

	t.Run("deliver", func(t *testing.T) {
		h := NewRationaleHandler(&fakeComposer{}, &fakeGenerator{text: "Rationale."}, &fakeRecorder{err: persistErr}, config.AuditPolicyDeliver, logger.Nop())
		resp := serve(t, h, validBody)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.JSONEq(t, `{"explanation":"Rationale."}`, resp.Body.String())
	})

	t.Run("fail", func(t *testing.T) {
		h := NewRationaleHandler(&fakeComposer{}, &fakeGenerator{text: "Rationale."}, &fakeRecorder{err: persistErr}, config.AuditPolicyFail, logger.Nop())
		resp := serve(t, h, validBody)
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
		assert.JSONEq(t, `{"error":"Failed to generate rationale"}`, resp.Body.String())
	})
}

func TestGenerateRationaleWithoutAuditing(t *testing.T) {
	h := NewRationaleHandler(&fakeComposer{}, &fakeGenerator{text: "Rationale."}, nil, config.AuditPolicyDeliver, logger.Nop())
	resp := serve(t, h, validBody)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestGetHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("ok", func(t *testing.T) {
		h := NewHistoryHandler(&fakeReader{records: []models.AuditRecord{{ID: 2, RecommendedDose: "31.5 mcg/week"}}}, logger.Nop())
		r := gin.New()
		r.GET("/api/history", h.GetHistory)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Data []models.AuditRecord `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Data, 1)
		assert.Equal(t, "31.5 mcg/week", body.Data[0].RecommendedDose)
	})

	t.Run("empty is an array", func(t *testing.T) {
		h := NewHistoryHandler(&fakeReader{}, logger.Nop())
		r := gin.New()
		r.GET("/api/history", h.GetHistory)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
		assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
	})

	t.Run("failure", func(t *testing.T) {
		h := NewHistoryHandler(&fakeReader{err: &audit.PersistenceError{Op: "select", Err: errors.New("no such table")}}, logger.Nop())
		r := gin.New()
		r.GET("/api/history", h.GetHistory)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to load history"}`, rec.Body.String())
	})
}
