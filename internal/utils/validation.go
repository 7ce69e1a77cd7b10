package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"kdigo-rationale-server/internal/models"
)

// FieldError describes one offending field by its dotted JSON path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation, not just the first.
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Field+": "+d.Message)
	}
	return "invalid inputs: " + strings.Join(parts, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator, reporting fields by their json names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", validators.NotBlank)
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ParseRationaleRequest turns a raw request body into a typed request.
// Values are never coerced: "9.2" is not a number and null is only accepted
// where a field is optional.
func ParseRationaleRequest(body []byte) (*models.RationaleRequest, error) {
	p := &parser{}

	root, ok := p.object("", body, true)
	if !ok {
		return nil, p.result()
	}

	req := &models.RationaleRequest{}

	if inputs, ok := p.object("inputs", root["inputs"], true); ok {
		req.Inputs = models.PatientInputs{
			Hemoglobin:           p.requiredNumber("inputs.hemoglobin", inputs["hemoglobin"]),
			PreviousHemoglobin:   p.optionalNumber("inputs.previousHemoglobin", firstPresent(inputs, "previousHemoglobin", "prevHb")),
			CurrentDose:          p.optionalNumber("inputs.currentDose", inputs["currentDose"]),
			EsaAgent:             p.requiredString("inputs.esaAgent", inputs["esaAgent"]),
			Weight:               p.requiredNumber("inputs.weight", inputs["weight"]),
			WeeksSinceLastChange: p.optionalNumber("inputs.weeksSinceLastChange", firstPresent(inputs, "weeksSinceLastChange", "weeksSinceChange")),
		}
		p.rules("inputs", req.Inputs)
	}

	if out, ok := p.object("ruleOutput", root["ruleOutput"], true); ok {
		req.RuleOutput = models.RuleOutput{
			WeeklyDose: p.requiredNumber("ruleOutput.weeklyDose", out["weeklyDose"]),
			PerDose:    p.requiredNumber("ruleOutput.perDose", out["perDose"]),
			Unit:       p.requiredString("ruleOutput.unit", out["unit"]),
			Note:       p.requiredString("ruleOutput.note", out["note"]),
		}
		p.rules("ruleOutput", req.RuleOutput)
	}

	if extra, ok := p.object("extra", root["extra"], false); ok && extra != nil {
		req.Extra = models.IdentityExtra{
			PatientName: p.optionalString("extra.patientName", extra["patientName"]),
			Age:         p.optionalInteger("extra.age", extra["age"]),
			Sex:         p.optionalString("extra.sex", extra["sex"]),
		}
		p.rules("extra", req.Extra)
	}

	if err := p.result(); err != nil {
		return nil, err
	}
	return req, nil
}

type parser struct {
	details []FieldError
}

func (p *parser) fail(field, format string, args ...any) {
	p.details = append(p.details, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) result() error {
	if len(p.details) == 0 {
		return nil
	}
	return &ValidationError{Details: p.details}
}

func (p *parser) object(field string, raw json.RawMessage, required bool) (map[string]json.RawMessage, bool) {
	name := field
	if name == "" {
		name = "body"
	}
	switch kind := jsonKind(raw); kind {
	case "undefined":
		if required {
			p.fail(name, "Required")
			return nil, false
		}
		return nil, true
	case "null":
		if required {
			p.fail(name, "Expected object, received null")
			return nil, false
		}
		return nil, true
	case "object":
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			p.fail(name, "Malformed JSON object")
			return nil, false
		}
		return m, true
	case "invalid":
		p.fail(name, "Malformed JSON")
		return nil, false
	default:
		p.fail(name, "Expected object, received %s", kind)
		return nil, false
	}
}

func (p *parser) number(field string, raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		p.fail(field, "Expected finite number")
		return 0, false
	}
	return f, true
}

func (p *parser) requiredNumber(field string, raw json.RawMessage) float64 {
	switch kind := jsonKind(raw); kind {
	case "number":
		f, _ := p.number(field, raw)
		return f
	case "undefined":
		p.fail(field, "Required")
	default:
		p.fail(field, "Expected number, received %s", kind)
	}
	return 0
}

func (p *parser) optionalNumber(field string, raw json.RawMessage) *float64 {
	switch kind := jsonKind(raw); kind {
	case "undefined", "null":
		return nil
	case "number":
		if f, ok := p.number(field, raw); ok {
			return &f
		}
	default:
		p.fail(field, "Expected number, received %s", kind)
	}
	return nil
}

func (p *parser) optionalInteger(field string, raw json.RawMessage) *int {
	f := p.optionalNumber(field, raw)
	if f == nil {
		return nil
	}
	if *f != math.Trunc(*f) {
		p.fail(field, "Expected integer, received float")
		return nil
	}
	if math.Abs(*f) > math.MaxInt32 {
		p.fail(field, "Number out of range")
		return nil
	}
	n := int(*f)
	return &n
}

func (p *parser) requiredString(field string, raw json.RawMessage) string {
	switch kind := jsonKind(raw); kind {
	case "string":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			p.fail(field, "Malformed string")
		}
		return s
	case "undefined":
		p.fail(field, "Required")
	default:
		p.fail(field, "Expected string, received %s", kind)
	}
	return ""
}

func (p *parser) optionalString(field string, raw json.RawMessage) *string {
	switch kind := jsonKind(raw); kind {
	case "undefined", "null":
		return nil
	case "string":
		s := p.requiredString(field, raw)
		return &s
	default:
		p.fail(field, "Expected string, received %s", kind)
		return nil
	}
}

// rules runs the struct-tag constraints and records each violation under prefix.
func (p *parser) rules(prefix string, v any) {
	err := Validator().Struct(v)
	if err == nil {
		return
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		p.fail(prefix, "%v", err)
		return
	}
	for _, fe := range errs {
		field := prefix + "." + fe.Field()
		if p.has(field) {
			continue
		}
		p.fail(field, "%s", ruleMessage(fe))
	}
}

// Type errors already explain the field; skip the rule violation they cause.
func (p *parser) has(field string) bool {
	for _, d := range p.details {
		if d.Field == field {
			return true
		}
	}
	return false
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "Must not be empty"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "lte":
		return "Must be less than or equal to " + fe.Param()
	default:
		return "Failed " + fe.Tag() + " rule"
	}
}

// jsonKind names the JSON type of raw the way error messages report it.
func jsonKind(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "undefined"
	}
	if !json.Valid(trimmed) {
		return "invalid"
	}
	switch c := trimmed[0]; {
	case c == '{':
		return "object"
	case c == '[':
		return "array"
	case c == '"':
		return "string"
	case c == 't' || c == 'f':
		return "boolean"
	case c == 'n':
		return "null"
	default:
		return "number"
	}
}

func firstPresent(m map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, k := range keys {
		if raw, ok := m[k]; ok {
			return raw
		}
	}
	return nil
}
