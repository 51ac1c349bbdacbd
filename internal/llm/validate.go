package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/statement-parser/constants"
)

// ValidateStructure checks the top-level shape only: bank_name, a statement_period
// object carrying start_date and end_date, and an accounts array.
func ValidateStructure(obj map[string]any) bool {
	if obj == nil {
		return false
	}
	if _, ok := obj["bank_name"]; !ok {
		return false
	}
	period, ok := obj["statement_period"].(map[string]any)
	if !ok {
		return false
	}
	if _, ok := period["start_date"]; !ok {
		return false
	}
	if _, ok := period["end_date"]; !ok {
		return false
	}
	_, ok = obj["accounts"].([]any)
	return ok
}

// ValidationReport is the outcome of Validator.Validate.
type ValidationReport struct {
	OK       bool
	Warnings []string
	Errors   []string
}

// Validator applies the configured strictness on top of ValidateStructure.
type Validator struct {
	strictness constants.Strictness
	schema     *jsonschema.Schema
	logger     *slog.Logger
}

func NewValidator(strictness constants.Strictness, logger *slog.Logger) (*Validator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	v := &Validator{strictness: strictness, logger: logger}
	if strictness == constants.StrictnessStructural {
		return v, nil
	}
	s, err := compileSchema(BuildStatementJSONSchema())
	if err != nil {
		return nil, err
	}
	v.schema = s
	return v, nil
}

func (v *Validator) Strictness() constants.Strictness { return v.strictness }

// Validate never fails on schema violations in warn mode; they come back as warnings.
func (v *Validator) Validate(obj map[string]any) ValidationReport {
	if !ValidateStructure(obj) {
		return ValidationReport{OK: false, Errors: []string{"missing bank_name, statement_period.start_date/end_date or accounts array"}}
	}
	if v.schema == nil {
		return ValidationReport{OK: true}
	}

	violations := schemaViolations(v.schema, obj)
	if len(violations) == 0 {
		return ValidationReport{OK: true}
	}
	if v.strictness == constants.StrictnessStrict {
		v.logger.Warn("llm.validate.strict_failed", "violations", len(violations))
		return ValidationReport{OK: false, Errors: violations}
	}
	v.logger.Warn("llm.validate.warnings", "violations", len(violations))
	return ValidationReport{OK: true, Warnings: violations}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	schema, err := compileSchema(schemaMap)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func schemaViolations(schema *jsonschema.Schema, obj map[string]any) []string {
	// round-trip so integer-typed values from coercion match the decoder's float64 shape
	b, err := json.Marshal(obj)
	if err != nil {
		return []string{err.Error()}
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return []string{err.Error()}
	}
	err = schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	var out []string
	collectLeaves(ve, &out)
	return out
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, loc+": "+ve.Message)
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, out)
	}
}
