package pipeline

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/rushteam/premiumkit/core"
	"github.com/rushteam/premiumkit/pkg/conv"
)

// InputSchema 输入契约：Age 与 Medical History 必填，数值透传字段必须是数字。
// 类别字段不约束类型，未识别的值按约定走默认分支。
var InputSchema = map[string]any{
	"type":     "object",
	"required": []any{core.FieldAge, core.FieldMedicalHistory},
	"properties": map[string]any{
		core.FieldAge:                map[string]any{"type": "number"},
		core.FieldMedicalHistory:     map[string]any{"type": "string"},
		core.FieldNumberOfDependants: map[string]any{"type": "number"},
		core.FieldIncomeLakhs:        map[string]any{"type": "number"},
		core.FieldGeneticalRisk:      map[string]any{"type": "number"},
	},
	"additionalProperties": true,
}

// Validator 校验原始输入
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator 编译 JSON schema
func NewValidator(schema map[string]any) (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, core.WrapDomainError(core.ModulePipeline, core.ErrorCodeConfiguration, "compile input schema", err)
	}
	return &Validator{schema: s}, nil
}

// Validate 校验输入并返回年龄
func (v *Validator) Validate(input core.ApplicantInput) (float64, error) {
	if input == nil {
		return 0, core.NewInvalidInputError(core.ModulePipeline, "input is empty")
	}
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(map[string]any(input)))
	if err != nil {
		return 0, core.WrapDomainError(core.ModulePipeline, core.ErrorCodeInvalidInput, "input is not a JSON object", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return 0, core.NewInvalidInputError(core.ModulePipeline,
			fmt.Sprintf("input validation failed: %s", strings.Join(errs, "; ")))
	}
	age, ok := conv.ToFiniteFloat64(input[core.FieldAge])
	if !ok {
		return 0, core.NewInvalidInputError(core.ModulePipeline, fmt.Sprintf("%q must be a finite number", core.FieldAge))
	}
	return age, nil
}
