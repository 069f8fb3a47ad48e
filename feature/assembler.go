package feature

import (
	"fmt"
	"sort"

	"github.com/rushteam/premiumkit/core"
	"github.com/rushteam/premiumkit/pkg/conv"
)

// NumericField 数值直通字段：原始字段 -> 规范列
type NumericField struct {
	Field    string
	Column   string
	Required bool
}

// DefaultNumericFields 训练时直接使用的数值字段
var DefaultNumericFields = []NumericField{
	{Field: core.FieldAge, Column: ColAge, Required: true},
	{Field: core.FieldNumberOfDependants, Column: ColNumberOfDependants},
	{Field: core.FieldIncomeLakhs, Column: ColIncomeLakhs},
	{Field: core.FieldGeneticalRisk, Column: ColGeneticalRisk},
}

// Assembler 把数值直通字段、类别编码结果与归一化风险分合并成一条规范记录（FeatureAssembler）。
//
// 这是对固定形状结构的纯合并：先全部置 0，再逐项覆盖，写入顺序不影响结果。
type Assembler struct {
	schema  *Schema
	numeric []NumericField
}

// NewAssembler 创建组装器
func NewAssembler(schema *Schema, numeric []NumericField) *Assembler {
	return &Assembler{schema: schema, numeric: numeric}
}

// NewDefaultAssembler 使用规范 schema 与默认数值字段
func NewDefaultAssembler() *Assembler {
	return NewAssembler(CanonicalSchema, DefaultNumericFields)
}

// Schema 返回组装使用的 schema
func (a *Assembler) Schema() *Schema { return a.schema }

// Assemble 组装规范记录
func (a *Assembler) Assemble(input core.ApplicantInput, encoded map[string]float64, normalizedRisk float64) (*Record, error) {
	rec := NewRecord(a.schema)

	for _, nf := range a.numeric {
		raw, ok := input.Get(nf.Field)
		if !ok {
			if nf.Required {
				return nil, core.NewInvalidInputError(core.ModuleFeature, fmt.Sprintf("%s is required", nf.Field))
			}
			continue
		}
		v, ok := conv.ToFloat64(raw)
		if !ok {
			return nil, core.NewInvalidInputError(core.ModuleFeature,
				fmt.Sprintf("%s must be a number, got %T", nf.Field, raw))
		}
		if err := rec.Set(nf.Column, v); err != nil {
			return nil, err
		}
	}

	// 按列名排序写入，出错时报告的列稳定
	cols := make([]string, 0, len(encoded))
	for col := range encoded {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		if err := rec.Set(col, encoded[col]); err != nil {
			return nil, err
		}
	}

	if err := rec.Set(ColNormalizedRiskScore, normalizedRisk); err != nil {
		return nil, err
	}
	// 遗留索引列只为兼容训练制品存在，恒为 0
	if _, ok := a.schema.Index(ColLegacyIndex); ok {
		if err := rec.Set(ColLegacyIndex, 0); err != nil {
			return nil, err
		}
	}
	return rec, nil
}
