package feature

import "github.com/rushteam/premiumkit/core"

// FieldEncoder 是单字段编码器接口：一个原始字段 -> 若干规范列。
//
// 每个实现都是全函数：字段缺失、值未识别、值类型不对都会走具名的默认分支，
// 不返回错误。这是与训练管线保持一致的宽松解码策略。
type FieldEncoder interface {
	// FieldName 原始字段名
	FieldName() string
	// Columns 该字段产出的规范列（有序）
	Columns() []string
	// EncodeValue 编码单个值，present=false 表示请求中没有该字段
	EncodeValue(value any, present bool) map[string]float64
}

// Level 是 One-Hot 的一个显式类别：原始值 -> 指示列
type Level struct {
	Value  string
	Column string
}

// OneHotField 参照类别编码（reference-category encoding）。
// 每组丢弃一个类别作为参照，参照类别表现为所有指示列都是 0。
type OneHotField struct {
	Field  string
	Levels []Level
}

// NewOneHotField 创建 One-Hot 字段编码器
func NewOneHotField(field string, levels ...Level) *OneHotField {
	return &OneHotField{Field: field, Levels: levels}
}

func (e *OneHotField) FieldName() string { return e.Field }

func (e *OneHotField) Columns() []string {
	cols := make([]string, len(e.Levels))
	for i, lvl := range e.Levels {
		cols[i] = lvl.Column
	}
	return cols
}

// EncodeValue 精确匹配字符串值；其余情况走 reference 分支
func (e *OneHotField) EncodeValue(value any, present bool) map[string]float64 {
	encoded := e.reference()
	if !present {
		return encoded
	}
	s, ok := value.(string)
	if !ok {
		return encoded
	}
	for _, lvl := range e.Levels {
		if lvl.Value == s {
			encoded[lvl.Column] = 1.0
			break
		}
	}
	return encoded
}

// reference 默认分支：参照类别，全部指示列为 0
func (e *OneHotField) reference() map[string]float64 {
	encoded := make(map[string]float64, len(e.Levels))
	for _, lvl := range e.Levels {
		encoded[lvl.Column] = 0.0
	}
	return encoded
}

// OrdinalField 有序编码：类别 -> 整数等级，写入单列
type OrdinalField struct {
	Field   string
	Column  string
	Levels  map[string]float64
	Unknown float64 // 字段存在但值未识别
	Absent  float64 // 字段不存在
}

// NewOrdinalField 创建有序字段编码器
func NewOrdinalField(field, column string, levels map[string]float64, unknown, absent float64) *OrdinalField {
	return &OrdinalField{
		Field:   field,
		Column:  column,
		Levels:  levels,
		Unknown: unknown,
		Absent:  absent,
	}
}

func (e *OrdinalField) FieldName() string { return e.Field }

func (e *OrdinalField) Columns() []string { return []string{e.Column} }

// EncodeValue 编码单个值
func (e *OrdinalField) EncodeValue(value any, present bool) map[string]float64 {
	if !present {
		return map[string]float64{e.Column: e.Absent}
	}
	if s, ok := value.(string); ok {
		if level, ok := e.Levels[s]; ok {
			return map[string]float64{e.Column: level}
		}
	}
	return map[string]float64{e.Column: e.Unknown}
}

// InsurancePlanLevels 保险计划等级
var InsurancePlanLevels = map[string]float64{
	"Bronze": 1,
	"Silver": 2,
	"Gold":   3,
}

// DefaultFieldEncoders 返回训练时使用的字段编码定义
func DefaultFieldEncoders() []FieldEncoder {
	return []FieldEncoder{
		NewOneHotField(core.FieldGender,
			Level{"Male", ColGenderMale}),
		NewOneHotField(core.FieldRegion,
			Level{"Northwest", ColRegionNorthwest},
			Level{"Southeast", ColRegionSoutheast},
			Level{"Southwest", ColRegionSouthwest}),
		NewOneHotField(core.FieldMaritalStatus,
			Level{"Unmarried", ColMaritalStatusUnmarried}),
		NewOneHotField(core.FieldBMICategory,
			Level{"Obesity", ColBMIObesity},
			Level{"Overweight", ColBMIOverweight},
			Level{"Underweight", ColBMIUnderweight}),
		NewOneHotField(core.FieldSmokingStatus,
			Level{"Occasional", ColSmokingOccasional},
			Level{"Regular", ColSmokingRegular}),
		NewOneHotField(core.FieldEmploymentStatus,
			Level{"Salaried", ColEmploymentSalaried},
			Level{"Self-Employed", ColEmploymentSelfEmployed}),
		// 未识别的计划按 Bronze 处理；字段缺失保持 0
		NewOrdinalField(core.FieldInsurancePlan, ColInsurancePlan, InsurancePlanLevels, 1, 0),
	}
}

// CategoricalEncoder 把原始类别字段映射到固定的 One-Hot/有序列。
// 不在编码器列表中的原始字段被忽略。
type CategoricalEncoder struct {
	fields []FieldEncoder
}

// NewCategoricalEncoder 创建类别编码器
func NewCategoricalEncoder(fields ...FieldEncoder) *CategoricalEncoder {
	return &CategoricalEncoder{fields: fields}
}

// NewDefaultCategoricalEncoder 使用 DefaultFieldEncoders
func NewDefaultCategoricalEncoder() *CategoricalEncoder {
	return NewCategoricalEncoder(DefaultFieldEncoders()...)
}

// Columns 返回所有字段产出的列（按字段顺序）
func (e *CategoricalEncoder) Columns() []string {
	var cols []string
	for _, f := range e.fields {
		cols = append(cols, f.Columns()...)
	}
	return cols
}

// Encode 编码整条输入，返回每个类别列的取值（部分记录）
func (e *CategoricalEncoder) Encode(input core.ApplicantInput) map[string]float64 {
	encoded := make(map[string]float64)
	for _, f := range e.fields {
		value, present := input.Get(f.FieldName())
		for col, v := range f.EncodeValue(value, present) {
			encoded[col] = v
		}
	}
	return encoded
}
