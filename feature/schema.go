package feature

import (
	"fmt"

	"github.com/rushteam/premiumkit/core"
)

// 规范特征列名（与离线训练时的 DataFrame 列名逐字一致）
const (
	ColAge                    = "age"
	ColNumberOfDependants     = "number_of_dependants"
	ColIncomeLakhs            = "income_lakhs"
	ColInsurancePlan          = "insurance_plan"
	ColGeneticalRisk          = "genetical_risk"
	ColNormalizedRiskScore    = "normalized_risk_score"
	ColGenderMale             = "gender_Male"
	ColRegionNorthwest        = "region_Northwest"
	ColRegionSoutheast        = "region_Southeast"
	ColRegionSouthwest        = "region_Southwest"
	ColMaritalStatusUnmarried = "marital_status_Unmarried"
	ColBMIObesity             = "bmi_category_Obesity"
	ColBMIOverweight          = "bmi_category_Overweight"
	ColBMIUnderweight         = "bmi_category_Underweight"
	ColSmokingOccasional      = "smoking_status_Occasional"
	ColSmokingRegular         = "smoking_status_Regular"
	ColEmploymentSalaried     = "employment_status_Salaried"
	ColEmploymentSelfEmployed = "employment_status_Self-Employed"
	ColLegacyIndex            = "unnamed:_0"
	ColIncomeLevel            = "income_level"
)

// CanonicalSchemaVersion 规范特征 schema 的版本号
const CanonicalSchemaVersion = "v1"

// CanonicalColumns 规范特征 schema：18 个训练特征 + 1 个遗留索引占位列。
// 顺序固定，任何修改都必须同步升级 CanonicalSchemaVersion。
var CanonicalColumns = []string{
	ColAge, ColNumberOfDependants, ColIncomeLakhs, ColInsurancePlan, ColGeneticalRisk, ColNormalizedRiskScore,
	ColGenderMale, ColRegionNorthwest, ColRegionSoutheast, ColRegionSouthwest, ColMaritalStatusUnmarried,
	ColBMIObesity, ColBMIOverweight, ColBMIUnderweight, ColSmokingOccasional,
	ColSmokingRegular, ColEmploymentSalaried, ColEmploymentSelfEmployed,
	ColLegacyIndex,
}

// CanonicalSchema 是 CanonicalColumns 对应的 Schema
var CanonicalSchema = NewSchema(CanonicalSchemaVersion, CanonicalColumns)

// Schema 是带版本的有序列定义，创建后只读。
type Schema struct {
	version string
	columns []string
	index   map[string]int
}

// NewSchema 创建 Schema。重复列名会 panic，schema 属于代码常量而非运行时输入。
func NewSchema(version string, columns []string) *Schema {
	s := &Schema{
		version: version,
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range s.columns {
		if _, dup := s.index[col]; dup {
			panic(fmt.Sprintf("feature: duplicate column %q in schema %s", col, version))
		}
		s.index[col] = i
	}
	return s
}

// Version 返回 schema 版本
func (s *Schema) Version() string { return s.version }

// Len 返回列数
func (s *Schema) Len() int { return len(s.columns) }

// Columns 返回列名副本
func (s *Schema) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Index 返回列下标
func (s *Schema) Index(col string) (int, bool) {
	i, ok := s.index[col]
	return i, ok
}

// Record 是绑定在 Schema 上的一行数值特征（CanonicalFeatureRecord）。
// 每次请求创建，在编码→缩放各阶段原地修改，请求结束即丢弃。
type Record struct {
	schema *Schema
	values []float64
}

// NewRecord 创建全 0 记录
func NewRecord(schema *Schema) *Record {
	return &Record{
		schema: schema,
		values: make([]float64, schema.Len()),
	}
}

// Schema 返回记录所属 schema
func (r *Record) Schema() *Schema { return r.schema }

// Len 返回列数
func (r *Record) Len() int { return len(r.values) }

// Get 按列名读取
func (r *Record) Get(col string) (float64, bool) {
	i, ok := r.schema.Index(col)
	if !ok {
		return 0, false
	}
	return r.values[i], true
}

// Set 按列名写入，列不存在返回 SCHEMA_MISMATCH
func (r *Record) Set(col string, v float64) error {
	i, ok := r.schema.Index(col)
	if !ok {
		return core.NewSchemaMismatchError(core.ModuleFeature,
			fmt.Sprintf("column %q is not in schema %s", col, r.schema.Version()))
	}
	r.values[i] = v
	return nil
}

// Values 返回按 schema 顺序的数值副本
func (r *Record) Values() []float64 {
	return append([]float64(nil), r.values...)
}

// ToMap 转为 列名 -> 值
func (r *Record) ToMap() map[string]float64 {
	m := make(map[string]float64, len(r.values))
	for i, col := range r.schema.columns {
		m[col] = r.values[i]
	}
	return m
}
