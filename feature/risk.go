package feature

import "strings"

// MedicalHistorySeparator 病史中多个病症的分隔符（只按两项并存设计）
const MedicalHistorySeparator = " & "

// 风险分归一化的上下界：最高分 8（heart disease）+ 次高分 6
const (
	MinRiskScore = 0.0
	MaxRiskScore = 14.0
)

// DefaultRiskScores 病症 -> 风险分（key 为小写）
var DefaultRiskScores = map[string]float64{
	"diabetes":            6,
	"heart disease":       8,
	"high blood pressure": 6,
	"thyroid":             5,
	"no disease":          0,
	"none":                0,
}

// RiskNormalizer 把自由文本病史映射为归一化风险分。
//
// 公式: (sum - min) / (max - min)
//
// 未识别的病症记 0 分，不报错。结果不做截断：超过两项高风险病症时可以大于 1。
type RiskNormalizer struct {
	Scores map[string]float64
	Min    float64
	Max    float64
}

// NewRiskNormalizer 创建风险分归一化器
func NewRiskNormalizer(scores map[string]float64, min, max float64) *RiskNormalizer {
	return &RiskNormalizer{
		Scores: scores,
		Min:    min,
		Max:    max,
	}
}

// NewDefaultRiskNormalizer 使用训练时的分值表
func NewDefaultRiskNormalizer() *RiskNormalizer {
	return NewRiskNormalizer(DefaultRiskScores, MinRiskScore, MaxRiskScore)
}

// TotalScore 返回未归一化的总分
func (n *RiskNormalizer) TotalScore(medicalHistory string) float64 {
	total := 0.0
	for _, disease := range strings.Split(strings.ToLower(medicalHistory), MedicalHistorySeparator) {
		total += n.Scores[disease]
	}
	return total
}

// Normalize 返回归一化风险分
func (n *RiskNormalizer) Normalize(medicalHistory string) float64 {
	return (n.TotalScore(medicalHistory) - n.Min) / (n.Max - n.Min)
}
