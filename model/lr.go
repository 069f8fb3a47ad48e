package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rushteam/premiumkit/core"
)

// LinearModel 实现了线性回归模型。
//
// 预测原理：
//
//	y = Intercept + sum(Coefficients[i] * x[i])
//
// 系数按位置对应 FeatureNames，输出即保费的原始预测值，不做任何激活变换。
type LinearModel struct {
	name         string
	featureNames []string
	Intercept    float64
	Coefficients []float64
}

// NewLinearModel 创建线性模型，系数个数必须与列数一致
func NewLinearModel(name string, featureNames []string, intercept float64, coefficients []float64) (*LinearModel, error) {
	if len(featureNames) == 0 {
		return nil, core.NewConfigurationError(core.ModuleModel,
			fmt.Sprintf("linear model %q: feature_names is empty", name))
	}
	if len(featureNames) != len(coefficients) {
		return nil, core.NewConfigurationError(core.ModuleModel,
			fmt.Sprintf("linear model %q: %d feature names but %d coefficients", name, len(featureNames), len(coefficients)))
	}
	return &LinearModel{
		name:         name,
		featureNames: featureNames,
		Intercept:    intercept,
		Coefficients: coefficients,
	}, nil
}

// LoadLinearModel 从 JSON 文件加载：
//
//	{"name": "model_young", "feature_names": ["age", ...], "intercept": 1.5, "coefficients": [...]}
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取模型文件失败: %w", err)
	}
	var raw struct {
		Name         string    `json:"name"`
		FeatureNames []string  `json:"feature_names"`
		Intercept    float64   `json:"intercept"`
		Coefficients []float64 `json:"coefficients"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeConfiguration,
			fmt.Sprintf("解析模型文件 %s 失败", path), err)
	}
	return NewLinearModel(raw.Name, raw.FeatureNames, raw.Intercept, raw.Coefficients)
}

func (m *LinearModel) Name() string { return m.name }

func (m *LinearModel) FeatureNames() []string { return m.featureNames }

func (m *LinearModel) Predict(_ context.Context, features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, core.NewSchemaMismatchError(core.ModuleModel,
			fmt.Sprintf("linear model %q: expects %d features, got %d", m.name, len(m.Coefficients), len(features)))
	}
	score := m.Intercept
	for i, v := range features {
		score += m.Coefficients[i] * v
	}
	return score, nil
}
