package model

import (
	"fmt"

	"github.com/rushteam/premiumkit/core"
	"github.com/rushteam/premiumkit/feature"
)

// ModelResolver 按年龄解析对应分段的模型，由 registry.Registry 实现
type ModelResolver interface {
	ModelFor(age float64) (ScoringModel, error)
}

// Router 选择年龄分段的模型，并把规范特征记录重排成模型期望的向量。
type Router struct {
	resolver ModelResolver
}

// NewRouter 创建模型路由
func NewRouter(resolver ModelResolver) *Router {
	return &Router{resolver: resolver}
}

// Route 返回 age 所在分段的模型
func (r *Router) Route(age float64) (ScoringModel, error) {
	m, err := r.resolver.ModelFor(age)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, core.NewConfigurationError(core.ModuleModel, fmt.Sprintf("no model for age %v", age))
	}
	return m, nil
}

// Reorder 按模型的 FeatureNames 顺序取值，多余的列丢弃。
// 模型要的列在记录里不存在返回 SCHEMA_MISMATCH。
func (r *Router) Reorder(rec *feature.Record, m ScoringModel) ([]float64, error) {
	names := m.FeatureNames()
	if len(names) == 0 {
		return nil, core.NewConfigurationError(core.ModuleModel,
			fmt.Sprintf("model %q declares no feature names", m.Name()))
	}
	vec := make([]float64, len(names))
	for i, name := range names {
		v, ok := rec.Get(name)
		if !ok {
			return nil, core.NewSchemaMismatchError(core.ModuleModel,
				fmt.Sprintf("model %q expects column %q, not in schema %s", m.Name(), name, rec.Schema().Version()))
		}
		vec[i] = v
	}
	return vec, nil
}
