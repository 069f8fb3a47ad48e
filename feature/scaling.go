package feature

import (
	"fmt"
	"math"

	"github.com/rushteam/premiumkit/core"
)

// ScalerResolver 按年龄解析对应分段的缩放制品，由 registry.Registry 实现
type ScalerResolver interface {
	ScalerFor(age float64) (*ScalerArtifact, error)
}

// PlaceholderColumns 缩放时临时注入的占位列。
//
// 训练时 scaler 是带着 income_level 列拟合的，这一列在推理时不存在也没有意义，
// 但它在 cols_to_scale 中占着一个位置：少了它，后面每一列都会拿到前一列的缩放参数。
var PlaceholderColumns = []string{ColIncomeLevel}

// ScalingRouter 选择年龄分段的缩放制品，并原地缩放记录中声明的列。
type ScalingRouter struct {
	resolver     ScalerResolver
	placeholders map[string]struct{}
}

// NewScalingRouter 创建缩放路由
func NewScalingRouter(resolver ScalerResolver) *ScalingRouter {
	placeholders := make(map[string]struct{}, len(PlaceholderColumns))
	for _, col := range PlaceholderColumns {
		placeholders[col] = struct{}{}
	}
	return &ScalingRouter{resolver: resolver, placeholders: placeholders}
}

// Scale 缩放记录并返回同一条记录。只有制品声明的列会变化，其余列逐位不变。
func (r *ScalingRouter) Scale(age float64, rec *Record) (*Record, error) {
	artifact, err := r.resolver.ScalerFor(age)
	if err != nil {
		return nil, err
	}
	if artifact == nil {
		return nil, core.NewConfigurationError(core.ModuleScaling, fmt.Sprintf("no scaler for age %v", age))
	}
	if err := r.apply(artifact, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// apply 是与制品位置约定打交道的唯一地方：注入占位列 -> 变换 -> 丢弃占位列。
func (r *ScalingRouter) apply(artifact *ScalerArtifact, rec *Record) error {
	cols := artifact.ColumnsToScale()
	if len(cols) == 0 {
		return core.NewConfigurationError(core.ModuleScaling,
			fmt.Sprintf("scaler %q: the 'cols_to_scale' field is missing or empty", artifact.Name))
	}
	if artifact.Transformer == nil {
		return core.NewConfigurationError(core.ModuleScaling,
			fmt.Sprintf("scaler %q: the 'scaler' field is missing", artifact.Name))
	}

	subset := make([]float64, len(cols))
	injected := make([]bool, len(cols))
	for i, col := range cols {
		if v, ok := rec.Get(col); ok {
			subset[i] = v
			continue
		}
		if _, ok := r.placeholders[col]; ok {
			subset[i] = math.NaN()
			injected[i] = true
			continue
		}
		return core.NewSchemaMismatchError(core.ModuleScaling,
			fmt.Sprintf("scaler %q: column %q is not in schema %s", artifact.Name, col, rec.Schema().Version()))
	}

	scaled, err := artifact.Transformer.Transform(subset)
	if err != nil {
		return fmt.Errorf("scaler %q: %w", artifact.Name, err)
	}

	for i, col := range cols {
		if injected[i] {
			continue
		}
		if err := rec.Set(col, scaled[i]); err != nil {
			return err
		}
	}
	return nil
}
