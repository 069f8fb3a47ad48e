package feature

import (
	"fmt"

	"github.com/rushteam/premiumkit/core"
)

// 缩放器类型
const (
	TransformerMinMax   = "minmax"
	TransformerStandard = "standard"
)

// Transformer 是已拟合的缩放变换。
// 参数按位置生效：第 i 个参数作用于声明列表中的第 i 列，与列名无关。
type Transformer interface {
	// Kind 返回变换类型
	Kind() string
	// Width 返回拟合时的列数
	Width() int
	// Transform 变换一行数据，返回新切片
	Transform(values []float64) ([]float64, error)
}

// MinMaxTransformer Min-Max 归一化（已拟合参数）
// 公式: x' = x * scale + min，其中 scale = 1/(max-min)，min = -min_raw*scale
// 与 sklearn MinMaxScaler.transform 的计算顺序一致。
type MinMaxTransformer struct {
	Min   []float64 // sklearn min_
	Scale []float64 // sklearn scale_
}

// NewMinMaxTransformer 创建 Min-Max 变换
func NewMinMaxTransformer(min, scale []float64) (*MinMaxTransformer, error) {
	if len(min) != len(scale) {
		return nil, core.NewConfigurationError(core.ModuleScaling,
			fmt.Sprintf("minmax: min has %d values, scale has %d", len(min), len(scale)))
	}
	return &MinMaxTransformer{Min: min, Scale: scale}, nil
}

func (t *MinMaxTransformer) Kind() string { return TransformerMinMax }

func (t *MinMaxTransformer) Width() int { return len(t.Scale) }

// Transform 变换一行数据，NaN 原样传播
func (t *MinMaxTransformer) Transform(values []float64) ([]float64, error) {
	if err := checkWidth(t, values); err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		// 显式转换阻止编译器融合为 FMA，保持与训练端逐位一致
		out[i] = float64(v*t.Scale[i]) + t.Min[i]
	}
	return out, nil
}

// StandardTransformer Z-score 标准化（已拟合参数）
// 公式: z = (x - mean) / scale
// Mean 为空表示 with_mean=false，Scale 为空表示 with_std=false。
type StandardTransformer struct {
	Mean  []float64
	Scale []float64
	width int
}

// NewStandardTransformer 创建 Z-score 变换
func NewStandardTransformer(mean, scale []float64) (*StandardTransformer, error) {
	width := len(mean)
	if width == 0 {
		width = len(scale)
	}
	if (mean != nil && len(mean) != width) || (scale != nil && len(scale) != width) {
		return nil, core.NewConfigurationError(core.ModuleScaling,
			fmt.Sprintf("standard: mean has %d values, scale has %d", len(mean), len(scale)))
	}
	if width == 0 {
		return nil, core.NewConfigurationError(core.ModuleScaling, "standard: neither mean nor scale is set")
	}
	return &StandardTransformer{Mean: mean, Scale: scale, width: width}, nil
}

func (t *StandardTransformer) Kind() string { return TransformerStandard }

func (t *StandardTransformer) Width() int { return t.width }

// Transform 变换一行数据，NaN 原样传播
func (t *StandardTransformer) Transform(values []float64) ([]float64, error) {
	if err := checkWidth(t, values); err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if t.Mean != nil {
			v -= t.Mean[i]
		}
		if t.Scale != nil {
			v /= t.Scale[i]
		}
		out[i] = v
	}
	return out, nil
}

func checkWidth(t Transformer, values []float64) error {
	if len(values) != t.Width() {
		return core.NewConfigurationError(core.ModuleScaling,
			fmt.Sprintf("%s: fitted on %d columns, got %d", t.Kind(), t.Width(), len(values)))
	}
	return nil
}
