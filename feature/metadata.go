package feature

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rushteam/premiumkit/core"
)

// ScalerArtifact 是外部提供的已拟合缩放制品：变换本身 + 它缩放的有序列名（cols_to_scale）。
// 按年龄分段各有一份，加载后只读。
type ScalerArtifact struct {
	// Name 制品名（用于日志）
	Name string
	// Columns 声明的缩放列，顺序即变换参数的位置
	Columns []string
	// Transformer 已拟合变换
	Transformer Transformer
}

// ColumnsToScale 返回声明的缩放列
func (a *ScalerArtifact) ColumnsToScale() []string {
	return a.Columns
}

// Validate 检查制品完整性，缺少列清单或参数宽度不符返回 CONFIGURATION
func (a *ScalerArtifact) Validate() error {
	if len(a.Columns) == 0 {
		return core.NewConfigurationError(core.ModuleScaling,
			fmt.Sprintf("scaler %q: the 'cols_to_scale' field is missing or empty", a.Name))
	}
	if a.Transformer == nil {
		return core.NewConfigurationError(core.ModuleScaling,
			fmt.Sprintf("scaler %q: the 'scaler' field is missing", a.Name))
	}
	if a.Transformer.Width() != len(a.Columns) {
		return core.NewConfigurationError(core.ModuleScaling,
			fmt.Sprintf("scaler %q: fitted on %d columns but declares %d", a.Name, a.Transformer.Width(), len(a.Columns)))
	}
	return nil
}

// scalerArtifactFile 对应 scaler_*.json
//
//	{"name": "scaler_young",
//	 "cols_to_scale": ["age", "number_of_dependants", "income_level", ...],
//	 "scaler": {"type": "minmax", "min": [...], "scale": [...]}}
type scalerArtifactFile struct {
	Name        string        `json:"name"`
	ColsToScale []string      `json:"cols_to_scale"`
	Scaler      *scalerParams `json:"scaler"`
}

type scalerParams struct {
	Type  string    `json:"type"`
	Min   []float64 `json:"min"`
	Scale []float64 `json:"scale"`
	Mean  []float64 `json:"mean"`
}

// ParseScalerArtifact 解析 JSON 缩放制品并校验
func ParseScalerArtifact(data []byte) (*ScalerArtifact, error) {
	var raw scalerArtifactFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, core.WrapDomainError(core.ModuleScaling, core.ErrorCodeConfiguration, "解析缩放制品失败", err)
	}

	artifact := &ScalerArtifact{Name: raw.Name, Columns: raw.ColsToScale}
	if raw.Scaler != nil {
		t, err := newTransformer(raw.Scaler)
		if err != nil {
			return nil, err
		}
		artifact.Transformer = t
	}
	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	return artifact, nil
}

func newTransformer(p *scalerParams) (Transformer, error) {
	switch p.Type {
	case TransformerMinMax:
		return NewMinMaxTransformer(p.Min, p.Scale)
	case TransformerStandard:
		return NewStandardTransformer(p.Mean, p.Scale)
	default:
		return nil, core.NewConfigurationError(core.ModuleScaling, fmt.Sprintf("unsupported scaler type %q", p.Type))
	}
}

// LoadScalerArtifactFromFile 从本地文件加载缩放制品
func LoadScalerArtifactFromFile(path string) (*ScalerArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取缩放制品文件失败: %w", err)
	}
	artifact, err := ParseScalerArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return artifact, nil
}
