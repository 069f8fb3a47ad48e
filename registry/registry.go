// Package registry 维护年龄分段到 (scaler, model) 制品对的映射。
//
// 分段规则是 CEL 表达式，启动时编译一次；Resolve 同时服务于缩放路由和模型路由，
// 两者因此永远使用同一条分段边界。
package registry

import (
	"context"
	"fmt"

	"github.com/rushteam/premiumkit/core"
	"github.com/rushteam/premiumkit/feature"
	"github.com/rushteam/premiumkit/model"
	"github.com/rushteam/premiumkit/pkg/dsl"
)

// 默认分段
const (
	BandYoung = "young"
	BandRest  = "rest"

	// DefaultYoungMaxAge young 分段的年龄上限（含）
	DefaultYoungMaxAge = 25
)

// DefaultRules 清单中 when 为空时按分段名取的默认规则
var DefaultRules = map[string]string{
	BandYoung: fmt.Sprintf("age <= %d.0", DefaultYoungMaxAge),
	BandRest:  fmt.Sprintf("age > %d.0", DefaultYoungMaxAge),
}

// Band 一个年龄分段及其制品对
type Band struct {
	Name   string
	Rule   *dsl.Rule
	Scaler *feature.ScalerArtifact
	Model  model.ScoringModel
}

// Registry 按声明顺序保存分段，加载后只读，可并发使用。
type Registry struct {
	version string
	bands   []Band
}

// New 校验并创建注册表：分段名唯一，规则、scaler、model 齐全。
func New(version string, bands ...Band) (*Registry, error) {
	if len(bands) == 0 {
		return nil, core.NewConfigurationError(core.ModuleRegistry, "no bands configured")
	}
	seen := make(map[string]struct{}, len(bands))
	for _, b := range bands {
		if b.Name == "" {
			return nil, core.NewConfigurationError(core.ModuleRegistry, "band name is empty")
		}
		if _, dup := seen[b.Name]; dup {
			return nil, core.NewConfigurationError(core.ModuleRegistry, fmt.Sprintf("duplicate band %q", b.Name))
		}
		seen[b.Name] = struct{}{}
		if b.Rule == nil {
			return nil, core.NewConfigurationError(core.ModuleRegistry, fmt.Sprintf("band %q: rule is missing", b.Name))
		}
		if b.Scaler == nil {
			return nil, core.NewConfigurationError(core.ModuleRegistry, fmt.Sprintf("band %q: scaler is missing", b.Name))
		}
		if b.Model == nil {
			return nil, core.NewConfigurationError(core.ModuleRegistry, fmt.Sprintf("band %q: model is missing", b.Name))
		}
	}
	return &Registry{version: version, bands: append([]Band(nil), bands...)}, nil
}

// Version 制品集版本，参与预测缓存 key
func (r *Registry) Version() string { return r.version }

// BandNames 按声明顺序返回分段名
func (r *Registry) BandNames() []string {
	names := make([]string, len(r.bands))
	for i, b := range r.bands {
		names[i] = b.Name
	}
	return names
}

// Resolve 返回第一个规则命中的分段，均未命中返回 CONFIGURATION
func (r *Registry) Resolve(age float64) (*Band, error) {
	for i := range r.bands {
		b := &r.bands[i]
		ok, err := b.Rule.Match(age)
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleRegistry, core.ErrorCodeConfiguration,
				fmt.Sprintf("band %q: evaluate rule %q", b.Name, b.Rule), err)
		}
		if ok {
			return b, nil
		}
	}
	return nil, core.NewConfigurationError(core.ModuleRegistry, fmt.Sprintf("no band matches age %v", age))
}

// ScalerFor 实现 feature.ScalerResolver
func (r *Registry) ScalerFor(age float64) (*feature.ScalerArtifact, error) {
	b, err := r.Resolve(age)
	if err != nil {
		return nil, err
	}
	return b.Scaler, nil
}

// ModelFor 实现 model.ModelResolver
func (r *Registry) ModelFor(age float64) (model.ScoringModel, error) {
	b, err := r.Resolve(age)
	if err != nil {
		return nil, err
	}
	return b.Model, nil
}

type closer interface {
	Close(ctx context.Context) error
}

// Close 释放远程模型持有的连接
func (r *Registry) Close(ctx context.Context) error {
	return closeModels(ctx, r.bands)
}

func closeModels(ctx context.Context, bands []Band) error {
	var first error
	for _, b := range bands {
		if c, ok := b.Model.(closer); ok {
			if err := c.Close(ctx); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

var (
	_ feature.ScalerResolver = (*Registry)(nil)
	_ model.ModelResolver    = (*Registry)(nil)
)
