package registry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/premiumkit/core"
	"github.com/rushteam/premiumkit/feature"
	"github.com/rushteam/premiumkit/pkg/dsl"
	"github.com/rushteam/premiumkit/pkg/logger"
)

type loadOptions struct {
	logger        *zap.Logger
	scalerTimeout time.Duration
	scalerLoader  func(source string) feature.ScalerLoader
}

// LoadOption 配置 Load
type LoadOption func(*loadOptions)

// WithLogger 设置日志
func WithLogger(l *zap.Logger) LoadOption {
	return func(o *loadOptions) {
		o.logger = l
	}
}

// WithScalerTimeout 设置 http(s) scaler 制品的下载超时
func WithScalerTimeout(d time.Duration) LoadOption {
	return func(o *loadOptions) {
		o.scalerTimeout = d
	}
}

// WithScalerLoader 固定使用某个 scaler 加载器（默认按 source 前缀选择）
func WithScalerLoader(l feature.ScalerLoader) LoadOption {
	return func(o *loadOptions) {
		o.scalerLoader = func(string) feature.ScalerLoader { return l }
	}
}

// Load 并发加载清单中每个分段的 scaler 与 model。
// 任何一个失败都会取消其余加载并返回错误，已构建的模型会被关闭，不会得到半套制品。
func Load(ctx context.Context, m *Manifest, opts ...LoadOption) (*Registry, error) {
	o := &loadOptions{scalerTimeout: 10 * time.Second}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logger.OrNop(o.logger)
	if o.scalerLoader == nil {
		o.scalerLoader = func(source string) feature.ScalerLoader {
			return feature.LoaderFor(source, o.scalerTimeout)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	// 规则先同步编译，表达式错误不必等到 IO
	bands := make([]Band, len(m.Bands))
	for i, spec := range m.Bands {
		rule, err := dsl.Compile(spec.Rule())
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleRegistry, core.ErrorCodeConfiguration,
				fmt.Sprintf("band %q: compile rule", spec.Name), err)
		}
		bands[i] = Band{Name: spec.Name, Rule: rule}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for i, spec := range m.Bands {
		i, spec := i, spec
		eg.Go(func() error {
			scaler, err := o.scalerLoader(spec.Scaler).Load(egCtx, spec.Scaler)
			if err != nil {
				return fmt.Errorf("band %q: load scaler: %w", spec.Name, err)
			}
			bands[i].Scaler = scaler
			return nil
		})
		eg.Go(func() error {
			build, _ := lookup(spec.Model.Type)
			mdl, err := build(egCtx, spec.Name, spec.Model)
			if err != nil {
				return fmt.Errorf("band %q: build %s model: %w", spec.Name, spec.Model.Type, err)
			}
			bands[i].Model = mdl
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		_ = closeModels(context.WithoutCancel(ctx), loaded(bands))
		return nil, err
	}

	reg, err := New(m.Version, bands...)
	if err != nil {
		_ = closeModels(context.WithoutCancel(ctx), loaded(bands))
		return nil, err
	}
	for _, b := range bands {
		o.logger.Info("band loaded",
			zap.String("band", b.Name),
			zap.String("rule", b.Rule.String()),
			zap.String("scaler", b.Scaler.Name),
			zap.Strings("cols_to_scale", b.Scaler.ColumnsToScale()),
			zap.String("model", b.Model.Name()),
			zap.Int("features", len(b.Model.FeatureNames())),
		)
	}
	return reg, nil
}

// LoadFile 读取清单文件并加载
func LoadFile(ctx context.Context, path string, opts ...LoadOption) (*Registry, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return Load(ctx, m, opts...)
}

func loaded(bands []Band) []Band {
	out := make([]Band, 0, len(bands))
	for _, b := range bands {
		if b.Model != nil {
			out = append(out, b)
		}
	}
	return out
}
