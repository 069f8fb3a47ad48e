package config

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rushteam/premiumkit/core"
	"github.com/rushteam/premiumkit/pipeline"
	"github.com/rushteam/premiumkit/pkg/logger"
	"github.com/rushteam/premiumkit/registry"
	_ "github.com/rushteam/premiumkit/registry/builders"
	"github.com/rushteam/premiumkit/store"
)

// CloseFunc 释放 Build 打开的资源
type CloseFunc func(ctx context.Context) error

// Build 按配置装配预测服务：日志 -> 分段注册表（并发加载制品）-> 缓存 -> 指标。
// promReg 为 nil 时不注册指标。
func Build(ctx context.Context, cfg *Config, promReg prometheus.Registerer) (*pipeline.Service, *zap.Logger, CloseFunc, error) {
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Service)
	if err != nil {
		return nil, nil, nil, err
	}

	reg, err := registry.LoadFile(ctx, cfg.Manifest,
		registry.WithLogger(log),
		registry.WithScalerTimeout(time.Duration(cfg.ScalerTimeout)*time.Second),
	)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, err
	}

	cache, err := newCache(ctx, cfg.Cache)
	if err != nil {
		_ = reg.Close(ctx)
		_ = log.Sync()
		return nil, nil, nil, err
	}

	opts := []pipeline.Option{pipeline.WithLogger(log)}
	if cache != nil {
		opts = append(opts, pipeline.WithCache(cache, cfg.Cache.TTLSeconds))
	}
	if promReg != nil {
		opts = append(opts, pipeline.WithMetrics(pipeline.NewMetrics(promReg, cfg.Metrics.Namespace)))
	}

	svc, err := pipeline.NewService(reg, opts...)
	if err != nil {
		_ = reg.Close(ctx)
		if cache != nil {
			_ = cache.Close()
		}
		return nil, nil, nil, err
	}

	log.Info("prediction service ready",
		zap.String("version", reg.Version()),
		zap.Strings("bands", reg.BandNames()),
		zap.String("cache", cfg.Cache.Type),
	)

	closeFn := func(ctx context.Context) error {
		var errs []error
		errs = append(errs, reg.Close(ctx))
		if cache != nil {
			errs = append(errs, cache.Close())
		}
		_ = log.Sync()
		return errors.Join(errs...)
	}
	return svc, log, closeFn, nil
}

func newCache(ctx context.Context, cfg CacheConfig) (core.Store, error) {
	switch cfg.Type {
	case CacheMemory:
		return store.NewMemoryStore(cfg.SizeBytes), nil
	case CacheRedis:
		return store.NewRedisStore(ctx, cfg.Addr, cfg.Password, cfg.DB, store.WithKeyPrefix(cfg.KeyPrefix))
	default:
		return nil, nil
	}
}
