package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/premiumkit/core"
	"github.com/rushteam/premiumkit/pkg/conv"
)

// NewMLService 根据配置创建 MLService 实例（工厂方法）。
// 返回 core.MLService 接口。
func NewMLService(config *ServiceConfig) (core.MLService, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	opts := []KServeOption{
		WithKServeTimeout(timeout),
		WithKServeV2InputName(conv.ConfigGet(config.Params, "v2_input_name", "")),
		WithKServeV2OutputName(conv.ConfigGet(config.Params, "v2_output_name", "")),
	}
	if config.ModelVersion != "" {
		opts = append(opts, WithKServeVersion(config.ModelVersion))
	}
	if config.Auth != nil {
		opts = append(opts, WithKServeAuth(config.Auth))
	}

	switch config.Type {
	case ServiceTypeKServe, "":
		return NewKServeClient(config.Endpoint, config.ModelName, append(opts, WithKServeProtocol(KServeV2))...), nil
	case ServiceTypeKServeV1:
		return NewKServeClient(config.Endpoint, config.ModelName, append(opts, WithKServeProtocol(KServeV1))...), nil
	default:
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeNotSupported,
			fmt.Sprintf("unsupported service type: %s", config.Type))
	}
}

// ValidateConfig 验证服务配置
func ValidateConfig(config *ServiceConfig) error {
	if config == nil {
		return core.NewConfigurationError(core.ModuleService, "service config is required")
	}
	if config.Endpoint == "" {
		return core.NewConfigurationError(core.ModuleService, "endpoint is required")
	}
	if config.ModelName == "" {
		return core.NewConfigurationError(core.ModuleService, "model name is required")
	}
	return nil
}

// TestConnection 测试服务连接
func TestConnection(ctx context.Context, svc core.MLService) error {
	if svc == nil {
		return core.NewConfigurationError(core.ModuleService, "service is nil")
	}
	return svc.Health(ctx)
}
