// Package builders 在 init 中注册内置模型类型，供清单驱动加载使用。
// 使用方式：在 main 或入口处 import _ "github.com/rushteam/premiumkit/registry/builders"
package builders

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/premiumkit/core"
	"github.com/rushteam/premiumkit/model"
	"github.com/rushteam/premiumkit/registry"
	"github.com/rushteam/premiumkit/service"
)

// 模型类型
const (
	TypeLinear = "linear"
	TypeKServe = "kserve"
	TypeRPC    = "rpc"
)

func init() {
	registry.Register(TypeLinear, buildLinear)
	registry.Register(TypeKServe, buildKServe)
	registry.Register(TypeRPC, buildRPC)
}

func buildLinear(_ context.Context, band string, spec registry.ModelSpec) (model.ScoringModel, error) {
	if spec.Path == "" {
		return nil, core.NewConfigurationError(core.ModuleRegistry, fmt.Sprintf("band %q: linear model path is required", band))
	}
	return model.LoadLinearModel(spec.Path)
}

func buildKServe(ctx context.Context, band string, spec registry.ModelSpec) (model.ScoringModel, error) {
	svcType := service.ServiceTypeKServe
	if spec.Protocol == service.KServeV1 {
		svcType = service.ServiceTypeKServeV1
	}
	svc, err := service.NewMLService(&service.ServiceConfig{
		Type:         svcType,
		Endpoint:     spec.Endpoint,
		ModelName:    spec.ModelName,
		ModelVersion: spec.ModelVersion,
		Timeout:      spec.Timeout,
		Params:       spec.Params,
	})
	if err != nil {
		return nil, err
	}
	m, err := model.NewRemoteModel(band, spec.ModelName, spec.FeatureNames, svc)
	if err != nil {
		_ = svc.Close(ctx)
		return nil, err
	}
	return m, nil
}

func buildRPC(_ context.Context, band string, spec registry.ModelSpec) (model.ScoringModel, error) {
	if spec.Endpoint == "" {
		return nil, core.NewConfigurationError(core.ModuleRegistry, fmt.Sprintf("band %q: rpc endpoint is required", band))
	}
	if len(spec.FeatureNames) == 0 {
		return nil, core.NewConfigurationError(core.ModuleRegistry, fmt.Sprintf("band %q: rpc feature_names is required", band))
	}
	return model.NewRPCModel(band, spec.Endpoint, spec.FeatureNames, time.Duration(spec.Timeout)*time.Second), nil
}
