package model

import (
	"context"
	"fmt"

	"github.com/rushteam/premiumkit/core"
)

// RemoteModel 把 core.MLService 适配成 ScoringModel。
// 列顺序由本地声明（FeatureNames），远程服务只收到排好序的向量。
type RemoteModel struct {
	name         string
	modelName    string
	featureNames []string
	service      core.MLService
}

// NewRemoteModel 创建远程模型。modelName 为服务端的模型名，可为空。
func NewRemoteModel(name, modelName string, featureNames []string, service core.MLService) (*RemoteModel, error) {
	if service == nil {
		return nil, core.NewConfigurationError(core.ModuleModel, fmt.Sprintf("remote model %q: service is nil", name))
	}
	if len(featureNames) == 0 {
		return nil, core.NewConfigurationError(core.ModuleModel,
			fmt.Sprintf("remote model %q: feature_names is empty", name))
	}
	return &RemoteModel{
		name:         name,
		modelName:    modelName,
		featureNames: featureNames,
		service:      service,
	}, nil
}

func (m *RemoteModel) Name() string { return m.name }

func (m *RemoteModel) FeatureNames() []string { return m.featureNames }

func (m *RemoteModel) Predict(ctx context.Context, features []float64) (float64, error) {
	resp, err := m.service.Predict(ctx, &core.MLPredictRequest{
		Instances:    [][]float64{features},
		FeatureNames: m.featureNames,
		ModelName:    m.modelName,
	})
	if err != nil {
		if core.IsDomainError(err) {
			return 0, err
		}
		return 0, core.WrapDomainError(core.ModuleModel, core.ErrorCodeUnavailable,
			fmt.Sprintf("remote model %q", m.name), err)
	}
	if resp == nil || len(resp.Predictions) == 0 {
		return 0, core.NewDomainError(core.ModuleModel, core.ErrorCodeUnavailable,
			fmt.Sprintf("remote model %q: empty predictions", m.name))
	}
	return resp.Predictions[0], nil
}

// Close 关闭底层服务连接
func (m *RemoteModel) Close(ctx context.Context) error {
	return m.service.Close(ctx)
}
