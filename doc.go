// Package premiumkit 是一个保费预测工具包。
//
// 设计要点：
// - Pipeline-first: 预测逻辑通过 Node 串联（Validate → Normalize → Encode → Assemble → Scale → Route → Reorder → Predict）
// - 分段注册表: 按年龄段选择 scaler 与模型，二者共用同一个分段判定
// - 制品只读: 加载完成后不再修改，Service 可无锁并发使用
package premiumkit

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rushteam/premiumkit/config"
	"github.com/rushteam/premiumkit/core"
	"github.com/rushteam/premiumkit/pipeline"
)

// 轻量 facade：便于用户直接 import "premiumkit" 使用核心抽象。
type (
	Service        = pipeline.Service
	Prediction     = pipeline.Prediction
	ApplicantInput = core.ApplicantInput
	Pipeline       = pipeline.Pipeline
	Node           = pipeline.Node
	Kind           = pipeline.Kind
)

const (
	KindValidate  = pipeline.KindValidate
	KindNormalize = pipeline.KindNormalize
	KindEncode    = pipeline.KindEncode
	KindAssemble  = pipeline.KindAssemble
	KindScale     = pipeline.KindScale
	KindRoute     = pipeline.KindRoute
	KindReorder   = pipeline.KindReorder
	KindPredict   = pipeline.KindPredict
)

// Open 读取配置文件并装配预测服务，返回的 close 函数释放模型连接与缓存。
func Open(ctx context.Context, configPath string, reg prometheus.Registerer) (*Service, config.CloseFunc, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	svc, _, closeFn, err := config.Build(ctx, cfg, reg)
	if err != nil {
		return nil, nil, err
	}
	return svc, closeFn, nil
}
