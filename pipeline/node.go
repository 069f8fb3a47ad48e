package pipeline

import (
	"context"

	"github.com/rushteam/premiumkit/core"
	"github.com/rushteam/premiumkit/feature"
	"github.com/rushteam/premiumkit/model"
)

// Kind 标记 Node 所处的阶段，用于错误包装和观测。
type Kind string

const (
	KindValidate  Kind = "validate"  // 输入契约校验
	KindNormalize Kind = "normalize" // 病史风险分归一化
	KindEncode    Kind = "encode"    // 类别编码
	KindAssemble  Kind = "assemble"  // 组装规范特征记录
	KindScale     Kind = "scale"     // 分段缩放
	KindRoute     Kind = "route"     // 分段模型选择
	KindReorder   Kind = "reorder"   // 按模型列顺序重排
	KindPredict   Kind = "predict"   // 模型推理
)

// State 单次请求在各阶段之间传递的状态，只属于这一次请求。
type State struct {
	Input core.ApplicantInput
	Age   float64

	Risk    float64
	Encoded map[string]float64
	Record  *feature.Record

	Band   string
	Model  model.ScoringModel
	Vector []float64

	Score float64
}

// Node 是 Pipeline 的最小单元：读取 State，写入自己负责的字段。
type Node interface {
	Kind() Kind
	Process(ctx context.Context, st *State) error
}
