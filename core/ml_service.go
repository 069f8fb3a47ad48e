package core

import "context"

// MLService 是机器学习服务的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（service）实现
//   - 领域层不依赖基础设施层，model.RemoteModel 只认识这个接口
//
// 实现：
//   - service.KServeClient（KServe V1/V2 协议）
//   - 测试替身
type MLService interface {
	// Predict 批量预测
	Predict(ctx context.Context, req *MLPredictRequest) (*MLPredictResponse, error)

	// Health 健康检查
	Health(ctx context.Context) error

	// Close 关闭连接
	Close(ctx context.Context) error
}

// MLPredictRequest 预测请求
type MLPredictRequest struct {
	// Instances 特征实例列表（每个实例是一个按模型输入顺序排好的特征向量）
	// 格式：[[f1, f2, f3, ...], ...]
	Instances [][]float64

	// FeatureNames 与 Instances 每一维对应的列名（可选，部分服务按名字取值）
	FeatureNames []string

	// ModelName 模型名称（可选，如果服务支持多模型）
	ModelName string

	// ModelVersion 模型版本（可选）
	ModelVersion string

	// Params 额外参数（可选）
	Params map[string]interface{}
}

// MLPredictResponse 预测响应
type MLPredictResponse struct {
	// Predictions 预测结果列表（与请求实例一一对应）
	Predictions []float64

	// Outputs 原始输出（可选，用于调试）
	Outputs interface{}

	// ModelVersion 模型版本（如果服务返回）
	ModelVersion string
}
