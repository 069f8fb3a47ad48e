package model

import "context"

// ScoringModel 是评分模型的最小抽象：输入按 FeatureNames 排好序的特征向量，输出一个原始分数。
// 具体实现可以是本地模型（线性模型）或远程服务（KServe / JSON RPC）。
// 模型内部如何计算不关心，流水线只依赖列顺序和 Predict。
type ScoringModel interface {
	Name() string
	// FeatureNames 模型期望的输入列，顺序即向量的位置
	FeatureNames() []string
	Predict(ctx context.Context, features []float64) (float64, error)
}
