package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rushteam/premiumkit/core"
)

// RPCModel 是通过 HTTP 调用外部评分服务的 ScoringModel 实现。
// 服务端按列名取值，所以请求里带的是 {列名: 值}。
type RPCModel struct {
	name         string
	featureNames []string
	Endpoint     string // 例如 "http://localhost:8080/predict"
	Timeout      time.Duration
	Client       *http.Client
}

func NewRPCModel(name, endpoint string, featureNames []string, timeout time.Duration) *RPCModel {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &RPCModel{
		name:         name,
		featureNames: featureNames,
		Endpoint:     endpoint,
		Timeout:      timeout,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (m *RPCModel) Name() string {
	return m.name
}

func (m *RPCModel) FeatureNames() []string { return m.featureNames }

// Predict 调用远程模型服务进行预测（单条，内部调用批量接口）。
func (m *RPCModel) Predict(ctx context.Context, features []float64) (float64, error) {
	scores, err := m.PredictBatch(ctx, [][]float64{features})
	if err != nil {
		return 0, err
	}
	return scores[0], nil
}

// PredictBatch 调用远程模型服务进行批量预测。
// 请求格式（JSON）：
//
//	{"features_list": [{"age": 0.25, "income_lakhs": 0.12, ...}, ...]}
//
// 响应格式（JSON）：
//
//	{"scores": [10234.5, 8120.0, ...]}
func (m *RPCModel) PredictBatch(ctx context.Context, vectors [][]float64) ([]float64, error) {
	if m.Client == nil {
		m.Client = &http.Client{Timeout: m.Timeout}
	}

	if len(vectors) == 0 {
		return []float64{}, nil
	}

	featuresList := make([]map[string]float64, len(vectors))
	for i, vec := range vectors {
		if len(vec) != len(m.featureNames) {
			return nil, core.NewSchemaMismatchError(core.ModuleModel,
				fmt.Sprintf("rpc model %q: expects %d features, got %d", m.name, len(m.featureNames), len(vec)))
		}
		row := make(map[string]float64, len(vec))
		for j, name := range m.featureNames {
			row[name] = vec[j]
		}
		featuresList[i] = row
	}

	// 构建请求
	jsonData, err := json.Marshal(map[string]any{"features_list": featuresList})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// 发送请求
	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeUnavailable, "rpc call", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeUnavailable,
				fmt.Sprintf("rpc error: status=%d, read body failed", resp.StatusCode), err)
		}
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeUnavailable,
			fmt.Sprintf("rpc error: status=%d, body=%s", resp.StatusCode, string(body)))
	}

	// 解析响应
	var result struct {
		Scores []float64 `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(result.Scores) != len(vectors) {
		return nil, fmt.Errorf("response scores count mismatch: expected %d, got %d", len(vectors), len(result.Scores))
	}

	return result.Scores, nil
}
