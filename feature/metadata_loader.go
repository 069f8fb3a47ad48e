package feature

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ScalerLoader 缩放制品加载器接口
// 支持从不同来源加载（本地文件、HTTP 接口等）
type ScalerLoader interface {
	// Load 加载缩放制品
	// source 是数据源标识（文件路径、URL 等）
	Load(ctx context.Context, source string) (*ScalerArtifact, error)
}

// FileScalerLoader 本地文件缩放制品加载器
type FileScalerLoader struct{}

// NewFileScalerLoader 创建本地文件加载器
func NewFileScalerLoader() *FileScalerLoader {
	return &FileScalerLoader{}
}

// Load 从本地文件加载
func (l *FileScalerLoader) Load(ctx context.Context, filePath string) (*ScalerArtifact, error) {
	return LoadScalerArtifactFromFile(filePath)
}

// HTTPScalerLoader HTTP 接口缩放制品加载器
type HTTPScalerLoader struct {
	client *http.Client
}

// NewHTTPScalerLoader 创建 HTTP 接口加载器
//
// 用法：
//
//	loader := feature.NewHTTPScalerLoader(5 * time.Second)
//	artifact, err := loader.Load(ctx, "http://artifacts.internal/premium/v1/scaler_young.json")
func NewHTTPScalerLoader(timeout time.Duration) *HTTPScalerLoader {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPScalerLoader{
		client: &http.Client{Timeout: timeout},
	}
}

// NewHTTPScalerLoaderWithClient 使用自定义 HTTP 客户端创建加载器
func NewHTTPScalerLoaderWithClient(client *http.Client) *HTTPScalerLoader {
	return &HTTPScalerLoader{client: client}
}

// Load 从 HTTP 接口加载
func (l *HTTPScalerLoader) Load(ctx context.Context, url string) (*ScalerArtifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP 请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP 请求失败: status=%d, body=%s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	artifact, err := ParseScalerArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return artifact, nil
}

// LoaderFor 按 source 前缀选择加载器：http(s):// 走 HTTP，其余视为本地路径
func LoaderFor(source string, timeout time.Duration) ScalerLoader {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return NewHTTPScalerLoader(timeout)
	}
	return NewFileScalerLoader()
}
