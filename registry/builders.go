package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/premiumkit/model"
)

// 使用清单加载时，需在 main 或入口处 import _ "github.com/rushteam/premiumkit/registry/builders"
// 以触发内置模型类型（linear、kserve、rpc）的 init 注册。

// ModelBuilder 根据分段名和模型配置构建 ScoringModel。
// 各模型类型在 init 中调用 Register(typeName, builder) 即可被清单驱动。
type ModelBuilder func(ctx context.Context, band string, spec ModelSpec) (model.ScoringModel, error)

var (
	defaultBuilders   = make(map[string]ModelBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种模型类型的构建逻辑
func Register(typeName string, builder ModelBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的模型类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func lookup(typeName string) (ModelBuilder, bool) {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	b, ok := defaultBuilders[typeName]
	return b, ok
}
