package pipeline

import (
	"context"
	"fmt"
)

// Pipeline 把一次预测拆成按顺序执行的 Node 链，任一阶段出错立即返回，不重试。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(ctx context.Context, st *State) error {
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", node.Kind(), err)
		}
		if err := node.Process(ctx, st); err != nil {
			return fmt.Errorf("%s: %w", node.Kind(), err)
		}
	}
	return nil
}
