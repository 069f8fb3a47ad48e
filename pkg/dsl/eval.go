package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// VarAge 是分段规则中可用的唯一变量：投保人年龄（double）。
const VarAge = "age"

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(VarAge, cel.DoubleType),
		// 允许 age <= 25 这种 double 与 int 字面量的比较
		cel.CrossTypeNumericComparisons(true),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Rule 是编译好的年龄分段规则，使用 CEL (Common Expression Language) 表达。
//
// 表达式语法（CEL 标准语法）：
//   - age <= 25.0
//   - age > 25.0
//   - age >= 18.0 && age < 60.0
//
// Rule 在启动时编译一次，Match 只做求值，可并发调用。
type Rule struct {
	expr string
	prg  cel.Program
}

// Compile 编译规则表达式。
func Compile(expr string) (*Rule, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty rule expression")
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Rule{expr: expr, prg: prg}, nil
}

// MustCompile 与 Compile 相同，失败时 panic。仅用于内置常量规则。
func MustCompile(expr string) *Rule {
	r, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return r
}

// Match 对给定年龄求值，表达式必须返回布尔值。
func (r *Rule) Match(age float64) (bool, error) {
	out, _, err := r.prg.Eval(map[string]any{VarAge: age})
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", r.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %q must return boolean, got %T", r.expr, out.Value())
	}
	return result, nil
}

// String 返回规则原文
func (r *Rule) String() string {
	return r.expr
}
