// promo-service/internal/infrastructure/rule/cel_rule_engine.go
package rule

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"promos/internal/service/promo/domain"
)

// CELRuleEngineAdapter 是 port.RuleEngine 接口的一个具体实现。
// 它把活动上配置的 CEL 表达式编译为可执行程序，对参与者事实求值。
// 这是一个典型的适配器模式应用：把第三方库的 API 适配到我们自己的领域接口。
type CELRuleEngineAdapter struct {
	env *cel.Env

	// 编译结果按规则文本缓存，同一活动的规则只编译一次
	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewCELRuleEngineAdapter 创建一个新的规则引擎适配器实例。
// 规则可以引用的变量集合在这里声明，和 domain.Participant.Fact 保持一致。
func NewCELRuleEngineAdapter() (*CELRuleEngineAdapter, error) {
	env, err := cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("email", cel.StringType),
		cel.Variable("age", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cel environment: %w", err)
	}
	return &CELRuleEngineAdapter{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Evaluate 实现了 port.RuleEngine 接口。
// 规则编译失败或结果不是布尔值都属于活动配置错误。
func (a *CELRuleEngineAdapter) Evaluate(ruleExpr string, fact domain.Fact) (bool, error) {
	program, err := a.compile(ruleExpr)
	if err != nil {
		return false, err
	}

	out, _, err := program.Eval(map[string]interface{}(fact))
	if err != nil {
		return false, errors.Wrapf(domain.ErrConfiguration, "rule evaluation failed: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, errors.Wrapf(domain.ErrConfiguration, "rule did not evaluate to a boolean: %T", out.Value())
	}
	return result, nil
}

func (a *CELRuleEngineAdapter) compile(ruleExpr string) (cel.Program, error) {
	a.mu.RLock()
	program, ok := a.programs[ruleExpr]
	a.mu.RUnlock()
	if ok {
		return program, nil
	}

	ast, iss := a.env.Compile(ruleExpr)
	if iss.Err() != nil {
		return nil, errors.Wrapf(domain.ErrConfiguration, "invalid entry rule: %v", iss.Err())
	}
	program, err := a.env.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrConfiguration, "failed to build rule program: %v", err)
	}

	a.mu.Lock()
	a.programs[ruleExpr] = program
	a.mu.Unlock()
	return program, nil
}
