// promotion-service/internal/infrastructure/rule/cel_engine.go
package rule

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"agrimart/internal/service/promotion/domain"
)

// CELRuleEngine 是 domain.RuleEngine 的 CEL 实现。
// 促销的适用条件写成一条 CEL 表达式，例如：
//
//	category == "Fertilizers" && subtotal >= 500.0
//
// 表达式编译结果按原文缓存，同一条规则只编译一次。
type CELRuleEngine struct {
	env   *cel.Env
	mu    sync.RWMutex
	cache map[string]cel.Program
}

// NewCELRuleEngine 创建引擎并声明事实变量。
func NewCELRuleEngine() (*CELRuleEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("product_id", cel.StringType),
		cel.Variable("category", cel.StringType),
		cel.Variable("branch_id", cel.StringType),
		cel.Variable("subtotal", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cel environment: %w", err)
	}
	return &CELRuleEngine{
		env:   env,
		cache: make(map[string]cel.Program),
	}, nil
}

// Evaluate 实现 domain.RuleEngine。
func (e *CELRuleEngine) Evaluate(ruleExpr string, fact domain.Fact) (bool, error) {
	prg, err := e.program(ruleExpr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]interface{}{
		"product_id": fact.ProductID,
		"category":   fact.Category,
		"branch_id":  fact.BranchID,
		"subtotal":   fact.Subtotal,
	})
	if err != nil {
		return false, fmt.Errorf("rule evaluation failed: %w", err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %q did not evaluate to a boolean", ruleExpr)
	}
	return matched, nil
}

func (e *CELRuleEngine) program(ruleExpr string) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.cache[ruleExpr]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(ruleExpr)
	if issues != nil && issues.Err() != nil {
		// 规则本身的语法错误
		return nil, fmt.Errorf("invalid rule expression: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule program: %w", err)
	}

	e.mu.Lock()
	e.cache[ruleExpr] = prg
	e.mu.Unlock()
	return prg, nil
}
