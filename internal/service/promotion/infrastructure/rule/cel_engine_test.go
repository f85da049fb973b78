package rule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimart/internal/service/promotion/domain"
	"agrimart/internal/service/promotion/infrastructure/rule"
)

func TestCELRuleEngine_Evaluate(t *testing.T) {
	engine, err := rule.NewCELRuleEngine()
	require.NoError(t, err)

	fact := domain.Fact{
		ProductID: "seed-001",
		Category:  "Fertilizers",
		BranchID:  "branch-manila",
		Subtotal:  750,
	}

	tests := []struct {
		expr string
		want bool
	}{
		{`category == "Fertilizers" && subtotal >= 500.0`, true},
		{`category == "Tools"`, false},
		{`product_id.startsWith("seed")`, true},
		{`branch_id == "branch-cebu" || subtotal > 700.0`, true},
	}
	for _, tt := range tests {
		got, err := engine.Evaluate(tt.expr, fact)
		require.NoError(t, err, tt.expr)
		assert.Equal(t, tt.want, got, tt.expr)
	}
}

func TestCELRuleEngine_InvalidExpression(t *testing.T) {
	engine, err := rule.NewCELRuleEngine()
	require.NoError(t, err)

	_, err = engine.Evaluate(`category ==`, domain.Fact{})
	assert.Error(t, err)
}

func TestCELRuleEngine_NonBooleanResult(t *testing.T) {
	engine, err := rule.NewCELRuleEngine()
	require.NoError(t, err)

	_, err = engine.Evaluate(`subtotal + 1.0`, domain.Fact{Subtotal: 1})
	assert.Error(t, err)
}
