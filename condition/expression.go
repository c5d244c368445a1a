package condition

import (
	"fmt"
	"log"

	"gopkg.in/Knetic/govaluate.v3"
)

// Expression evaluates a boolean expression over named scalar sources
// e.g. "height > 1.2 && speed < 0.5"
type Expression struct {
	source string
	expr   *govaluate.EvaluableExpression
	vars   map[string]ScalarSource
}

// NewExpression parses src; every variable it names must be bound in vars
func NewExpression(src string, vars map[string]ScalarSource) (*Expression, error) {
	expr, err := govaluate.NewEvaluableExpression(src)
	if err != nil {
		return nil, fmt.Errorf("parse expression %q: %w", src, err)
	}
	for _, name := range expr.Vars() {
		if _, ok := vars[name]; !ok {
			return nil, fmt.Errorf("expression %q: %w: %s", src, ErrUnboundSource, name)
		}
	}
	used := make(map[string]ScalarSource, len(expr.Vars()))
	for _, name := range expr.Vars() {
		used[name] = vars[name]
	}
	return &Expression{source: src, expr: expr, vars: used}, nil
}

// Check is false when a source is unavailable or the result is not a boolean
func (e *Expression) Check() bool {
	params := make(map[string]interface{}, len(e.vars))
	for name, src := range e.vars {
		v, ok := src.Value()
		if !ok {
			return false
		}
		params[name] = v
	}

	result, err := e.expr.Evaluate(params)
	if err != nil {
		log.Printf("[Condition] expression %q: %v", e.source, err)
		return false
	}
	b, ok := result.(bool)
	if !ok {
		log.Printf("[Condition] expression %q returned %T, want bool", e.source, result)
		return false
	}
	return b
}

func (e *Expression) String() string {
	return e.source
}
