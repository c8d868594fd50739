package cel

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"sbpzip/pkg/sbp"
)

// Evaluator compiles CEL predicates over SBP messages. Expressions see:
//
//	msg_type  int     SBP message type id
//	sender    int     sender id as read from the log
//	side      string  "base" or "rover"
//	fields    map     every decoded JSON field of the message
type Evaluator struct {
	env *cel.Env
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("msg_type", cel.IntType),
		cel.Variable("sender", cel.IntType),
		cel.Variable("side", cel.StringType),
		cel.Variable("fields", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env}, nil
}

func (e *Evaluator) ValidateFilterExpression(expression string) error {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return fmt.Errorf("filter expression must return bool, got %v", ast.OutputType())
	}

	return nil
}

// Predicate is a compiled filter expression.
type Predicate struct {
	expression string
	program    cel.Program
}

func (e *Evaluator) CompilePredicate(expression string) (*Predicate, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile CEL expression: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("filter expression must return bool, got %v", ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &Predicate{expression: expression, program: program}, nil
}

func (p *Predicate) String() string {
	return p.expression
}

// Match evaluates the predicate against msg as seen on the given side.
func (p *Predicate) Match(ctx context.Context, side string, msg *sbp.Message) (bool, error) {
	fields, err := msg.Decoded()
	if err != nil {
		return false, err
	}

	vars := map[string]interface{}{
		"msg_type": int64(msg.Type),
		"sender":   int64(msg.Sender),
		"side":     side,
		"fields":   fields,
	}

	result, _, err := p.program.ContextEval(ctx, vars)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	boolVal, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return bool, got %T", result.Value())
	}

	return boolVal, nil
}
