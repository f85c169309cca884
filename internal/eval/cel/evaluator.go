package cel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
)

var (
	// ErrExpression is returned when an expression does not compile
	ErrExpression = errors.New("invalid filter expression")

	// ErrFilter is returned when a record cannot be evaluated
	ErrFilter = errors.New("filter evaluation failed")
)

// Evaluator evaluates CEL expressions against a record
type Evaluator struct {
	env   *cel.Env
	cache map[string]cel.Program
	mu    sync.RWMutex
}

// NewEvaluator creates a new CEL evaluator
func NewEvaluator() *Evaluator {
	// Create CEL environment with the record declaration
	env, err := cel.NewEnv(
		cel.Declarations(
			decls.NewVar("record", decls.Dyn),
		),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create CEL environment: %v", err))
	}

	return &Evaluator{
		env:   env,
		cache: make(map[string]cel.Program),
	}
}

// Evaluate evaluates a CEL expression with the given record
func (e *Evaluator) Evaluate(ctx context.Context, expression string, record interface{}) (interface{}, error) {
	program, err := e.getProgram(expression)
	if err != nil {
		return nil, err
	}

	out, _, err := program.ContextEval(ctx, map[string]interface{}{"record": record})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFilter, err)
	}

	// Convert CEL value to Go value
	return out.Value(), nil
}

// getProgram gets a compiled program from cache or compiles it
func (e *Evaluator) getProgram(expression string) (cel.Program, error) {
	e.mu.RLock()
	if program, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return program, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine compiled it
	if program, ok := e.cache[expression]; ok {
		return program, nil
	}

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrExpression, issues.Err())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: program generation: %w", ErrExpression, err)
	}

	e.cache[expression] = program

	return program, nil
}

// Programs returns the number of compiled programs held in the cache
func (e *Evaluator) Programs() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

// ValidateExpression validates a CEL expression without evaluating it
func (e *Evaluator) ValidateExpression(expression string) error {
	_, err := e.getProgram(expression)
	return err
}

// Filter is a compiled boolean record predicate
type Filter struct {
	evaluator  *Evaluator
	expression string
}

// NewFilter compiles expression into a filter sharing the evaluator's
// program cache. An empty expression yields a nil Filter that keeps every
// record.
func (e *Evaluator) NewFilter(expression string) (*Filter, error) {
	if expression == "" {
		return nil, nil
	}

	if err := e.ValidateExpression(expression); err != nil {
		return nil, err
	}

	return &Filter{evaluator: e, expression: expression}, nil
}

// Match reports whether record passes the filter
func (f *Filter) Match(ctx context.Context, record interface{}) (bool, error) {
	if f == nil {
		return true, nil
	}

	result, err := f.evaluator.Evaluate(ctx, f.expression, record)
	if err != nil {
		return false, err
	}

	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("%w: expression returned %T, not bool", ErrFilter, result)
	}
	return matched, nil
}

// Expression returns the filter source
func (f *Filter) Expression() string {
	if f == nil {
		return ""
	}
	return f.expression
}
