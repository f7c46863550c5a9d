package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/1Levick3/Analyser-chess/internal/engine"
)

// MockEvaluator is a mock implementation of engine.Evaluator
type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) Evaluate(ctx context.Context, fen string, depth int) (engine.EvalResult, error) {
	args := m.Called(ctx, fen, depth)
	return args.Get(0).(engine.EvalResult), args.Error(1)
}

// ScriptedEvaluator returns a fixed sequence of results, one per call, in
// order. It is safe for concurrent use.
type ScriptedEvaluator struct {
	Results []engine.EvalResult
	Errs    []error

	mu   sync.Mutex
	next int
}

func (s *ScriptedEvaluator) Evaluate(ctx context.Context, fen string, depth int) (engine.EvalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.next
	s.next++
	if i < len(s.Errs) && s.Errs[i] != nil {
		return engine.EvalResult{}, s.Errs[i]
	}
	if i >= len(s.Results) {
		return engine.EvalResult{}, context.Canceled
	}
	return s.Results[i], nil
}

// Calls reports how many evaluations were requested.
func (s *ScriptedEvaluator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
