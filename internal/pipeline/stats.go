// Operation timing and outcome tracking for pipeline runs
package pipeline

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Operation is one recorded pipeline operation
type Operation struct {
	Timestamp time.Time
	Name      string // "step", "layers", "metrics", ...
	Success   bool
	Duration  time.Duration
	Error     string
}

// OperationSummary aggregates the operations sharing a name
type OperationSummary struct {
	Count    int           `json:"count"`
	Failures int           `json:"failures"`
	Average  time.Duration `json:"average"`
	Total    time.Duration `json:"total"`
}

// Stats records operations and logs each one
type Stats struct {
	mu         sync.Mutex
	logger     *logrus.Logger
	operations []Operation
}

func NewStats(logger *logrus.Logger) *Stats {
	return &Stats{
		logger:     logger,
		operations: make([]Operation, 0),
	}
}

// Record stores an operation. A non-nil err marks it failed.
func (s *Stats) Record(name string, duration time.Duration, fields logrus.Fields, err error) {
	op := Operation{
		Timestamp: time.Now(),
		Name:      name,
		Success:   err == nil,
		Duration:  duration,
	}
	if err != nil {
		op.Error = err.Error()
	}

	s.mu.Lock()
	s.operations = append(s.operations, op)
	s.mu.Unlock()

	entry := s.logger.WithFields(fields).WithFields(logrus.Fields{
		"operation":   name,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("Pipeline operation failed")
		return
	}
	entry.Debug("Pipeline operation completed")
}

// Operations returns a copy of every recorded operation in order.
func (s *Stats) Operations() []Operation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Operation, len(s.operations))
	copy(out, s.operations)
	return out
}

// Summary groups the operations by name.
func (s *Stats) Summary() map[string]OperationSummary {
	grouped := lo.GroupBy(s.Operations(), func(op Operation) string { return op.Name })

	summary := make(map[string]OperationSummary, len(grouped))
	for name, ops := range grouped {
		total := lo.SumBy(ops, func(op Operation) time.Duration { return op.Duration })
		summary[name] = OperationSummary{
			Count:    len(ops),
			Failures: lo.CountBy(ops, func(op Operation) bool { return !op.Success }),
			Average:  total / time.Duration(len(ops)),
			Total:    total,
		}
	}
	return summary
}

// SuccessRate is the fraction of successful operations, 1 when none ran.
func (s *Stats) SuccessRate() float64 {
	ops := s.Operations()
	if len(ops) == 0 {
		return 1
	}
	return float64(lo.CountBy(ops, func(op Operation) bool { return op.Success })) / float64(len(ops))
}

// WriteStatus prints the summary and the most recent operations.
func (s *Stats) WriteStatus(w io.Writer, recent int) {
	summary := s.Summary()
	names := lo.Keys(summary)
	sort.Strings(names)

	fmt.Fprintln(w, "=== PIPELINE STATUS ===")
	fmt.Fprintf(w, "Success Rate: %.0f%%\n", s.SuccessRate()*100)
	for _, name := range names {
		sum := summary[name]
		fmt.Fprintf(w, "  %-10s count=%d failures=%d avg=%v\n", name, sum.Count, sum.Failures, sum.Average)
	}

	ops := s.Operations()
	recent = min(recent, len(ops))
	if recent <= 0 {
		return
	}
	fmt.Fprintln(w, "Recent Operations:")
	for _, op := range ops[len(ops)-recent:] {
		status := "SUCCESS"
		if !op.Success {
			status = "FAILED"
		}
		fmt.Fprintf(w, "  [%s] %s - %s (%v)\n", op.Timestamp.Format("15:04:05.000"), op.Name, status, op.Duration)
	}
}
