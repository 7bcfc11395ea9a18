package health

import (
	"context"
	"fmt"
)

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Per-dependency states in a Report.
const (
	StatusUp   = "ok"
	StatusDown = "down"
)

// Report is the outcome of one readiness run.
type Report struct {
	Checks map[string]string
	// Err is the first failure, prefixed with the checker name.
	Err error
}

// Ready reports whether every dependency answered.
func (r Report) Ready() bool { return r.Err == nil }

// ReadinessUseCase describes readiness verification.
type ReadinessUseCase interface {
	Check(ctx context.Context) Report
}

type service struct {
	checkers []Checker
}

// NewService aggregates dependency checkers. With no checkers the service is always ready.
func NewService(checkers ...Checker) ReadinessUseCase {
	return &service{checkers: checkers}
}

// Check runs every checker once, even after a failure, so the report covers them all.
func (s *service) Check(ctx context.Context) Report {
	rep := Report{Checks: make(map[string]string, len(s.checkers))}
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			rep.Checks[ch.Name()] = StatusDown
			if rep.Err == nil {
				rep.Err = fmt.Errorf("%s: %w", ch.Name(), err)
			}
			continue
		}
		rep.Checks[ch.Name()] = StatusUp
	}
	return rep
}
