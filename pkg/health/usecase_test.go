package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name  string
	err   error
	calls *int
}

func (s stubChecker) Name() string { return s.name }

func (s stubChecker) Check(context.Context) error {
	if s.calls != nil {
		*s.calls++
	}
	return s.err
}

func TestReadyWithoutCheckers(t *testing.T) {
	rep := NewService().Check(context.Background())
	assert.True(t, rep.Ready())
	assert.Empty(t, rep.Checks)
}

func TestCheckReportsFailingDependency(t *testing.T) {
	down := errors.New("connection refused")
	var after int
	svc := NewService(
		stubChecker{name: "postgres"},
		stubChecker{name: "redis", err: down},
		stubChecker{name: "amqp", err: errors.New("closed"), calls: &after},
	)

	rep := svc.Check(context.Background())
	assert.False(t, rep.Ready())
	require.ErrorIs(t, rep.Err, down)
	assert.Contains(t, rep.Err.Error(), "redis")
	assert.Equal(t, 1, after, "checkers after a failure still run")
	assert.Equal(t, map[string]string{"postgres": StatusUp, "redis": StatusDown, "amqp": StatusDown}, rep.Checks)
}
