package cleanup_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/limbo/habitrack/pkg/cleanup"
	"github.com/stretchr/testify/assert"
)

func TestStack(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var order []string
	job := func(name string, err error) *cleanup.Job {
		return &cleanup.Job{Name: name, F: func(ctx context.Context) error {
			order = append(order, name)
			return err
		}}
	}
	s := &cleanup.Stack{}
	s.Register(job("pool", nil))
	s.Register(job("server", errors.New("already closed")))
	s.Register(job("log file", nil))

	failed := s.CleanUp(context.Background(), logger)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"log file", "server", "pool"}, order)

	assert.Zero(t, s.CleanUp(context.Background(), logger))
	assert.Len(t, order, 3)
}
