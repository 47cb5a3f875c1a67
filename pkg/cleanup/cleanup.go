package cleanup

import (
	"context"
	"log/slog"
	"sync"
)

type Job struct {
	Name string
	F    func(ctx context.Context) error
}

// Stack runs registered jobs in reverse registration order, so resources
// are released before the ones they depend on.
type Stack struct {
	mu   sync.Mutex
	jobs []*Job
	done bool
}

func (s *Stack) Register(j *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, j)
}

// CleanUp runs every job once, even when some of them fail, and returns the
// number of failed jobs. Later calls do nothing.
func (s *Stack) CleanUp(ctx context.Context, logger *slog.Logger) int {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return 0
	}
	s.done = true
	jobs := s.jobs
	s.jobs = nil
	s.mu.Unlock()

	failed := 0
	for i := len(jobs) - 1; i >= 0; i-- {
		j := jobs[i]
		logger.Info("cleanup job started", slog.String("job", j.Name))
		if err := j.F(ctx); err != nil {
			failed++
			logger.Error("cleanup job finished with error", slog.String("job", j.Name), slog.String("error", err.Error()))
			continue
		}
		logger.Info("cleaned", slog.String("job", j.Name))
	}
	return failed
}
