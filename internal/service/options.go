package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type options struct {
	now        func() time.Time
	newShareID func() string
}

type Option func(*options)

// WithClock replaces time.Now. Every "today" is derived from it.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func WithShareIDGenerator(gen func() string) Option {
	return func(o *options) {
		o.newShareID = gen
	}
}

func applyOptions(opts []Option) options {
	o := options{
		now: time.Now,
		newShareID: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
