package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var ErrDispatch = errors.New("notification dispatch failed")

// Sink delivers a rendered notification to one outlet.
type Sink interface {
	Publish(ctx context.Context, message string) error
}

// LogSink writes notifications to the application log.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, message string) error {
	zap.L().Info("Sale notification", zap.String("message", message))
	return nil
}

// MultiSink publishes to every sink and reports all failures together.
type MultiSink struct {
	sinks map[string]Sink
	order []string
}

func NewMultiSink() *MultiSink {
	return &MultiSink{sinks: make(map[string]Sink)}
}

func (m *MultiSink) Add(name string, sink Sink) {
	if _, ok := m.sinks[name]; !ok {
		m.order = append(m.order, name)
	}
	m.sinks[name] = sink
}

func (m *MultiSink) Len() int {
	return len(m.order)
}

func (m *MultiSink) Publish(ctx context.Context, message string) error {
	var errs []error
	for _, name := range m.order {
		if err := m.sinks[name].Publish(ctx, message); err != nil {
			zap.L().Error("Notification sink failed", zap.String("sink", name), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
