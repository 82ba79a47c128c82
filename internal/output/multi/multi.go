package multi

import (
	"context"
	"errors"
	"fmt"

	"github.com/crimson-sun/apptimeline/internal/model"
	"github.com/crimson-sun/apptimeline/internal/output"
)

// Sink is a report destination labelled with its configured name
// ("files", "sqlite", ...).
type Sink struct {
	Name   string
	Output output.Output
}

// Multi delivers each run report to every configured sink in order. A failing
// sink does not stop delivery to the rest; its error is reported under its
// name.
type Multi struct {
	sinks []Sink
}

// New creates a Multi over sinks. With no sinks, Write and Close do nothing.
func New(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Write delivers the report to every sink and joins their errors.
func (m *Multi) Write(ctx context.Context, report model.Report) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Output.Write(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("sink %s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Output.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sink %s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}
