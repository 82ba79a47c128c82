package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/crimson-sun/apptimeline/internal/model"
	"github.com/crimson-sun/apptimeline/internal/output"
)

// Output writes a JSON summary of each report to stdout.
type Output struct {
	enc *json.Encoder
}

// New creates a stdout Output, optionally pretty-printed.
func New(pretty bool) *Output {
	return NewWriter(os.Stdout, pretty)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, pretty bool) *Output {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Output{enc: enc}
}

// Write encodes the report summary. Stats are omitted when the report has
// no clusters; that condition is reported by the file sink.
func (o *Output) Write(_ context.Context, report model.Report) error {
	if err := o.enc.Encode(output.NewSummary(report)); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
