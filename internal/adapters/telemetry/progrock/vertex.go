package progrock

import (
	"errors"
	"fmt"
	"io"

	"github.com/vito/progrock"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Vertex wraps *progrock.VertexRecorder.
type Vertex struct {
	vertex *progrock.VertexRecorder
}

// Stdout returns a writer to capture standard output stream.
func (v *Vertex) Stdout() io.Writer {
	return v.vertex.Stdout()
}

// WriteAttributes writes one key=value line per attribute.
func (v *Vertex) WriteAttributes(attrs []attribute.KeyValue) {
	for _, kv := range attrs {
		_, _ = fmt.Fprintf(v.vertex.Stdout(), "%s=%s\n", kv.Key, kv.Value.Emit())
	}
}

// Complete marks the vertex as done.
func (v *Vertex) Complete(err error) {
	v.vertex.Done(err)
}

func spanError(s sdktrace.ReadOnlySpan) error {
	if s.Status().Code != codes.Error {
		return nil
	}
	desc := s.Status().Description
	if desc == "" {
		desc = "span failed"
	}
	return errors.New(desc)
}
