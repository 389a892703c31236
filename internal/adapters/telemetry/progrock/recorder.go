// Package progrock records finished trace spans as progrock vertices.
package progrock

import (
	"context"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Recorder implements sdktrace.SpanProcessor on top of a progrock recording.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a new Recorder with a default tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// OnStart does nothing. Vertices are recorded once the span has ended.
func (r *Recorder) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd records the span as a completed vertex with its attributes as output.
func (r *Recorder) OnEnd(s sdktrace.ReadOnlySpan) {
	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	v := r.rec.Vertex(digest.FromString(sc.SpanID().String()), s.Name())
	vertex := &Vertex{vertex: v}
	vertex.WriteAttributes(s.Attributes())
	vertex.Complete(spanError(s))
}

// ForceFlush does nothing.
func (r *Recorder) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown closes the underlying writer.
func (r *Recorder) Shutdown(_ context.Context) error {
	// If the writer implements Close, call it.
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
