package ports

import (
	"context"
	"io"
)

// Telemetry records the progress of pipeline stages.
type Telemetry interface {
	// Record starts a new vertex for one unit of work.
	Record(ctx context.Context, name string) (context.Context, Vertex)

	// Close flushes the recording session.
	Close() error
}

// Vertex represents one recorded unit of work. Writes become the vertex's
// output stream.
type Vertex interface {
	io.Writer

	// Complete marks the vertex as finished, successfully when err is nil.
	Complete(err error)
}
