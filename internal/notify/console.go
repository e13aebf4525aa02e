package notify

import (
	"context"
	"fmt"
	"io"
)

// LogTransport writes the code to w instead of sending it. It is meant for
// local development, where no mail server is available.
type LogTransport struct {
	w io.Writer
}

func NewLogTransport(w io.Writer) *LogTransport {
	return &LogTransport{w: w}
}

func (t *LogTransport) Deliver(_ context.Context, destination, code string) error {
	_, err := fmt.Fprintf(t.w, "[dev] one-time code for %s: %s\n", destination, code)
	return err
}
