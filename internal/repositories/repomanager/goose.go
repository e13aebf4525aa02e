package repomanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/pressly/goose/v3"
)

func init() {
	goose.SetLogger(goose.NopLogger())
}

// gooseLogger sends goose's progress lines to the project logger at debug.
type gooseLogger struct {
	log logging.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Debug(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	g.log.Error(context.Background(), msg, "component", "migrations")
	panic(msg)
}

// SetLogger sends goose output to log. A nil log silences goose.
func SetLogger(log logging.Logger) {
	if log == nil {
		goose.SetLogger(goose.NopLogger())
		return
	}
	goose.SetLogger(gooseLogger{log: log})
}
