package cli

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// newLogger returns a tint logger writing to w. Color is only used when w is
// a terminal, and zero-value attributes are dropped.
func newLogger(w io.Writer, level string) *slog.Logger {
	ll := &slog.LevelVar{}
	switch level {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
		// default
	case "warn", "":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	}
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
		w = colorable.NewColorable(f)
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:       ll,
		TimeFormat:  "15:04:05.000",
		NoColor:     noColor,
		ReplaceAttr: dropZero,
	}))
}

func dropZero(_ []string, a slog.Attr) slog.Attr {
	skip := false
	switch t := a.Value.Any().(type) {
	case string:
		skip = t == ""
	case int64:
		skip = t == 0
	case time.Duration:
		skip = t == 0
	case time.Time:
		skip = t.IsZero()
	case nil:
		skip = true
	}
	if skip {
		return slog.Attr{}
	}
	return a
}
