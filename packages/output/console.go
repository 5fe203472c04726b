// Package output renders call results on the console.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/restkit/packages/bench"
	"github.com/abdul-hamid-achik/restkit/packages/normalize"
	"github.com/fatih/color"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// Success prints the normalized value of a completed call.
func (f *ConsoleFormatter) Success(name string, value any, duration time.Duration) {
	green := color.New(color.FgGreen).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s (%dms)\n", green("✓"), bold(name), duration.Milliseconds())
	f.printValue(value)
}

// Failure prints a failed call. Uniform errors get their status and,
// in verbose mode, their raw payload.
func (f *ConsoleFormatter) Failure(name string, err error) {
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", red("✗"), bold(name))

	if ne, ok := normalize.AsError(err); ok {
		if ne.Status > 0 {
			fmt.Fprintf(f.writer, "  %s (status %d)\n", ne.Message, ne.Status)
		} else {
			fmt.Fprintf(f.writer, "  %s\n", ne.Message)
		}
		if f.verbose && ne.Data != nil {
			f.printValue(ne.Data)
		}
		return
	}
	fmt.Fprintf(f.writer, "  %s\n", err.Error())
}

// Summary prints bench results.
func (f *ConsoleFormatter) Summary(s bench.Summary) {
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold("Results"))
	fmt.Fprintf(f.writer, "  requests: %d (%d errors)\n", s.Total, s.Errors)
	fmt.Fprintf(f.writer, "  elapsed:  %s\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(f.writer, "  latency:  %s %s %s %s %s\n",
		cyan("min="+formatLatency(s.Min)),
		"p50="+formatLatency(s.P50),
		"p90="+formatLatency(s.P90),
		"p99="+formatLatency(s.P99),
		"max="+formatLatency(s.Max))
}

func (f *ConsoleFormatter) printValue(value any) {
	switch v := value.(type) {
	case nil:
	case *normalize.Blob:
		fmt.Fprintf(f.writer, "  blob %q (%d bytes, %s)\n", v.Filename, len(v.Data), v.ContentType)
	case []byte:
		fmt.Fprintf(f.writer, "  %d raw bytes\n", len(v))
	case string:
		if v != "" {
			fmt.Fprintf(f.writer, "  %s\n", v)
		}
	default:
		encoded, err := json.MarshalIndent(v, "  ", "  ")
		if err != nil {
			fmt.Fprintf(f.writer, "  %v\n", v)
			return
		}
		fmt.Fprintf(f.writer, "  %s\n", encoded)
	}
}

func formatLatency(d time.Duration) string {
	if d >= time.Second {
		return d.Round(10 * time.Millisecond).String()
	}
	return d.Round(100 * time.Microsecond).String()
}
