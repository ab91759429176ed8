package common

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sandeepkv93/inventory-crud-api/internal/observability"
)

type CIResult struct {
	OK         bool     `json:"ok"`
	Title      string   `json:"title"`
	DurationMS int64    `json:"duration_ms"`
	Details    []string `json:"details,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func PrintCIResult(ok bool, title string, elapsed time.Duration, details []string, err error) {
	WriteCIResult(os.Stdout, ok, title, elapsed, details, err)
}

func WriteCIResult(w io.Writer, ok bool, title string, elapsed time.Duration, details []string, err error) {
	result := CIResult{OK: ok, Title: title, DurationMS: elapsed.Milliseconds(), Details: details}
	if err != nil {
		result.Error = err.Error()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}

// RecordCommand emits the tool.command.* metrics for one CLI invocation.
func RecordCommand(ctx context.Context, tool, command string, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	observability.RecordToolCommandRun(ctx, tool, command, outcome)
	observability.RecordToolCommandDuration(ctx, tool, command, outcome, elapsed)
}
