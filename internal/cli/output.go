package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	campaignbridge "github.com/opengovern/campaign-bridge"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// render prints v as indented JSON, or hands a tabwriter to table.
func (a *app) render(v any, table func(w io.Writer)) error {
	if a.flags.output == outputJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func row(w io.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(w, strings.Join(parts, "\t"))
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// describeError renders client failures with their status and attempt count.
func describeError(err error) string {
	var reqErr *campaignbridge.RequestError
	if !errors.As(err, &reqErr) {
		return err.Error()
	}
	var b strings.Builder
	b.WriteString(reqErr.Message)
	var extra []string
	if reqErr.Status != 0 {
		extra = append(extra, fmt.Sprintf("status %d", reqErr.Status))
	}
	if reqErr.Code != "" {
		extra = append(extra, "code "+reqErr.Code)
	}
	if reqErr.Attempts > 1 {
		extra = append(extra, fmt.Sprintf("after %d attempts", reqErr.Attempts))
	}
	if len(extra) > 0 {
		b.WriteString(" (" + strings.Join(extra, ", ") + ")")
	}
	if fields, ok := reqErr.Details["fields"].(map[string]any); ok {
		for k, v := range fields {
			fmt.Fprintf(&b, "\n  %s: %v", k, v)
		}
	}
	return b.String()
}
