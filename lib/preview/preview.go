// Package preview renders tables, stats and history for the terminal,
// all in the same rounded style.
package preview

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"datapeek/lib/catalog"
	"datapeek/lib/fetchstore"
	"datapeek/lib/tabular"
	"datapeek/lib/tabular/stats"

	"github.com/jedib0t/go-pretty/v6/table"
)

// NewWriter returns a rounded-style table writer mirroring to out.
func NewWriter(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func row(cells []string) table.Row {
	r := make(table.Row, len(cells))
	for i, c := range cells {
		r[i] = c
	}
	return r
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

const barWidth = 24

func bar(count, max int) string {
	if max <= 0 || count <= 0 {
		return ""
	}
	n := count * barWidth / max
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// Table renders the column names and the first n rows.
func Table(out io.Writer, t *tabular.Table, n int) {
	w := NewWriter(out)
	w.AppendHeader(row(t.ColumnNames()))
	for _, r := range t.Head(n) {
		w.AppendRow(row(r))
	}
	w.Render()
}

func Describe(out io.Writer, name string, s stats.Summary) {
	w := NewWriter(out)
	w.AppendHeader(table.Row{"stat", name})
	w.AppendRow(table.Row{"count", s.Count})
	w.AppendRow(table.Row{"mean", formatFloat(s.Mean)})
	w.AppendRow(table.Row{"std", formatFloat(s.Std)})
	w.AppendRow(table.Row{"min", formatFloat(s.Min)})
	w.AppendRow(table.Row{"max", formatFloat(s.Max)})
	w.Render()
}

func ValueCounts(out io.Writer, name string, counts []stats.Count) {
	max := 0
	for _, c := range counts {
		if c.Count > max {
			max = c.Count
		}
	}

	w := NewWriter(out)
	w.AppendHeader(table.Row{name, "count", ""})
	for _, c := range counts {
		w.AppendRow(table.Row{c.Value, c.Count, bar(c.Count, max)})
	}
	w.Render()
}

func GroupMeans(out io.Writer, keyName, valueName string, groups []stats.Group) {
	w := NewWriter(out)
	w.AppendHeader(table.Row{keyName, fmt.Sprintf("mean %s", valueName), "n"})
	for _, g := range groups {
		w.AppendRow(table.Row{g.Key, formatFloat(g.Mean), g.Count})
	}
	w.Render()
}

func Histogram(out io.Writer, name string, bins []stats.Bin) {
	max := 0
	for _, b := range bins {
		if b.Count > max {
			max = b.Count
		}
	}

	w := NewWriter(out)
	w.AppendHeader(table.Row{name, "count", ""})
	for i, b := range bins {
		closing := ")"
		if i == len(bins)-1 {
			closing = "]"
		}
		interval := fmt.Sprintf("[%s, %s%s", formatFloat(b.Low), formatFloat(b.High), closing)
		w.AppendRow(table.Row{interval, b.Count, bar(b.Count, max)})
	}
	w.Render()
}

func shortHash(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}

func History(out io.Writer, records []fetchstore.Record) {
	w := NewWriter(out)
	w.AppendHeader(table.Row{"fetched at", "source", "status", "bytes", "sha256", "duration"})
	for _, r := range records {
		w.AppendRow(table.Row{
			r.FetchedAt.Format(time.DateTime),
			r.Source,
			r.Status,
			r.Bytes,
			shortHash(r.Sha256),
			r.Duration.Round(time.Millisecond).String(),
		})
	}
	w.Render()
}

func Sources(out io.Writer, sources []catalog.Source) {
	w := NewWriter(out)
	w.AppendHeader(table.Row{"name", "url", "path"})
	for _, s := range sources {
		w.AppendRow(table.Row{s.Name, s.Url, s.Path})
	}
	w.Render()
}
