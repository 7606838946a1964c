package view

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"eventfeed/pkg/models"
)

// TimeLayout is used for the timestamp column.
const TimeLayout = "2006-01-02 15:04:05"

// Headers are the table columns, in cell order.
var Headers = []string{"ID", "CAMERA", "RULE", "ZONE", "CONFIDENCE", "TIMESTAMP"}

// Table is the in-memory projection of the last applied event list.
// It is safe for concurrent use.
type Table struct {
	mu   sync.RWMutex
	loc  *time.Location
	rows [][]string
}

// NewTable returns an empty table that formats timestamps in loc.
// A nil loc means time.Local.
func NewTable(loc *time.Location) *Table {
	if loc == nil {
		loc = time.Local
	}
	return &Table{loc: loc}
}

// Replace clears every row and appends one row per event, in order.
func (t *Table) Replace(events []models.Event) {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, FormatRow(e, t.loc))
	}

	t.mu.Lock()
	t.rows = rows
	t.mu.Unlock()
}

// Rows returns a copy of the current rows.
func (t *Table) Rows() [][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Len is the current row count.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Render writes the table with a header and separator row.
func (t *Table) Render(w io.Writer) error {
	rows := t.Rows()

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, strings.Join(Headers, "\t"))
	sep := make([]string, len(Headers))
	for i, h := range Headers {
		sep[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))

	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

// FormatRow maps an event to its six display cells. Absent values give
// empty cells.
func FormatRow(e models.Event, loc *time.Location) []string {
	return []string{
		e.ID.String(),
		e.CameraID.String(),
		e.Rule,
		e.Zone,
		formatNumber(e.Confidence),
		FormatTimestamp(e.Timestamp, loc),
	}
}

// FormatTimestamp converts epoch seconds to a date-time string in loc.
func FormatTimestamp(sec *float64, loc *time.Location) string {
	if sec == nil || math.IsNaN(*sec) || math.IsInf(*sec, 0) {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	whole, frac := math.Modf(*sec)
	return time.Unix(int64(whole), int64(frac*1e9)).In(loc).Format(TimeLayout)
}

func formatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
