package view

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"eventfeed/pkg/models"
)

const clearScreen = "\033[H\033[2J"

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
)

// Screen redraws a Table on a terminal after every change, followed by a
// status line describing the last refresh.
type Screen struct {
	mu     sync.Mutex
	out    io.Writer
	table  *Table
	clear  bool
	status string
	failed bool
}

// NewScreen draws table onto out. When clear is set each redraw starts by
// clearing the terminal.
func NewScreen(out io.Writer, table *Table, clear bool) *Screen {
	return &Screen{out: out, table: table, clear: clear}
}

func (s *Screen) Replace(events []models.Event) {
	s.table.Replace(events)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.redraw()
}

// SetStatus records the outcome of the last refresh and redraws.
func (s *Screen) SetStatus(at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.status = fmt.Sprintf("refresh failed at %s: %v", at.Format(TimeLayout), err)
		s.failed = true
	} else {
		s.status = fmt.Sprintf("%d events, updated %s", s.table.Len(), at.Format(TimeLayout))
		s.failed = false
	}
	s.redraw()
}

func (s *Screen) redraw() {
	if s.clear {
		fmt.Fprint(s.out, clearScreen)
	}
	_ = s.table.Render(s.out)

	if s.status == "" {
		return
	}
	fmt.Fprintln(s.out)
	if s.failed {
		failColor.Fprintln(s.out, s.status)
	} else {
		okColor.Fprintln(s.out, s.status)
	}
}

// JSONLines writes every applied event list as a single JSON array line.
type JSONLines struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONLines(out io.Writer) *JSONLines {
	return &JSONLines{enc: json.NewEncoder(out)}
}

func (j *JSONLines) Replace(events []models.Event) {
	if events == nil {
		events = []models.Event{}
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	_ = j.enc.Encode(events)
}
