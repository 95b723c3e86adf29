package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Field is one column of an output row.
type Field struct {
	Key   string
	Value any
}

// Row keeps its columns in insertion order.
type Row []Field

func (r Row) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of an existing column or appends a new one.
func (r *Row) Set(key string, v any) {
	for i := range *r {
		if (*r)[i].Key == key {
			(*r)[i].Value = v
			return
		}
	}
	*r = append(*r, Field{key, v})
}

// Strings formats every value the way it is written to the results file.
func (r Row) Strings() map[string]string {
	m := make(map[string]string, len(r))
	for _, f := range r {
		m[f.Key] = FormatValue(f.Value)
	}
	return m
}

// RowSink receives every row as soon as it is committed.
type RowSink interface {
	CommitRow(row Row) error
}

// ExperimentHandler collects output rows and tracks the stack of active
// loops. The innermost loop is the current logging context.
type ExperimentHandler struct {
	Name string
	Info Row
	// DataFileName is the results path without extension.
	DataFileName string
	Window       *Window
	Log          zerolog.Logger

	rows    []Row
	current Row
	loops   []*TrialHandler
	sinks   []RowSink
}

func NewExperimentHandler(name string, info Row, dataFileName string, log zerolog.Logger) *ExperimentHandler {
	return &ExperimentHandler{
		Name:         name,
		Info:         info,
		DataFileName: dataFileName,
		Window:       NewWindow(),
		Log:          log,
	}
}

func (e *ExperimentHandler) AddSink(s RowSink) { e.sinks = append(e.sinks, s) }

func (e *ExperimentHandler) AddData(key string, v any) { e.current.Set(key, v) }

// IsEntryEmpty reports whether no data was added since the last NextEntry.
func (e *ExperimentHandler) IsEntryEmpty() bool { return len(e.current) == 0 }

// NextEntry commits the current row, completed with the position and
// attributes of every active loop and the session info, and starts a new one.
func (e *ExperimentHandler) NextEntry() {
	var row Row
	for _, h := range e.loops {
		for _, f := range h.Columns() {
			row.Set(f.Key, f.Value)
		}
		t := h.Current()
		for _, k := range t.Fields {
			row.Set(k, t.Values[k])
		}
	}
	for _, f := range e.current {
		row.Set(f.Key, f.Value)
	}
	for _, f := range e.Info {
		row.Set(f.Key, f.Value)
	}
	e.rows = append(e.rows, row)
	e.current = nil

	e.Log.Debug().Int("row", len(e.rows)).Int("columns", len(row)).Msg("Row committed")
	for _, s := range e.sinks {
		if err := s.CommitRow(row); err != nil {
			e.Log.Warn().Err(err).Int("row", len(e.rows)).Msg("Row sink failed")
		}
	}
}

func (e *ExperimentHandler) AddLoop(h *TrialHandler) {
	e.loops = append(e.loops, h)
	e.Log.Debug().Str("loop", h.Name).Int("depth", len(e.loops)).Msg("Loop entered")
}

// RemoveLoop pops h and everything nested inside it.
func (e *ExperimentHandler) RemoveLoop(h *TrialHandler) {
	for i := len(e.loops) - 1; i >= 0; i-- {
		if e.loops[i] == h {
			e.loops = e.loops[:i]
			e.Log.Debug().Str("loop", h.Name).Int("depth", len(e.loops)).Msg("Loop left")
			return
		}
	}
}

// CurrentLoop returns the innermost active loop, or nil at top level.
func (e *ExperimentHandler) CurrentLoop() *TrialHandler {
	if len(e.loops) == 0 {
		return nil
	}
	return e.loops[len(e.loops)-1]
}

// Loop finds an active loop by name.
func (e *ExperimentHandler) Loop(name string) *TrialHandler {
	for i := len(e.loops) - 1; i >= 0; i-- {
		if e.loops[i].Name == name {
			return e.loops[i]
		}
	}
	return nil
}

func (e *ExperimentHandler) InLoop() bool { return len(e.loops) > 0 }
func (e *ExperimentHandler) Rows() []Row  { return e.rows }

// Header is the union of all row keys in first-seen order.
func (e *ExperimentHandler) Header() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, r := range e.rows {
		for _, f := range r {
			if !seen[f.Key] {
				seen[f.Key] = true
				keys = append(keys, f.Key)
			}
		}
	}
	return keys
}

// Path is the results file written by Save.
func (e *ExperimentHandler) Path() string { return e.DataFileName + ".tsv" }

// Save writes all committed rows as a tab separated file.
func (e *ExperimentHandler) Save() error {
	path := e.Path()
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := e.WriteTSV(f); err != nil {
		return err
	}
	return f.Sync()
}

// WriteTSV writes the header and every committed row, tab separated.
func (e *ExperimentHandler) WriteTSV(out io.Writer) error {
	w := csv.NewWriter(out)
	w.Comma = '\t'

	header := e.Header()
	if err := w.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for _, r := range e.rows {
		for i, k := range header {
			v, ok := r.Get(k)
			if !ok {
				rec[i] = ""
				continue
			}
			rec[i] = FormatValue(v)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// FormatValue renders a data value for the results file. Durations are
// written in seconds and integer lists as "[1, 2]".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Duration:
		return strconv.FormatFloat(x.Seconds(), 'f', -1, 64)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case []int:
		parts := make([]string, len(x))
		for i, n := range x {
			parts[i] = strconv.Itoa(n)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
