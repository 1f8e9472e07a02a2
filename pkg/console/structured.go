package console

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/diillson/aws-cur-sync/internal/shared/types"
)

// StructuredConsole emits every console message as a JSON log event.
// Spinners and progress bars become start/finish events.
type StructuredConsole struct {
	logger zerolog.Logger
}

var _ types.ConsoleInterface = (*StructuredConsole)(nil)

// NewStructuredConsole writes JSON events to w, tagging each one with runID.
func NewStructuredConsole(w io.Writer, runID string) *StructuredConsole {
	logger := zerolog.New(w).With().
		Timestamp().
		Str("run_id", runID).
		Logger()
	return &StructuredConsole{logger: logger}
}

// Logger returns the underlying logger.
func (c *StructuredConsole) Logger() zerolog.Logger {
	return c.logger
}

func (c *StructuredConsole) Print(a ...interface{}) {
	c.emit(zerolog.InfoLevel, fmt.Sprint(a...))
}

func (c *StructuredConsole) Printf(format string, a ...interface{}) {
	c.emit(zerolog.InfoLevel, fmt.Sprintf(format, a...))
}

func (c *StructuredConsole) Println(a ...interface{}) {
	c.emit(zerolog.InfoLevel, fmt.Sprint(a...))
}

func (c *StructuredConsole) LogInfo(format string, a ...interface{}) {
	c.emit(zerolog.InfoLevel, fmt.Sprintf(format, a...))
}

func (c *StructuredConsole) LogWarning(format string, a ...interface{}) {
	c.emit(zerolog.WarnLevel, fmt.Sprintf(format, a...))
}

func (c *StructuredConsole) LogError(format string, a ...interface{}) {
	c.emit(zerolog.ErrorLevel, fmt.Sprintf(format, a...))
}

func (c *StructuredConsole) LogSuccess(format string, a ...interface{}) {
	c.logger.Info().Bool("success", true).Msg(fmt.Sprintf(format, a...))
}

// emit drops blank messages, which the interactive console uses for spacing.
func (c *StructuredConsole) emit(level zerolog.Level, msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	c.logger.WithLevel(level).Msg(msg)
}

type structuredStatus struct {
	logger  zerolog.Logger
	started time.Time
	message string
}

func (c *StructuredConsole) Status(message string) types.StatusHandle {
	c.logger.Debug().Str("status", message).Msg("started")
	return &structuredStatus{logger: c.logger, started: time.Now(), message: message}
}

func (s *structuredStatus) Update(message string) {
	s.message = message
	s.logger.Debug().Str("status", message).Msg("updated")
}

func (s *structuredStatus) Stop() {
	s.logger.Debug().
		Str("status", s.message).
		Dur("elapsed", time.Since(s.started)).
		Msg("finished")
}

type structuredProgress struct {
	logger zerolog.Logger
	total  int
	done   atomic.Int64
}

func (c *StructuredConsole) ProgressWithTotal(total int) types.ProgressHandle {
	return &structuredProgress{logger: c.logger, total: total}
}

func (p *structuredProgress) Increment() {
	p.done.Add(1)
}

func (p *structuredProgress) Stop() {
	p.logger.Info().
		Int64("done", p.done.Load()).
		Int("total", p.total).
		Msg("progress finished")
}

func (c *StructuredConsole) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

// DisplayTable logs one event per row with the column names as fields.
func (c *StructuredConsole) DisplayTable(title string, table types.TableInterface) {
	t, ok := table.(*Table)
	if !ok {
		c.emit(zerolog.InfoLevel, table.Render())
		return
	}
	for _, row := range t.rows {
		event := c.logger.Info().Str("table", title)
		for i, cell := range row {
			if i < len(t.columns) {
				event = event.Str(fieldName(t.columns[i]), cell)
			}
		}
		event.Msg("row")
	}
}

// fieldName turns a column header into a snake_case field name.
func fieldName(column string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(column)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
