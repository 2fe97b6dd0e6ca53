package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"

	"ula/pkg/common"
)

const (
	cursorUp  = "\x1b[1A"
	clearLine = "\x1b[2K"
)

// consoleDisplay handles terminal output. Active tasks occupy the last
// lines of the output and are redrawn in place.
// Mutable
type consoleDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
	tasks   []*consoleTask
	drawn   int
	bar     progress.Model
}

// NewConsole creates a Display that writes to standard error.
func NewConsole() Display {
	return NewWriterDisplay(os.Stderr)
}

// NewWriterDisplay creates a Display that writes to the provided io.Writer.
func NewWriterDisplay(w io.Writer) Display {
	return &consoleDisplay{
		out: w,
		bar: progress.New(progress.WithWidth(24), progress.WithoutPercentage(), progress.WithSolidFill("6")),
	}
}

func (d *consoleDisplay) SetVerbose(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.verbose = v
}

func (d *consoleDisplay) StartTask(name string) Task {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := &consoleTask{d: d, name: name}
	d.clearLocked()
	d.tasks = append(d.tasks, t)
	d.drawLocked()
	return t
}

func (d *consoleDisplay) Log(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.verbose {
		return
	}
	d.clearLocked()
	fmt.Fprintln(d.out, msg)
	d.drawLocked()
}

// Print writes a message directly to the output writer.
func (d *consoleDisplay) Print(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearLocked()
	fmt.Fprint(d.out, msg)
	d.drawLocked()
}

func (d *consoleDisplay) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearLocked()
	d.tasks = nil
}

// RenderOutput displays structured data from an Output struct to the console.
func (d *consoleDisplay) RenderOutput(out *common.Output) {
	if out == nil {
		return
	}

	if out.Message != "" {
		d.Print(fmt.Sprintln(out.Message))
	}

	for _, kv := range out.KV {
		d.Print(fmt.Sprintf("%-12s %s\n", kv.Key+":", kv.Value))
	}

	if out.Table != nil {
		d.renderTable(out.Table)
	}
}

func (d *consoleDisplay) renderTable(t *common.Table) {
	if len(t.Header) == 0 {
		return
	}

	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	for i, h := range t.Header {
		fmt.Fprintf(&sb, "%-*s  ", widths[i], h)
	}
	sb.WriteString("\n")

	total := 0
	for _, w := range widths {
		total += w + 2
	}
	sb.WriteString(strings.Repeat("-", total) + "\n")

	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(&sb, "%-*s  ", widths[i], cell)
			}
		}
		sb.WriteString("\n")
	}
	d.Print(sb.String())
}

// Must hold mu.
func (d *consoleDisplay) clearLocked() {
	for i := 0; i < d.drawn; i++ {
		fmt.Fprint(d.out, cursorUp+clearLine)
	}
	d.drawn = 0
}

// Must hold mu.
func (d *consoleDisplay) drawLocked() {
	for _, t := range d.tasks {
		fmt.Fprintln(d.out, t.lineLocked())
		d.drawn++
	}
}

func (d *consoleDisplay) finish(t *consoleTask) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.clearLocked()
	for i, cur := range d.tasks {
		if cur == t {
			d.tasks = append(d.tasks[:i], d.tasks[i+1:]...)
			break
		}
	}
	fmt.Fprintf(d.out, "[%s] Done\n", t.name)
	d.drawLocked()
}

// Mutable, guarded by the owning display's mutex.
type consoleTask struct {
	d       *consoleDisplay
	name    string
	stage   string
	target  string
	percent int
	message string
}

// Must hold d.mu.
func (t *consoleTask) lineLocked() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s]", t.name)
	if t.stage != "" {
		fmt.Fprintf(&sb, " %s", t.stage)
	}
	if t.target != "" {
		fmt.Fprintf(&sb, " %s", t.target)
	}
	if t.percent > 0 {
		fmt.Fprintf(&sb, " %s %d%%", t.d.bar.ViewAs(float64(t.percent)/100), t.percent)
	}
	if t.message != "" {
		fmt.Fprintf(&sb, " %s", t.message)
	}
	return sb.String()
}

func (t *consoleTask) Log(msg string) {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.d.clearLocked()
	fmt.Fprintf(t.d.out, "[%s] %s\n", t.name, msg)
	t.d.drawLocked()
}

func (t *consoleTask) SetStage(name, target string) {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.stage = name
	t.target = target
	t.d.clearLocked()
	t.d.drawLocked()
}

func (t *consoleTask) Progress(percent int, message string) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.percent = percent
	t.message = message
	t.d.clearLocked()
	t.d.drawLocked()
}

func (t *consoleTask) Done() {
	t.d.finish(t)
}
