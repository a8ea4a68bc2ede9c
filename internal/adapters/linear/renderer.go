// Package linear renders execution progress as chronological, prefix-tagged
// lines for CI and piped output.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/muesli/termenv"
	"go.trai.ch/deja/internal/ui/output"
	"go.trai.ch/deja/internal/ui/style"
)

// prefixPalette holds the colors assigned to plan name prefixes. The color
// for a name is stable across a run so interleaved output stays readable.
var prefixPalette = []termenv.Color{
	termenv.ANSICyan,
	termenv.ANSIMagenta,
	termenv.ANSIBlue,
	termenv.ANSIYellow,
	termenv.ANSIGreen,
	termenv.ANSIBrightCyan,
	termenv.ANSIBrightMagenta,
	termenv.ANSIBrightBlue,
}

// Renderer implements ports.Renderer for non-interactive environments. Step
// boundaries go to stderr, process output goes to stdout with the plan name
// as prefix.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	out    *termenv.Output

	mu    sync.Mutex
	steps map[string]*stepState // keyed by span id
}

// stepState carries a running step's name, start time and the partial
// output line waiting for its newline.
type stepState struct {
	name    string
	started time.Time
	partial bytes.Buffer
}

// NewRenderer creates a renderer writing to the given streams. Nil writers
// fall back to the process streams.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		out:    output.New(stderr, output.CI),
		steps:  make(map[string]*stepState),
	}
}

// WithProfile overrides the color profile, for forcing plain output
// regardless of the environment.
func (r *Renderer) WithProfile(profile termenv.Profile) *Renderer {
	r.out = termenv.NewOutput(r.stderr, termenv.WithProfile(profile), termenv.WithTTY(true))
	return r
}

// Start is a no-op, the renderer writes synchronously.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes every step's pending partial line.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, step := range r.steps {
		r.flushLocked(step)
	}
	return nil
}

// Wait is a no-op, the renderer writes synchronously.
func (r *Renderer) Wait() error {
	return nil
}

// OnQueueEmit prints the plans queued for execution.
func (r *Renderer) OnQueueEmit(steps, targets []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(targets) > 0 {
		_, _ = fmt.Fprintf(r.stderr, "Executing %d plan(s) for %s: %s\n",
			len(steps), strings.Join(targets, ", "), strings.Join(steps, ", "))
		return
	}
	_, _ = fmt.Fprintf(r.stderr, "Executing %d plan(s): %s\n",
		len(steps), strings.Join(steps, ", "))
}

// OnStepStart prints a start message and begins tracking the step.
func (r *Renderer) OnStepStart(spanID, _ string, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.steps[spanID] = &stepState{name: name, started: startTime}

	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", r.prefixLocked(name))
}

// OnStepLog prints each complete line of output under the plan prefix.
// Bytes after the last newline stay buffered until more output arrives
// or the step ends.
func (r *Renderer) OnStepLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	step, ok := r.steps[spanID]
	if !ok {
		return
	}

	step.partial.Write(data)
	for {
		raw := step.partial.Bytes()
		nl := bytes.IndexByte(raw, '\n')
		if nl < 0 {
			return
		}
		r.printLineLocked(step.name, raw[:nl])
		step.partial.Next(nl + 1)
	}
}

// OnStepComplete flushes the step's pending output and prints the outcome.
func (r *Renderer) OnStepComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	step, ok := r.steps[spanID]
	if !ok {
		return
	}
	delete(r.steps, spanID)

	r.flushLocked(step)

	duration := endTime.Sub(step.started)
	prefix := r.prefixLocked(step.name)

	if err != nil {
		symbol := r.out.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n",
			prefix, symbol, duration, err)
		return
	}
	symbol := r.out.String(style.Check).Foreground(termenv.ANSIGreen).String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n",
		prefix, symbol, duration)
}

// flushLocked prints the step's partial line, if any.
// Must be called with r.mu held.
func (r *Renderer) flushLocked(step *stepState) {
	if step.partial.Len() == 0 {
		return
	}
	r.printLineLocked(step.name, step.partial.Bytes())
	step.partial.Reset()
}

// printLineLocked prints one output line under the plan's prefix.
// Must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}

	_, _ = fmt.Fprintf(r.stdout, "%s %s\n", r.prefixLocked(name), string(line))
}

// prefixLocked renders the bracketed plan name in its assigned color.
func (r *Renderer) prefixLocked(name string) string {
	color := prefixPalette[xxhash.Sum64String(name)%uint64(len(prefixPalette))]
	return r.out.String("[" + name + "]").Foreground(color).String()
}
