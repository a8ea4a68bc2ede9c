package linear_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/deja/internal/adapters/linear"
	"go.trai.ch/zerr"
)

func newTestRenderer(t *testing.T) (*linear.Renderer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	return linear.NewRenderer(&stdout, &stderr), &stdout, &stderr
}

func TestRenderer_StepLifecycle(t *testing.T) {
	r, stdout, stderr := newTestRenderer(t)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() = %v", err)
	}

	r.OnQueueEmit([]string{"fetch", "plot"}, []string{"out/plot.png"})

	banner := stderr.String()
	if !strings.Contains(banner, "Executing 2 plan(s)") {
		t.Errorf("queue banner missing from stderr: %q", banner)
	}
	if !strings.Contains(banner, "out/plot.png") {
		t.Errorf("queue banner lacks targets: %q", banner)
	}

	startTime := time.Now()
	r.OnStepStart("span1", "", "fetch", startTime)

	if !strings.Contains(stderr.String(), "[fetch]") {
		t.Errorf("start line missing plan prefix: %q", stderr.String())
	}

	r.OnStepLog("span1", []byte("first line\n"))
	r.OnStepLog("span1", []byte("second line\n"))

	for _, want := range []string{"first line", "second line"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("stdout missing %q: %q", want, stdout.String())
		}
	}

	r.OnStepComplete("span1", startTime.Add(100*time.Millisecond), nil)

	if !strings.Contains(stderr.String(), "Completed") {
		t.Errorf("completion line missing: %q", stderr.String())
	}

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
}

func TestRenderer_QueueWithoutTargets(t *testing.T) {
	r, _, stderr := newTestRenderer(t)

	r.OnQueueEmit([]string{"transform"}, nil)

	if got := stderr.String(); !strings.Contains(got, "Executing 1 plan(s): transform") {
		t.Errorf("queue banner = %q, want the plan list without targets", got)
	}
}

func TestRenderer_PartialLines(t *testing.T) {
	r, stdout, _ := newTestRenderer(t)

	startTime := time.Now()
	r.OnStepStart("span1", "", "fetch", startTime)

	r.OnStepLog("span1", []byte("partial"))
	if strings.Contains(stdout.String(), "partial") {
		t.Error("partial line printed before its newline arrived")
	}

	r.OnStepLog("span1", []byte(" line\n"))
	if !strings.Contains(stdout.String(), "partial line") {
		t.Errorf("joined line missing from stdout: %q", stdout.String())
	}

	// A trailing partial line must flush when the step completes.
	r.OnStepLog("span1", []byte("unflushed"))
	r.OnStepComplete("span1", startTime.Add(50*time.Millisecond), nil)

	if !strings.Contains(stdout.String(), "unflushed") {
		t.Errorf("trailing partial line not flushed on complete: %q", stdout.String())
	}
}

func TestRenderer_StepError(t *testing.T) {
	r, _, stderr := newTestRenderer(t)

	startTime := time.Now()
	r.OnStepStart("span1", "", "failing-plan", startTime)
	r.OnStepLog("span1", []byte("error output\n"))
	r.OnStepComplete("span1", startTime.Add(50*time.Millisecond), zerr.New("exit status 1"))

	got := stderr.String()
	if !strings.Contains(got, "Failed") {
		t.Errorf("failure line missing: %q", got)
	}
	if !strings.Contains(got, "exit status 1") {
		t.Errorf("failure line lacks the error: %q", got)
	}
}

func TestRenderer_UnknownSpan(t *testing.T) {
	r, stdout, stderr := newTestRenderer(t)

	// Events for spans that never started must be ignored.
	r.OnStepLog("ghost", []byte("noise\n"))
	r.OnStepComplete("ghost", time.Now(), nil)

	if stdout.Len()+stderr.Len() != 0 {
		t.Errorf("unknown span produced output: stdout=%q stderr=%q", stdout.String(), stderr.String())
	}
}

func TestRenderer_ConcurrentSteps(t *testing.T) {
	r, stdout, _ := newTestRenderer(t)

	startTime := time.Now()
	r.OnStepStart("span1", "", "fetch", startTime)
	r.OnStepStart("span2", "", "plot", startTime)

	r.OnStepLog("span1", []byte("fetch line 1\n"))
	r.OnStepLog("span2", []byte("plot line 1\n"))
	r.OnStepLog("span1", []byte("fetch line 2\n"))
	r.OnStepLog("span2", []byte("plot line 2\n"))

	// Interleaved writes keep their own prefix, one per printed line.
	got := stdout.String()
	if n := strings.Count(got, "[fetch]"); n != 2 {
		t.Errorf("want 2 fetch lines, got %d in %q", n, got)
	}
	if n := strings.Count(got, "[plot]"); n != 2 {
		t.Errorf("want 2 plot lines, got %d in %q", n, got)
	}

	endTime := startTime.Add(100 * time.Millisecond)
	r.OnStepComplete("span1", endTime, nil)
	r.OnStepComplete("span2", endTime, nil)
}

func TestRenderer_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	r, _, stderr := newTestRenderer(t)

	startTime := time.Now()
	r.OnStepStart("span1", "", "fetch", startTime)
	r.OnStepComplete("span1", startTime.Add(50*time.Millisecond), nil)

	if got := stderr.String(); strings.Contains(got, "\x1b[") {
		t.Errorf("NO_COLOR output still carries ANSI codes: %q", got)
	}
}

func TestRenderer_PrefixColorAssignment(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	for _, name := range []string{"fetch", "transform", "plot", "deploy"} {
		t.Run(name, func(t *testing.T) {
			r, _, stderr := newTestRenderer(t)

			startTime := time.Now()
			r.OnStepStart("span1", "", name, startTime)
			first := stderr.String()

			stderr.Reset()
			r.OnStepStart("span2", "", name, startTime.Add(time.Second))
			second := stderr.String()

			if first != second {
				t.Errorf("prefix color for %q drifted between steps:\n%q\n%q", name, first, second)
			}
			if !strings.Contains(first, "\x1b[") {
				t.Errorf("prefix for %q not colored: %q", name, first)
			}
		})
	}
}

func TestRenderer_WithProfile_ForcesPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	r, _, stderr := newTestRenderer(t)
	r = r.WithProfile(termenv.Ascii)

	startTime := time.Now()
	r.OnStepStart("span1", "", "fetch", startTime)
	r.OnStepComplete("span1", startTime.Add(50*time.Millisecond), nil)

	got := stderr.String()
	if strings.Contains(got, "\x1b[") {
		t.Errorf("Ascii profile output still carries ANSI codes: %q", got)
	}
	if !strings.Contains(got, "[fetch]") {
		t.Errorf("plain prefix missing: %q", got)
	}
}
