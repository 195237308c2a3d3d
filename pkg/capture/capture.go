// Package capture runs shell commands and records their outcome in a form
// suitable for posting to a messaging channel: exit code, bounded
// stdout/stderr, and wall-clock duration.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultMaxOutput is the capture cap, in bytes, applied to stdout and
// stderr independently.
const DefaultMaxOutput = 1024

// Result describes one finished command.
type Result struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Success reports whether the command exited zero.
func (r *Result) Success() bool { return r.ExitCode == 0 }

// Run executes command through the shell and captures its output.
//
// maxOutput caps captured stdout and stderr in bytes; values <= 0 disable
// the cap. Output that exceeds the cap by more than 10% is cut at the cap
// and a "[...N bytes truncated]" trailer is appended; the margin avoids
// mutilating output that only barely overruns.
//
// A non-zero exit status is not an error: it is reported in the Result.
// Run returns an error only when the command could not be executed at all
// or the context was canceled.
func Run(ctx context.Context, command string, maxOutput int) (*Result, error) {
	stdout := &boundedBuffer{limit: maxOutput}
	stderr := &boundedBuffer{limit: maxOutput}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Command:  command,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("capture: run %q: %w", command, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, fmt.Errorf("capture: run %q: %w", command, err)
	}
	return res, nil
}

// boundedBuffer retains the head of what is written to it while counting
// the total. The retained head is limit plus a 10% relax margin, so output
// that ends within the margin is reproduced whole.
type boundedBuffer struct {
	limit int
	total int64
	buf   bytes.Buffer
}

func (b *boundedBuffer) relax() int { return b.limit + b.limit/10 }

func (b *boundedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	b.total += int64(n)
	if b.limit <= 0 {
		b.buf.Write(p)
		return n, nil
	}
	if room := b.relax() - b.buf.Len(); room > 0 {
		if len(p) > room {
			p = p[:room]
		}
		b.buf.Write(p)
	}
	return n, nil
}

func (b *boundedBuffer) String() string {
	if b.limit <= 0 || b.total <= int64(b.relax()) {
		return b.buf.String()
	}
	dropped := b.total - int64(b.limit)
	return b.buf.String()[:b.limit] + fmt.Sprintf("\n[...%d bytes truncated]", dropped)
}
