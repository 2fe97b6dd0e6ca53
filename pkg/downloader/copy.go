package downloader

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"ula/pkg/display"
)

// Copy streams src into dst, reporting progress to task. total is the
// expected size or -1. The copy stops with ctx.Err() once ctx is done.
func Copy(ctx context.Context, dst io.Writer, src io.Reader, total int64, task display.Task) (int64, error) {
	if task == nil {
		task = display.NopTask{}
	}
	pw := &progressWriter{
		task:  task,
		total: total,
		start: time.Now(),
	}
	return io.Copy(io.MultiWriter(dst, pw), &ctxReader{ctx: ctx, r: src})
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Mutable
type progressWriter struct {
	task    display.Task
	total   int64
	written int64
	start   time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.written += int64(n)

	if pw.total > 0 {
		percent := int((float64(pw.written) / float64(pw.total)) * 100)
		elapsed := time.Since(pw.start).Seconds()
		var speed float64
		if elapsed > 0 {
			speed = float64(pw.written) / elapsed
		}
		msg := fmt.Sprintf("%s / %s (%s/s)",
			humanize.Bytes(uint64(pw.written)),
			humanize.Bytes(uint64(pw.total)),
			humanize.Bytes(uint64(speed)))
		pw.task.Progress(percent, msg)
	} else {
		pw.task.Progress(0, fmt.Sprintf("%s copied", humanize.Bytes(uint64(pw.written))))
	}

	return n, nil
}
