package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.New(w)
	l.SetReportTimestamp(true)
	l.SetTimeFormat(time.TimeOnly)
	l.SetLevel(level)
	return l
}

// batchLog tallies a batch of conversions and logs one summary line with
// the byte totals and elapsed time.
type batchLog struct {
	logger  *log.Logger
	start   time.Time
	ok, bad int
	in, out uint64
}

func newBatchLog(l *log.Logger) *batchLog {
	return &batchLog{logger: l, start: time.Now()}
}

func (b *batchLog) add(inSize, outSize int, err error) {
	if err != nil {
		b.bad++
		return
	}
	b.ok++
	b.in += uint64(inSize)
	b.out += uint64(outSize)
}

func (b *batchLog) failed() int { return b.bad }

func (b *batchLog) done() {
	b.logger.Info("converted",
		"files", b.ok,
		"failed", b.bad,
		"in", humanize.Bytes(b.in),
		"out", humanize.Bytes(b.out),
		"elapsed", time.Since(b.start).Round(time.Millisecond))
}
