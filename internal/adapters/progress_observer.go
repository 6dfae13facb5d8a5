package adapters

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"repo-mirror/internal/ports"
	"repo-mirror/internal/types"
)

type NopProgressObserver struct{}

func (NopProgressObserver) TransferStarted(string, int64)             {}
func (NopProgressObserver) TransferProgressed(types.TransferProgress) {}
func (NopProgressObserver) TransferFinished(string, error)            {}

// ProgressBarObserver renders a single bar for all transfers of a sync, so
// concurrent downloads never fight over the terminal line. It counts bytes
// against the sum of announced sizes and becomes a spinner once any transfer
// has no Content-Length.
type ProgressBarObserver struct {
	out io.Writer

	mu       sync.Mutex
	bar      *progressbar.ProgressBar
	received map[string]int64
	bytes    int64
	total    int64
	unknown  bool
	active   int
	done     int
	failed   int
}

func NewProgressBarObserver(out io.Writer) *ProgressBarObserver {
	return &ProgressBarObserver{
		out:      out,
		received: map[string]int64{},
	}
}

func (o *ProgressBarObserver) TransferStarted(source string, total int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.received[source] = 0
	o.active++
	if total > 0 {
		o.total += total
	} else {
		o.unknown = true
	}
	if o.bar == nil {
		o.bar = progressbar.NewOptions64(o.max(),
			progressbar.OptionSetWriter(o.out),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(o.out)
			}),
		)
	} else {
		o.bar.ChangeMax64(o.max())
	}
	o.describeLocked()
}

func (o *ProgressBarObserver) TransferProgressed(progress types.TransferProgress) {
	o.mu.Lock()
	defer o.mu.Unlock()
	previous, ok := o.received[progress.Source]
	if !ok || o.bar == nil {
		return
	}
	o.received[progress.Source] = progress.Received
	if delta := progress.Received - previous; delta > 0 {
		o.bytes += delta
		_ = o.bar.Add64(delta)
	}
}

func (o *ProgressBarObserver) TransferFinished(source string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.received[source]; ok {
		delete(o.received, source)
		o.active--
	}
	if err != nil {
		o.failed++
	} else {
		o.done++
	}
	o.describeLocked()
}

// Finish completes the bar once the sync no longer starts transfers.
func (o *ProgressBarObserver) Finish() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.bar == nil {
		return
	}
	o.describeLocked()
	_ = o.bar.Finish()
}

func (o *ProgressBarObserver) max() int64 {
	if o.unknown || o.total <= 0 {
		return -1
	}
	return o.total
}

func (o *ProgressBarObserver) describeLocked() {
	if o.bar == nil {
		return
	}
	description := fmt.Sprintf("downloading (%d active, %d done", o.active, o.done)
	if o.failed > 0 {
		description += fmt.Sprintf(", %d failed", o.failed)
	}
	o.bar.Describe(description + ")")
}

// LogProgressObserver reports transfer start and end through zerolog. Chunk
// updates are only remembered so the final entry carries the byte count.
type LogProgressObserver struct {
	logger   zerolog.Logger
	mu       sync.Mutex
	received map[string]types.TransferProgress
}

func NewLogProgressObserver(ctx context.Context) *LogProgressObserver {
	return &LogProgressObserver{
		logger:   *zerolog.Ctx(ctx),
		received: map[string]types.TransferProgress{},
	}
}

func (o *LogProgressObserver) TransferStarted(source string, total int64) {
	event := o.logger.Info().Str("source", source)
	if total > 0 {
		event = event.Str("size", humanize.Bytes(uint64(total)))
	}
	event.Msg("transfer started")
}

func (o *LogProgressObserver) TransferProgressed(progress types.TransferProgress) {
	o.mu.Lock()
	o.received[progress.Source] = progress
	o.mu.Unlock()
}

func (o *LogProgressObserver) TransferFinished(source string, err error) {
	o.mu.Lock()
	progress := o.received[source]
	delete(o.received, source)
	o.mu.Unlock()
	if err != nil {
		o.logger.Warn().Str("source", source).Err(err).Msg("transfer aborted")
		return
	}
	o.logger.Info().
		Str("source", source).
		Str("received", humanize.Bytes(uint64(progress.Received))).
		Msg("transfer finished")
}

var _ ports.ProgressObserver = NopProgressObserver{}
var _ ports.ProgressObserver = (*ProgressBarObserver)(nil)
var _ ports.ProgressObserver = (*LogProgressObserver)(nil)
