package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"veritor-hq/veritor/pkg/verify"
)

// RecorderConfig configures the asynchronous recorder.
type RecorderConfig struct {
	// BufferSize is the channel capacity between the verification path
	// and the storage worker. Default: 1024
	BufferSize int

	// FlushTimeout bounds how long Stop waits for buffered records to
	// drain. Default: 5 seconds
	FlushTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		BufferSize:   1024,
		FlushTimeout: 5 * time.Second,
	}
}

// Recorder writes verification outcomes to storage asynchronously.
// It satisfies the policy manager's Auditor interface.
type Recorder struct {
	storage Storage
	config  *RecorderConfig
	logger  *slog.Logger

	records chan *Record
	done    chan struct{}

	mu      sync.Mutex
	closed  bool
	dropped atomic.Int64
}

// NewRecorder creates and starts a recorder writing to the given
// storage. Call Stop to drain and shut it down.
func NewRecorder(storage Storage, config *RecorderConfig) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1024
	}
	if config.FlushTimeout <= 0 {
		config.FlushTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "audit.recorder"),
		records: make(chan *Record, config.BufferSize),
		done:    make(chan struct{}),
	}
	go r.worker()
	return r
}

// RecordVerification queues a verification result for storage.
// It never blocks: when the buffer is full the record is dropped and
// counted, keeping audit I/O out of the verification path.
func (r *Recorder) RecordVerification(_ context.Context, result *verify.Result) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	record := newRecord(uuid.NewString(), result, time.Now().UTC())
	select {
	case r.records <- record:
	default:
		r.dropped.Add(1)
		r.logger.Warn("audit buffer full, record dropped",
			"policy_id", record.PolicyID,
			"dropped_total", r.dropped.Load(),
		)
	}
	r.mu.Unlock()
}

// Dropped returns how many records were discarded due to a full buffer.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Stop closes the recorder and waits for buffered records to drain, up
// to the configured flush timeout.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.closed = true
	close(r.records)
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-time.After(r.config.FlushTimeout):
		r.logger.Warn("audit recorder stop timed out before draining")
		return nil
	}
}

func (r *Recorder) worker() {
	defer close(r.done)

	for record := range r.records {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.storage.Append(ctx, record); err != nil {
			r.logger.Error("failed to store audit record",
				"record_id", record.ID,
				"policy_id", record.PolicyID,
				"error", err,
			)
		}
		cancel()
	}
}
