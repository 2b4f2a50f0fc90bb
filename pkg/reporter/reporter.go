package reporter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ash2k/stager/wait"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/hindenbug/statsd"
	"github.com/hindenbug/statsd/pkg/pool"
	"github.com/hindenbug/statsd/pkg/transport"
	"github.com/hindenbug/statsd/pkg/util"
)

// Config holds the sizing of a Reporter.
type Config struct {
	// FlushThreshold is the number of lines a worker accumulates before flushing. Required.
	FlushThreshold int
	// MaxQueueDepth is the number of lines the queue holds before new lines are dropped.
	// Zero means statsd.DefaultQueueDepthFactor times FlushThreshold.
	MaxQueueDepth int
	// PoolSize is the number of workers. Values below 1 mean 1.
	PoolSize int
	// MaxPacketSize caps the size of a datagram in bytes. A batch which does not fit is split
	// across several datagrams. Zero disables the limit.
	MaxPacketSize int
	// DropLogInterval is the minimum time between two capacity warnings. Zero logs every drop.
	DropLogInterval time.Duration
}

// Stats is a point in time snapshot of a Reporter's counters.
type Stats struct {
	Enqueued      uint64 // lines admitted into the queue
	Dropped       uint64 // lines rejected by the queue
	Flushes       uint64 // non-empty batches flushed
	Datagrams     uint64 // send attempts
	LinesFlushed  uint64 // lines included in send attempts
	SendErrors    uint64 // failed send attempts
	QueueLength   int
	QueueCapacity int
}

// Reporter accumulates lines from many producers and flushes them in batches through a Socket.
type Reporter struct {
	// Counter fields below must be read/written only using atomic instructions.
	// 64-bit fields must be the first fields in the struct to guarantee proper memory alignment.
	// See https://golang.org/pkg/sync/atomic/#pkg-note-BUG
	enqueued     uint64
	dropped      uint64
	suppressed   uint64 // drops since the last capacity warning
	flushes      uint64
	datagrams    uint64
	linesFlushed uint64
	sendErrors   uint64

	lastSendFailed int32 // atomic, 1 when the most recent datagram failed to send

	logger         logrus.FieldLogger
	socket         transport.Socket
	queue          chan string
	flushThreshold int
	poolSize       int
	maxPacketSize  int
	dropLimiter    *rate.Limiter
	buffers        *pool.BytesBuffer

	mu      sync.RWMutex // guards stopped against in-flight Enqueue calls
	stopped bool
}

// New creates a Reporter. Workers are not started until Run is called, lines enqueued before
// that wait in the queue.
func New(logger logrus.FieldLogger, socket transport.Socket, cfg Config) (*Reporter, error) {
	if socket == nil {
		return nil, errors.New("socket is required")
	}
	if cfg.FlushThreshold < 1 {
		return nil, errors.New("flush threshold must be positive")
	}
	if cfg.MaxQueueDepth < 0 {
		return nil, errors.New("max queue depth must be zero or positive")
	}
	if cfg.MaxPacketSize < 0 {
		return nil, errors.New("max packet size must be zero or positive")
	}
	if cfg.MaxQueueDepth == 0 {
		cfg.MaxQueueDepth = statsd.DefaultQueueDepthFactor * cfg.FlushThreshold
	}
	if cfg.PoolSize < 1 {
		cfg.PoolSize = 1
	}
	dropLimit := rate.Inf
	if cfg.DropLogInterval > 0 {
		dropLimit = rate.Every(cfg.DropLogInterval)
	}
	initialBuffer := cfg.MaxPacketSize
	if initialBuffer == 0 {
		initialBuffer = 512
	}

	return &Reporter{
		logger:         util.LoggerOrNull(logger),
		socket:         socket,
		queue:          make(chan string, cfg.MaxQueueDepth),
		flushThreshold: cfg.FlushThreshold,
		poolSize:       cfg.PoolSize,
		maxPacketSize:  cfg.MaxPacketSize,
		dropLimiter:    rate.NewLimiter(dropLimit, 1),
		buffers:        pool.NewBytesBuffer(initialBuffer, 64*1024),
	}, nil
}

// Enqueue offers line to the queue without blocking. It returns false if the line was dropped,
// either because the queue is full or because the Reporter has stopped.
func (r *Reporter) Enqueue(line string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		atomic.AddUint64(&r.dropped, 1)
		r.logger.WithField("line", line).Debug("reporter stopped, dropping line")
		return false
	}
	select {
	case r.queue <- line:
		atomic.AddUint64(&r.enqueued, 1)
		return true
	default:
		atomic.AddUint64(&r.dropped, 1)
		r.warnDropped()
		return false
	}
}

func (r *Reporter) warnDropped() {
	atomic.AddUint64(&r.suppressed, 1)
	if !r.dropLimiter.Allow() {
		return
	}
	r.logger.WithFields(logrus.Fields{
		"dropped":         atomic.SwapUint64(&r.suppressed, 0),
		"max_queue_depth": cap(r.queue),
	}).Warn("queue at max capacity")
}

// Run starts the workers and blocks until ctx is done. It then refuses new lines, lets the
// workers drain the queue and flush, and returns once all of them have exited.
// Run must be called at most once.
func (r *Reporter) Run(ctx context.Context) {
	// Separate context, workers must outlive ctx until the queue is drained.
	ctxWorkers, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var wg wait.Group
	defer wg.Wait()

	for i := 0; i < r.poolSize; i++ {
		w := &worker{
			id:       i,
			reporter: r,
			batch:    make([]string, 0, r.flushThreshold),
		}
		wg.StartWithContext(ctxWorkers, w.work)
	}
	r.logger.WithFields(logrus.Fields{
		"pool_size":       r.poolSize,
		"flush_threshold": r.flushThreshold,
		"max_queue_depth": cap(r.queue),
	}).Debug("reporter started")

	<-ctx.Done()

	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
	cancelWorkers()
}

// Stats returns current Reporter stats. Safe for concurrent use.
func (r *Reporter) Stats() Stats {
	return Stats{
		Enqueued:      atomic.LoadUint64(&r.enqueued),
		Dropped:       atomic.LoadUint64(&r.dropped),
		Flushes:       atomic.LoadUint64(&r.flushes),
		Datagrams:     atomic.LoadUint64(&r.datagrams),
		LinesFlushed:  atomic.LoadUint64(&r.linesFlushed),
		SendErrors:    atomic.LoadUint64(&r.sendErrors),
		QueueLength:   len(r.queue),
		QueueCapacity: cap(r.queue),
	}
}
