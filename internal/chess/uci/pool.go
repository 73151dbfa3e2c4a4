package uci

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("engine pool closed")

type PoolConfig struct {
	Command Command
	// PerOptionsCapacity bounds live processes per distinct Options value.
	PerOptionsCapacity int
	Logger             *zap.Logger
}

// Pool keeps warm engine processes, bucketed by their Options so a session
// never has to be reconfigured between searches.
type Pool struct {
	command  Command
	capacity int
	logger   *zap.Logger

	mu       sync.Mutex
	closed   bool
	buckets  map[Options]*sessionBucket
	sessions map[*Session]*sessionBucket
}

func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.Command.Path == "" {
		return nil, fmt.Errorf("engine binary path required")
	}
	if _, err := os.Stat(cfg.Command.Path); err != nil {
		return nil, fmt.Errorf("engine binary check: %w", err)
	}
	capacity := cfg.PerOptionsCapacity
	if capacity <= 0 {
		capacity = defaultCapacity()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		command:  cfg.Command,
		capacity: capacity,
		logger:   logger,
		buckets:  make(map[Options]*sessionBucket),
		sessions: make(map[*Session]*sessionBucket),
	}, nil
}

// Acquire returns an idle session for opt, starting one when the bucket has
// room, or waits for a release.
func (p *Pool) Acquire(ctx context.Context, opt Options) (*Session, error) {
	bucket, err := p.getBucket(opt)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case session := <-bucket.idle:
			if p.ready(ctx, session) {
				p.track(session, bucket)
				return session, nil
			}
			continue
		default:
		}

		session, err := bucket.create(ctx, p.command, p.logger)
		if err == nil {
			p.track(session, bucket)
			return session, nil
		}
		if !errors.Is(err, errBucketAtCapacity) {
			return nil, err
		}

		select {
		case session := <-bucket.idle:
			if p.ready(ctx, session) {
				p.track(session, bucket)
				return session, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (p *Pool) ready(ctx context.Context, session *Session) bool {
	if session == nil {
		return false
	}
	if err := session.EnsureReady(ctx); err != nil {
		p.logger.Debug("uci_session_stale", zap.Error(err))
		p.discard(session)
		return false
	}
	return true
}

// Release returns session to its bucket. A non-nil err discards it.
func (p *Pool) Release(session *Session, err error) {
	if session == nil {
		return
	}

	p.mu.Lock()
	bucket, ok := p.sessions[session]
	if !ok {
		p.mu.Unlock()
		_ = session.Close()
		return
	}
	delete(p.sessions, session)
	closed := p.closed
	p.mu.Unlock()

	if err != nil || closed || !bucket.put(session) {
		bucket.discard(session)
	}
}

func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	buckets := make([]*sessionBucket, 0, len(p.buckets))
	for _, b := range p.buckets {
		buckets = append(buckets, b)
	}
	p.mu.Unlock()

	var errs []error
	for _, bucket := range buckets {
		errs = append(errs, bucket.drain()...)
	}
	return errors.Join(errs...)
}

func (p *Pool) track(session *Session, bucket *sessionBucket) {
	p.mu.Lock()
	p.sessions[session] = bucket
	p.mu.Unlock()
}

func (p *Pool) discard(session *Session) {
	p.mu.Lock()
	bucket, ok := p.sessions[session]
	if ok {
		delete(p.sessions, session)
	}
	p.mu.Unlock()
	if ok {
		bucket.discard(session)
		return
	}
	_ = session.Close()
}

func (p *Pool) getBucket(opt Options) (*sessionBucket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	bucket, ok := p.buckets[opt]
	if !ok {
		bucket = newSessionBucket(opt, p.capacity)
		p.buckets[opt] = bucket
	}
	return bucket, nil
}

type sessionBucket struct {
	opt      Options
	capacity int

	mu    sync.Mutex
	total int
	idle  chan *Session
}

var errBucketAtCapacity = errors.New("session bucket at capacity")

func newSessionBucket(opt Options, capacity int) *sessionBucket {
	if capacity <= 0 {
		capacity = 1
	}
	return &sessionBucket{
		opt:      opt,
		capacity: capacity,
		idle:     make(chan *Session, capacity),
	}
}

func (b *sessionBucket) create(ctx context.Context, command Command, logger *zap.Logger) (*Session, error) {
	b.mu.Lock()
	if b.total >= b.capacity {
		b.mu.Unlock()
		return nil, errBucketAtCapacity
	}
	b.total++
	b.mu.Unlock()

	// The process must outlive the acquiring request.
	session, err := NewSession(context.WithoutCancel(ctx), command, b.opt, logger)
	if err != nil {
		b.decrement()
		return nil, err
	}
	return session, nil
}

func (b *sessionBucket) put(session *Session) bool {
	select {
	case b.idle <- session:
		return true
	default:
		return false
	}
}

func (b *sessionBucket) discard(session *Session) {
	if session != nil {
		_ = session.Close()
	}
	b.decrement()
}

func (b *sessionBucket) drain() []error {
	var errs []error
	for {
		select {
		case session := <-b.idle:
			if session == nil {
				continue
			}
			if err := session.Close(); err != nil {
				errs = append(errs, err)
			}
			b.decrement()
		default:
			return errs
		}
	}
}

func (b *sessionBucket) decrement() {
	b.mu.Lock()
	if b.total > 0 {
		b.total--
	}
	b.mu.Unlock()
}

func defaultCapacity() int {
	cpu := runtime.NumCPU()
	if cpu < 2 {
		return 2
	}
	if cpu > 4 {
		return 4
	}
	return cpu
}
