// Package executor fetches work items concurrently under two admission
// limits and hands the outcomes to a single sequential consumer.
//
// maxInFlight bounds fetches currently transferring bytes. maxBuffered bounds
// fetches that were started but whose outcome has not been released by the
// consumer yet, which bounds scratch storage. A finished fetch frees its
// in-flight slot at once, so new fetches keep starting while the consumer is
// busy with an earlier item.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/errors"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
)

// DefaultFetchTimeout bounds a single fetch.
const DefaultFetchTimeout = 60 * time.Second

// Spool stores fetched bytes until they are released.
type Spool interface {
	Write(name string, r io.Reader) (int64, error)
	Open(name string) (io.ReadCloser, error)
	Remove(name string) error
}

// Config holds the pipeline settings. Zero values select the defaults.
type Config struct {
	// MaxInFlight defaults to runtime.NumCPU().
	MaxInFlight int
	// MaxBuffered defaults to 4*MaxInFlight and is never below MaxInFlight.
	MaxBuffered int
	// FetchTimeout defaults to DefaultFetchTimeout. Negative disables it.
	FetchTimeout time.Duration
	// Spool holds fetched bytes. Without one they are kept in memory.
	Spool Spool
	// SpoolPrefix namespaces spool file names, e.g. per run.
	SpoolPrefix string
	Logger      *slog.Logger
}

// Limits returns the effective (maxInFlight, maxBuffered) for c.
func (c Config) Limits() (int, int) {
	maxInFlight := c.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = runtime.NumCPU()
	}
	maxBuffered := c.MaxBuffered
	if maxBuffered <= 0 {
		maxBuffered = 4 * maxInFlight
	}
	if maxBuffered < maxInFlight {
		maxBuffered = maxInFlight
	}
	return maxInFlight, maxBuffered
}

// Stats is a snapshot of the admission counters.
type Stats struct {
	InFlight     int
	Buffered     int
	PeakInFlight int
	PeakBuffered int
	Started      int
	Pending      int
}

// Pipeline runs the fetches for a fixed list of work items.
type Pipeline struct {
	fetcher mirrortypes.Fetcher
	items   []mirrortypes.WorkItem

	maxInFlight int
	maxBuffered int
	timeout     time.Duration

	spool       Spool
	spoolPrefix string
	logger      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// notify carries at most one pending wake-up for Await.
	notify chan struct{}

	mu           sync.Mutex
	next         int
	inFlight     int
	buffered     int
	peakInFlight int
	peakBuffered int
	ready        map[int]mirrortypes.FetchOutcome
	closed       bool
}

// New creates a pipeline for items. Nothing is fetched until Admit or Await.
// Items must be numbered 0..len(items)-1 in order.
func New(ctx context.Context, fetcher mirrortypes.Fetcher, items []mirrortypes.WorkItem, cfg Config) *Pipeline {
	maxInFlight, maxBuffered := cfg.Limits()

	timeout := cfg.FetchTimeout
	if timeout == 0 {
		timeout = DefaultFetchTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Pipeline{
		fetcher:     fetcher,
		items:       items,
		maxInFlight: maxInFlight,
		maxBuffered: maxBuffered,
		timeout:     timeout,
		notify:      make(chan struct{}, 1),
		ready:       make(map[int]mirrortypes.FetchOutcome),
		spool:       cfg.Spool,
		spoolPrefix: cfg.SpoolPrefix,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Admit starts fetches while unstarted items remain and both limits allow.
func (p *Pipeline) Admit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.admitLocked()
}

func (p *Pipeline) admitLocked() {
	for !p.closed && p.next < len(p.items) && p.buffered < p.maxBuffered && p.inFlight < p.maxInFlight {
		item := p.items[p.next]
		p.next++

		p.inFlight++
		p.buffered++
		p.peakInFlight = max(p.peakInFlight, p.inFlight)
		p.peakBuffered = max(p.peakBuffered, p.buffered)

		p.logger.Debug("fetch started",
			"seq", item.Seq,
			"file", item.Entry.Filename,
			"in_flight", p.inFlight,
			"buffered", p.buffered,
		)

		p.wg.Add(1)
		go p.fetch(item)
	}
}

// Await returns the outcome of item seq, waiting for its fetch if needed. It
// only fails if ctx ends or seq can never complete.
func (p *Pipeline) Await(ctx context.Context, seq int) (mirrortypes.FetchOutcome, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return mirrortypes.FetchOutcome{}, errors.New(errors.CodeInternal, "pipeline closed")
		}
		p.admitLocked()
		if o, ok := p.ready[seq]; ok {
			p.mu.Unlock()
			return o, nil
		}
		// Nothing in flight can produce seq: it was released already, or the
		// buffer is full of items the caller has not released.
		if p.inFlight == 0 {
			p.mu.Unlock()
			return mirrortypes.FetchOutcome{}, errors.Newf(errors.CodeInternal, "item %d is not pending", seq)
		}
		p.mu.Unlock()

		select {
		case <-p.notify:
		case <-ctx.Done():
			return mirrortypes.FetchOutcome{}, fmt.Errorf("awaiting item %d: %w", seq, ctx.Err())
		}
	}
}

// Release discards the outcome of seq and frees its buffer slot.
func (p *Pipeline) Release(seq int) {
	p.mu.Lock()
	o, ok := p.ready[seq]
	if !ok {
		p.mu.Unlock()
		return
	}
	delete(p.ready, seq)
	p.buffered--
	p.admitLocked()
	p.mu.Unlock()

	_ = p.discard(o)
}

// Close cancels outstanding fetches, waits for them and removes every
// spooled file. It is safe to call more than once.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for seq, o := range p.ready {
		if err := p.discard(o); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.ready, seq)
	}

	p.inFlight = 0
	p.buffered = 0
	return firstErr
}

// Stats returns the current admission counters.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		InFlight:     p.inFlight,
		Buffered:     p.buffered,
		PeakInFlight: p.peakInFlight,
		PeakBuffered: p.peakBuffered,
		Started:      p.next,
		Pending:      len(p.items) - p.next,
	}
}

// fetch runs on its own goroutine. Completion frees the in-flight slot and
// admits the next item; the buffer slot stays taken until Release.
func (p *Pipeline) fetch(item mirrortypes.WorkItem) {
	defer p.wg.Done()
	o := p.retrieve(item)

	p.mu.Lock()
	p.ready[item.Seq] = o
	p.inFlight--
	p.admitLocked()
	p.mu.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}
}

func (p *Pipeline) retrieve(item mirrortypes.WorkItem) mirrortypes.FetchOutcome {
	outcome := mirrortypes.FetchOutcome{Item: item}
	ctx := p.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	fail := func(err error) mirrortypes.FetchOutcome {
		outcome.Err = errors.WrapWithContext(err, errors.CodeFetchFailed, "fetch failed",
			map[string]interface{}{"file": item.Entry.Filename})
		return outcome
	}

	body, err := p.fetcher.Fetch(ctx, item.Entry)
	if err != nil {
		return fail(err)
	}
	defer body.Close()

	if p.spool == nil {
		data, err := io.ReadAll(body)
		if err != nil {
			return fail(err)
		}
		outcome.Content = memoryContent(data)
		outcome.Size = int64(len(data))
		return outcome
	}

	name := p.spoolName(item.Seq)
	n, err := p.spool.Write(name, body)
	if err != nil {
		return fail(err)
	}
	outcome.Content = spooledContent{spool: p.spool, name: name}
	outcome.Size = n
	return outcome
}

func (p *Pipeline) discard(o mirrortypes.FetchOutcome) error {
	sc, ok := o.Content.(spooledContent)
	if !ok {
		return nil
	}
	if err := sc.spool.Remove(sc.name); err != nil {
		p.logger.Warn("failed to remove spooled file", "name", sc.name, "error", err)
		return err
	}
	return nil
}

func (p *Pipeline) spoolName(seq int) string {
	if p.spoolPrefix == "" {
		return fmt.Sprintf("item-%06d.tmp", seq)
	}
	return fmt.Sprintf("%s-item-%06d.tmp", p.spoolPrefix, seq)
}

type memoryContent []byte

func (m memoryContent) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m)), nil
}

type spooledContent struct {
	spool Spool
	name  string
}

func (s spooledContent) Open() (io.ReadCloser, error) {
	return s.spool.Open(s.name)
}
