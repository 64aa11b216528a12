// Package bridge merges the walker's message stream into a tree.Store on the
// consumer's schedule.
//
// A Bridge is owned by the single consumer goroutine: Tick, Rescan and every
// accessor must be called from it. The only cross-goroutine traffic is the
// walker's Queue.
package bridge

import (
	"log/slog"

	"github.com/hayeah/aicontent/internal/tree"
	"github.com/hayeah/aicontent/internal/walker"
)

// Scanner starts a walk that pushes onto q. *walker.Walker implements it.
type Scanner interface {
	Start(root string, gen uint64, q *walker.Queue[walker.Message]) error
}

// TickResult summarises one Tick.
type TickResult struct {
	// Inserted counts messages attached to the store.
	Inserted int
	// Dropped counts duplicates, embedded re-emissions and stale messages.
	Dropped int
	// Completed is true on the one tick that observed the end of the scan.
	Completed bool
}

// Changed reports whether the tick altered what a renderer would show.
func (r TickResult) Changed() bool {
	return r.Inserted > 0 || r.Completed
}

// Bridge connects one root to its current scan.
type Bridge struct {
	root    string
	scanner Scanner
	logger  *slog.Logger

	store      *tree.Store
	queue      *walker.Queue[walker.Message]
	generation uint64
	scanning   bool
}

// New returns a Bridge for root. No scan runs until Start.
func New(root string, scanner Scanner, logger *slog.Logger) *Bridge {
	return &Bridge{
		root:    root,
		scanner: scanner,
		logger:  logger,
		store:   tree.New(),
	}
}

// Start begins the first scan. A scan-fatal error is returned as is and the
// store stays empty.
func (b *Bridge) Start() error {
	return b.scan()
}

// Rescan abandons the current scan, discards the store and starts a fresh
// walk under a new generation.
func (b *Bridge) Rescan() error {
	return b.scan()
}

func (b *Bridge) scan() error {
	if b.queue != nil {
		b.queue.Close()
	}
	b.generation++
	b.store = tree.New()
	b.queue = walker.NewQueue[walker.Message]()
	b.scanning = false

	if err := b.scanner.Start(b.root, b.generation, b.queue); err != nil {
		b.queue.Close()
		return err
	}
	b.scanning = true
	return nil
}

// Tick drains every message currently queued, without blocking, and inserts
// the ones of the current generation in receipt order.
func (b *Bridge) Tick() TickResult {
	var res TickResult
	if b.queue == nil || !b.scanning {
		return res
	}

	msgs, finished := b.queue.Drain()
	for _, m := range msgs {
		if m.Generation != b.generation {
			res.Dropped++
			continue
		}
		if b.store.Insert(m.Node) {
			res.Inserted++
		} else {
			res.Dropped++
		}
	}

	if finished {
		b.scanning = false
		res.Completed = true
		b.logger.Debug("scan complete", "root", b.root, "generation", b.generation, "nodes", b.store.Len())
	}
	return res
}

// Store returns the tree of the current generation. The pointer changes on
// Rescan.
func (b *Bridge) Store() *tree.Store {
	return b.store
}

// Roots returns the current top-level nodes by reference.
func (b *Bridge) Roots() []*tree.Node {
	return b.store.Roots()
}

// Generation is the number of the current scan, starting at 1.
func (b *Bridge) Generation() uint64 {
	return b.generation
}

// Scanning reports whether the current scan has not been observed to finish.
func (b *Bridge) Scanning() bool {
	return b.scanning
}

// Root is the directory being scanned.
func (b *Bridge) Root() string {
	return b.root
}

// Done is closed when the current scan's producer finishes. Headless callers
// wait on it before a final Tick. It is nil before Start.
func (b *Bridge) Done() <-chan struct{} {
	if b.queue == nil {
		return nil
	}
	return b.queue.Done()
}

// Ready fires after the walker pushes. See walker.Queue.Ready.
func (b *Bridge) Ready() <-chan struct{} {
	if b.queue == nil {
		return nil
	}
	return b.queue.Ready()
}
