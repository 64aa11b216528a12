package metrics

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/hayeah/aicontent/internal/pathindex"
)

// Item holds the measurements of one exported file.
type Item struct {
	Bytes  int `json:"bytes"`
	Tokens int `json:"tokens"`
	Lines  int `json:"lines"`
}

// Add adds the given metrics to this item
func (m *Item) Add(bytes, tokens, lines int) {
	m.Bytes += bytes
	m.Tokens += tokens
	m.Lines += lines
}

type job struct {
	path    pathindex.Path
	content []byte
}

// ExportMetrics measures export blocks on a pool of workers. Add may be
// called from the exporting goroutine while workers run; read results only
// after Wait.
type ExportMetrics struct {
	mu    sync.Mutex
	wg    sync.WaitGroup
	once  sync.Once
	jobs  chan job
	items map[pathindex.Path]Item
	ctr   Counter
}

// NewExportMetrics starts workers goroutines that measure with counter.
func NewExportMetrics(counter Counter, workers int) *ExportMetrics {
	if workers < 1 {
		workers = 1
	}

	m := &ExportMetrics{
		jobs:  make(chan job, workers*2),
		items: make(map[pathindex.Path]Item),
		ctr:   counter,
	}

	m.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go m.worker()
	}
	return m
}

func (m *ExportMetrics) worker() {
	defer m.wg.Done()

	for j := range m.jobs {
		bytes, tokens, lines := m.ctr.Count(j.content)

		m.mu.Lock()
		item := m.items[j.path]
		item.Add(bytes, tokens, lines)
		m.items[j.path] = item
		m.mu.Unlock()
	}
}

// Add queues the export block of p. It has the signature of
// export.Exporter.Observe.
func (m *ExportMetrics) Add(p pathindex.Path, block []byte) {
	m.jobs <- job{path: p, content: block}
}

// Wait stops accepting work and blocks until every queued block is measured.
// It is idempotent.
func (m *ExportMetrics) Wait() {
	m.once.Do(func() { close(m.jobs) })
	m.wg.Wait()
}

// Entry is one row of a report.
type Entry struct {
	Path pathindex.Path `json:"path"`
	Item
}

// Entries returns the per-file results in tree order.
func (m *ExportMetrics) Entries() []Entry {
	m.Wait()
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, 0, len(m.items))
	for p, item := range m.items {
		out = append(out, Entry{Path: p, Item: item})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return pathindex.Compare(a.Path, b.Path)
	})
	return out
}

// Total sums every file.
func (m *ExportMetrics) Total() Item {
	var sum Item
	for _, e := range m.Entries() {
		sum.Add(e.Bytes, e.Tokens, e.Lines)
	}
	return sum
}

// MarshalJSON encodes {"files": [...], "total": {...}}.
func (m *ExportMetrics) MarshalJSON() ([]byte, error) {
	report := struct {
		Files []Entry `json:"files"`
		Total Item    `json:"total"`
	}{Files: m.Entries(), Total: m.Total()}

	b, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metrics: %w", err)
	}
	return b, nil
}
