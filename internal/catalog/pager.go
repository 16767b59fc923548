package catalog

import (
	"sync"

	"github.com/ecochain/token-catalog/internal/model"
)

// Pager tracks the cumulative visible count of a "show more" listing. Each
// ShowMore reveals one more page; it is safe for concurrent use.
type Pager struct {
	mu       sync.Mutex
	size     int
	visible  int
	requests int
}

// NewPager creates a pager showing one page of the given size
func NewPager(size int) *Pager {
	if size < 1 {
		size = model.DefaultPageSize
	}
	return &Pager{size: size, visible: size}
}

// Size returns the page size
func (p *Pager) Size() int {
	return p.size
}

// Visible returns the number of items to render out of total
func (p *Pager) Visible(total int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return clamp(p.visible, total)
}

// HasMore reports whether total holds items beyond the visible count
func (p *Pager) HasMore(total int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible < total
}

// ShowMore reveals another page of total and returns the new visible count.
// Once everything is visible further calls are no-ops.
func (p *Pager) ShowMore(total int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests++
	if p.visible < total {
		p.visible += p.size
	}
	return clamp(p.visible, total)
}

// ShowMoreFrom reveals another page only if the caller observed the current
// visible count. Two requests issued from the same observed state advance the
// pager once; the second reports false.
func (p *Pager) ShowMoreFrom(observed, total int) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests++
	if clamp(p.visible, total) != observed || p.visible >= total {
		return clamp(p.visible, total), false
	}
	p.visible += p.size
	return clamp(p.visible, total), true
}

// Requests returns how many show-more calls the pager has received
func (p *Pager) Requests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests
}

// Reset returns the pager to a single page, e.g. after the filter changes
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = p.size
	p.requests = 0
}

func clamp(visible, total int) int {
	if total < 0 {
		total = 0
	}
	if visible > total {
		return total
	}
	return visible
}
