package parser

import (
	"sync"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool recycles tree-sitter parsers so concurrent file analysis does
// not pay for sitter.NewParser per file.
//
//	sp := pool.Get()
//	defer pool.Put(sp)
//	tree := sp.Parse(source, nil)
//
// Safe for use by multiple goroutines.
type ParserPool struct {
	lang *sitter.Language
	pool sync.Pool

	leases   map[*sitter.Parser]time.Time
	leasesMu sync.Mutex
}

// NewParserPool creates a pool for lang, which must outlive the pool.
func NewParserPool(lang *sitter.Language) *ParserPool {
	p := &ParserPool{
		lang:   lang,
		leases: make(map[*sitter.Parser]time.Time),
	}
	p.pool = sync.Pool{
		New: func() any {
			sp := sitter.NewParser()
			_ = sp.SetLanguage(lang)
			return sp
		},
	}
	return p
}

// Get leases a parser configured for the pool's language.
func (p *ParserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	_ = sp.SetLanguage(p.lang)

	p.leasesMu.Lock()
	p.leases[sp] = time.Now()
	p.leasesMu.Unlock()

	return sp
}

// Put resets sp and returns it to the pool. Put(nil) is a no-op.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}

	p.leasesMu.Lock()
	delete(p.leases, sp)
	p.leasesMu.Unlock()

	sp.Reset()
	p.pool.Put(sp)
}

// Leased returns the number of parsers currently handed out.
func (p *ParserPool) Leased() int {
	p.leasesMu.Lock()
	defer p.leasesMu.Unlock()
	return len(p.leases)
}

// OldestLease returns how long the longest outstanding lease has been held,
// or zero when nothing is leased.
func (p *ParserPool) OldestLease() time.Duration {
	p.leasesMu.Lock()
	defer p.leasesMu.Unlock()
	var oldest time.Duration
	now := time.Now()
	for _, since := range p.leases {
		if d := now.Sub(since); d > oldest {
			oldest = d
		}
	}
	return oldest
}
