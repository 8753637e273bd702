// Package parse wires the ten tree-sitter grammars into a checkout/return
// pool (parsers are not goroutine-safe) and produces the uniform
// ParseResult the rest of the engine consumes. See spec §4.4.
package parse

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// compiled holds one language's ready-to-use parser/query pair. A pool of
// these is checked out and returned per-file; never shared concurrently.
type compiled struct {
	language *tree_sitter.Language
	query    *tree_sitter.Query
}

func newParserHandle(c *compiled) (*tree_sitter.Parser, error) {
	p := tree_sitter.NewParser()
	if err := p.SetLanguage(c.language); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	return p, nil
}

// Manager owns one buffered channel of parser handles per language,
// compiled lazily on first use of that language.
type Manager struct {
	mu        sync.Mutex
	compiled  map[string]*compiled
	pools     map[string]chan *tree_sitter.Parser
	extToLang map[string]string
	poolSize  int
}

// NewManager builds the extension→language table. Grammars are compiled
// lazily, the first time a language is actually requested, to avoid paying
// the cgo-adjacent grammar init cost for languages a project never uses.
func NewManager(poolSize int) *Manager {
	if poolSize <= 0 {
		poolSize = 4
	}
	m := &Manager{
		compiled:  make(map[string]*compiled),
		pools:     make(map[string]chan *tree_sitter.Parser),
		extToLang: make(map[string]string),
		poolSize:  poolSize,
	}
	for _, spec := range languageSpecs() {
		for _, ext := range spec.extensions {
			m.extToLang[ext] = spec.name
		}
	}
	return m
}

// SupportsLanguage reports whether lang has a registered grammar.
func (m *Manager) SupportsLanguage(lang string) bool {
	for _, spec := range languageSpecs() {
		if spec.name == lang {
			return true
		}
	}
	return false
}

func (m *Manager) ensureCompiled(lang string) (*compiled, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.compiled[lang]; ok {
		return c, nil
	}

	var spec *languageSpec
	for _, s := range languageSpecs() {
		if s.name == lang {
			sCopy := s
			spec = &sCopy
			break
		}
	}
	if spec == nil {
		return nil, fmt.Errorf("parse: unsupported language %q", lang)
	}

	tsLang := newLanguage(lang)
	if tsLang == nil {
		return nil, fmt.Errorf("parse: failed to load grammar for %q", lang)
	}

	query, queryErr := tree_sitter.NewQuery(tsLang, spec.query)
	// Some tree-sitter Go bindings return a typed-nil error on success;
	// query != nil is the only reliable success signal.
	if query == nil {
		return nil, fmt.Errorf("parse: failed to compile query for %q: %v", lang, queryErr)
	}

	c := &compiled{language: tsLang, query: query}
	m.compiled[lang] = c
	m.pools[lang] = make(chan *tree_sitter.Parser, m.poolSize)
	return c, nil
}

// Checkout returns a ready parser for lang, creating one if the pool for
// that language is empty. Must be paired with Return.
func (m *Manager) Checkout(lang string) (*tree_sitter.Parser, *tree_sitter.Query, error) {
	c, err := m.ensureCompiled(lang)
	if err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	pool := m.pools[lang]
	m.mu.Unlock()

	select {
	case p := <-pool:
		return p, c.query, nil
	default:
		p, err := newParserHandle(c)
		if err != nil {
			return nil, nil, err
		}
		return p, c.query, nil
	}
}

// Return gives a parser handle back to its language's pool. Handles beyond
// the pool's capacity are simply dropped (garbage collected).
func (m *Manager) Return(lang string, p *tree_sitter.Parser) {
	m.mu.Lock()
	pool, ok := m.pools[lang]
	m.mu.Unlock()
	if !ok {
		return
	}
	select {
	case pool <- p:
	default:
	}
}

// LanguageForExtension resolves a file extension to a registered language
// name, or "" if unsupported.
func (m *Manager) LanguageForExtension(ext string) string {
	return m.extToLang[ext]
}
