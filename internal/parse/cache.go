package parse

import (
	"container/list"
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/coderift/drift/internal/store"
)

// cacheKey identifies a parse result by language and content hash, not by
// path — identical file content in two files shares one cache entry.
type cacheKey struct {
	language string
	hash     uint64
}

// Cache fronts the durable parse_cache store table with a bounded
// in-memory LRU, so re-parsing an unchanged file across scans is always a
// hash lookup rather than a tree-sitter run.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	index    map[cacheKey]*list.Element
	store    *store.Store
}

type cacheEntry struct {
	key    cacheKey
	result Result
}

func NewCache(capacity int, s *store.Store) *Cache {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[cacheKey]*list.Element),
		store:    s,
	}
}

// Get returns a cached Result for (language, hash), checking the in-memory
// LRU first and falling back to the durable store table on a miss.
func (c *Cache) Get(ctx context.Context, language string, hash uint64) (Result, bool) {
	key := cacheKey{language: language, hash: hash}

	c.mu.Lock()
	if elem, ok := c.index[key]; ok {
		c.ll.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry)
		c.mu.Unlock()
		return entry.result, true
	}
	c.mu.Unlock()

	if c.store == nil {
		return Result{}, false
	}

	var resultJSON string
	row := c.store.Reader().QueryRowContext(ctx,
		`SELECT result_json FROM parse_cache WHERE language = ? AND content_hash = ?`, language, hash)
	if err := row.Scan(&resultJSON); err != nil {
		if err != sql.ErrNoRows {
			return Result{}, false
		}
		return Result{}, false
	}

	var persisted persistedResult
	if err := json.Unmarshal([]byte(resultJSON), &persisted); err != nil {
		return Result{}, false
	}
	result := persisted.toResult(language, hash)
	c.put(key, result)
	return result, true
}

// Put inserts a result into the in-memory LRU and queues a durable write
// through the store's batched ingest path.
func (c *Cache) Put(result Result) {
	key := cacheKey{language: result.Language, hash: result.ContentHash}
	c.put(key, result)

	if c.store == nil {
		return
	}
	persisted := fromResult(result)
	resultJSON, err := json.Marshal(persisted)
	if err != nil {
		return
	}
	c.store.Ingest(store.Batch{Rows: []store.Row{{
		SQL:  `INSERT OR REPLACE INTO parse_cache (language, content_hash, result_json) VALUES (?, ?, ?)`,
		Args: []any{result.Language, result.ContentHash, string(resultJSON)},
	}}})
}

func (c *Cache) put(key cacheKey, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[key]; ok {
		c.ll.MoveToFront(elem)
		elem.Value.(*cacheEntry).result = result
		return
	}

	elem := c.ll.PushFront(&cacheEntry{key: key, result: result})
	c.index[key] = elem

	for c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.ll.Remove(oldest)
		delete(c.index, oldest.Value.(*cacheEntry).key)
	}
}

// persistedResult is the JSON-serializable subset of Result stored
// durably; the GAST tree is not serialized, so a Result loaded from the
// durable table has a nil GAST.
type persistedResult struct {
	Functions []Symbol     `json:"functions"`
	Classes   []Symbol     `json:"classes"`
	Imports   []ImportRef  `json:"imports"`
	CallSites []CallSite   `json:"call_sites"`
	Errors    []ParseError `json:"errors"`
}

func fromResult(r Result) persistedResult {
	return persistedResult{
		Functions: r.Functions,
		Classes:   r.Classes,
		Imports:   r.Imports,
		CallSites: r.CallSites,
		Errors:    r.Errors,
	}
}

func (p persistedResult) toResult(language string, hash uint64) Result {
	return Result{
		Language:    language,
		ContentHash: hash,
		Functions:   p.Functions,
		Classes:     p.Classes,
		Imports:     p.Imports,
		CallSites:   p.CallSites,
		Errors:      p.Errors,
	}
}
