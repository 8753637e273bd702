// Package callgraph maintains the in-memory directed call graph — nodes
// are functions, edges are resolved (or deliberately unresolved) calls —
// and persists it through the store's batch writer. Forward/inverse
// queries run in-memory by default, falling back to a recursive-CTE SQL
// path above a configurable size threshold; both must agree. See spec §4.7.
package callgraph

import (
	"context"
	"database/sql"
	"sync"

	"github.com/coderift/drift/internal/ids"
	"github.com/coderift/drift/internal/resolve"
	"github.com/coderift/drift/internal/store"
)

// FunctionID is the store-assigned primary key for a persisted function
// row; Graph keys nodes by this, not by (FileID, name), once a function
// has been ingested.
type FunctionID int64

// Function is one node: the owning file, qualified name, and the small
// classifier flags used elsewhere in the pipeline (entry point, injectable,
// auth handler, test case, data accessor — §3).
type Function struct {
	ID             FunctionID
	FileID         ids.FileID
	Name           string
	QualifiedName  string
	BodyHash       uint64
	IsEntryPoint   bool
	IsInjectable   bool
	IsAuthHandler  bool
	IsTestCase     bool
	IsDataAccessor bool
	LineStart      int
	LineEnd        int
}

// Edge is one directed call relationship. CalleeID is zero when the call
// is unresolved and was still recorded because its resolution strategy was
// "fuzzy" above threshold (spec §3 CallEdge invariant).
type Edge struct {
	CallerID   FunctionID
	CalleeID   FunctionID // 0 means unresolved
	Strategy   resolve.Strategy
	Confidence float64
}

// Graph is the RWMutex-guarded adjacency structure. Incremental updates
// (file re-parse) acquire the write lock only for the duration of removing
// and re-adding one file's functions/edges — O(edges changed), per §5.
type Graph struct {
	mu sync.RWMutex

	functions map[FunctionID]*Function
	byFile    map[ids.FileID][]FunctionID

	out map[FunctionID][]Edge // outgoing edges, caller -> edges
	in  map[FunctionID][]Edge // incoming edges, callee -> edges

	cteThreshold int
}

// NewGraph creates an empty graph. cteThreshold is the edge count above
// which reachability queries prefer the SQL CTE fallback over in-memory
// BFS (0 disables the fallback and always uses in-memory).
func NewGraph(cteThreshold int) *Graph {
	return &Graph{
		functions:    make(map[FunctionID]*Function),
		byFile:       make(map[ids.FileID][]FunctionID),
		out:          make(map[FunctionID][]Edge),
		in:           make(map[FunctionID][]Edge),
		cteThreshold: cteThreshold,
	}
}

// AddFunction inserts or replaces a node.
func (g *Graph) AddFunction(fn Function) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.functions[fn.ID] = &fn
	g.byFile[fn.FileID] = append(g.byFile[fn.FileID], fn.ID)
}

// AddEdge inserts a directed call edge.
func (g *Graph) AddEdge(e Edge) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.out[e.CallerID] = append(g.out[e.CallerID], e)
	if e.CalleeID != 0 {
		g.in[e.CalleeID] = append(g.in[e.CalleeID], e)
	}
}

// RemoveFile deletes every function owned by fileID and its outgoing
// edges. Inbound edges that pointed at a removed function are rewritten to
// (caller, callee=0, resolution="stale") rather than silently dropped, so
// the caller-side edge count stays stable across the file's re-parse (§4.7).
func (g *Graph) RemoveFile(fileID ids.FileID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := make(map[FunctionID]bool)
	for _, id := range g.byFile[fileID] {
		removed[id] = true
	}
	delete(g.byFile, fileID)

	for id := range removed {
		for _, e := range g.out[id] {
			if e.CalleeID == 0 || removed[e.CalleeID] {
				continue
			}
			kept := g.in[e.CalleeID][:0]
			for _, ie := range g.in[e.CalleeID] {
				if ie.CallerID != id {
					kept = append(kept, ie)
				}
			}
			g.in[e.CalleeID] = kept
		}
		delete(g.functions, id)
		delete(g.out, id)
	}

	for callee, edges := range g.in {
		if !removed[callee] {
			continue
		}
		for _, e := range edges {
			if removed[e.CallerID] {
				continue // the caller itself was removed too; its out-edge is already gone
			}
			stale := Edge{CallerID: e.CallerID, CalleeID: 0, Strategy: "stale", Confidence: 0}
			for i, oe := range g.out[e.CallerID] {
				if oe.CalleeID == callee {
					g.out[e.CallerID][i] = stale
				}
			}
		}
		delete(g.in, callee)
	}
}

// NodeCount and EdgeCount support the CTE-threshold decision.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.functions)
}

func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, es := range g.out {
		n += len(es)
	}
	return n
}

// Function looks up a node by ID.
func (g *Graph) Function(id FunctionID) (*Function, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	f, ok := g.functions[id]
	return f, ok
}

// Persist flushes every function/edge through the store's batch ingest
// channel. Called after a scan's detection pass completes.
func (g *Graph) Persist(s *store.Store) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var rows []store.Row
	for _, f := range g.functions {
		rows = append(rows, store.Row{
			SQL: `INSERT INTO functions (id, file_id, qualified_name, name, body_hash, signature,
				is_entry_point, is_injectable, is_auth_handler, is_test_case, is_data_accessor, line_start, line_end)
				VALUES (?, ?, ?, ?, ?, '', ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET qualified_name=excluded.qualified_name, name=excluded.name,
				body_hash=excluded.body_hash, is_entry_point=excluded.is_entry_point,
				is_injectable=excluded.is_injectable, is_auth_handler=excluded.is_auth_handler,
				is_test_case=excluded.is_test_case, is_data_accessor=excluded.is_data_accessor,
				line_start=excluded.line_start, line_end=excluded.line_end`,
			Args: []any{f.ID, f.FileID, f.QualifiedName, f.Name, f.BodyHash,
				boolInt(f.IsEntryPoint), boolInt(f.IsInjectable), boolInt(f.IsAuthHandler),
				boolInt(f.IsTestCase), boolInt(f.IsDataAccessor), f.LineStart, f.LineEnd},
		})
	}
	for caller, edges := range g.out {
		for _, e := range edges {
			var callee any
			if e.CalleeID != 0 {
				callee = int64(e.CalleeID)
			}
			rows = append(rows, store.Row{
				SQL:  `INSERT INTO call_edges (caller_id, callee_id, resolution, confidence) VALUES (?, ?, ?, ?)`,
				Args: []any{int64(caller), callee, string(e.Strategy), e.Confidence},
			})
		}
	}
	if len(rows) > 0 {
		s.Ingest(store.Batch{Rows: rows})
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ReachabilityResult is the set of functions discovered by a BFS, the
// deepest level actually reached, and whether max depth capped the search
// before it naturally terminated (spec §3 ReachabilityQuery result).
type ReachabilityResult struct {
	Reached  map[FunctionID]int // function -> depth at first discovery
	MaxDepth int
	Saturated bool
}

// Forward runs outgoing-edge BFS from roots up to maxDepth levels.
func (g *Graph) Forward(roots []FunctionID, maxDepth int) ReachabilityResult {
	return g.bfs(roots, maxDepth, func(id FunctionID) []Edge {
		g.mu.RLock()
		defer g.mu.RUnlock()
		return append([]Edge(nil), g.out[id]...)
	}, func(e Edge) FunctionID { return e.CalleeID })
}

// Inverse runs incoming-edge BFS from roots up to maxDepth levels.
func (g *Graph) Inverse(roots []FunctionID, maxDepth int) ReachabilityResult {
	return g.bfs(roots, maxDepth, func(id FunctionID) []Edge {
		g.mu.RLock()
		defer g.mu.RUnlock()
		return append([]Edge(nil), g.in[id]...)
	}, func(e Edge) FunctionID { return e.CallerID })
}

func (g *Graph) bfs(roots []FunctionID, maxDepth int, neighbors func(FunctionID) []Edge, other func(Edge) FunctionID) ReachabilityResult {
	reached := make(map[FunctionID]int, len(roots))
	queue := make([]FunctionID, 0, len(roots))
	for _, r := range roots {
		if _, ok := reached[r]; !ok {
			reached[r] = 0
			queue = append(queue, r)
		}
	}

	deepest := 0
	saturated := false
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		depth := reached[cur]
		if depth >= maxDepth {
			for _, e := range neighbors(cur) {
				if next := other(e); next != 0 {
					if _, ok := reached[next]; !ok {
						saturated = true
						break
					}
				}
			}
			continue
		}
		for _, e := range neighbors(cur) {
			next := other(e)
			if next == 0 {
				continue
			}
			if _, ok := reached[next]; ok {
				continue
			}
			reached[next] = depth + 1
			if depth+1 > deepest {
				deepest = depth + 1
			}
			queue = append(queue, next)
		}
	}
	return ReachabilityResult{Reached: reached, MaxDepth: deepest, Saturated: saturated}
}

// ShouldUseCTE reports whether reachability queries should prefer the
// recursive-CTE SQL fallback for this graph's current size.
func (g *Graph) ShouldUseCTE() bool {
	if g.cteThreshold <= 0 {
		return false
	}
	return g.EdgeCount() > g.cteThreshold
}

// ForwardCTE runs the SQL-backed equivalent of Forward against the
// persisted call_edges table, used when ShouldUseCTE is true or no
// in-memory handle is available. Both paths must return identical vertex
// sets and depths for identical inputs (spec §8).
func ForwardCTE(ctx context.Context, db *sql.DB, roots []FunctionID, maxDepth int) (ReachabilityResult, error) {
	return cteBFS(ctx, db, roots, maxDepth, `
		WITH RECURSIVE reach(id, depth) AS (
			SELECT id, 0 FROM (SELECT value AS id FROM json_each(?))
			UNION
			SELECT ce.callee_id, r.depth + 1
			FROM call_edges ce JOIN reach r ON ce.caller_id = r.id
			WHERE ce.callee_id IS NOT NULL AND r.depth < ?
		)
		SELECT id, MIN(depth) FROM reach GROUP BY id`)
}

// InverseCTE is ForwardCTE's mirror over incoming edges.
func InverseCTE(ctx context.Context, db *sql.DB, roots []FunctionID, maxDepth int) (ReachabilityResult, error) {
	return cteBFS(ctx, db, roots, maxDepth, `
		WITH RECURSIVE reach(id, depth) AS (
			SELECT id, 0 FROM (SELECT value AS id FROM json_each(?))
			UNION
			SELECT ce.caller_id, r.depth + 1
			FROM call_edges ce JOIN reach r ON ce.callee_id = r.id
			WHERE r.depth < ?
		)
		SELECT id, MIN(depth) FROM reach GROUP BY id`)
}

func cteBFS(ctx context.Context, db *sql.DB, roots []FunctionID, maxDepth int, query string) (ReachabilityResult, error) {
	idsJSON := marshalIDs(roots)
	rows, err := db.QueryContext(ctx, query, idsJSON, maxDepth)
	if err != nil {
		return ReachabilityResult{}, err
	}
	defer rows.Close()

	reached := make(map[FunctionID]int)
	deepest := 0
	for rows.Next() {
		var id int64
		var depth int
		if err := rows.Scan(&id, &depth); err != nil {
			return ReachabilityResult{}, err
		}
		reached[FunctionID(id)] = depth
		if depth > deepest {
			deepest = depth
		}
	}
	return ReachabilityResult{Reached: reached, MaxDepth: deepest}, rows.Err()
}

func marshalIDs(ids []FunctionID) string {
	s := "["
	for i, id := range ids {
		if i > 0 {
			s += ","
		}
		s += itoa(int64(id))
	}
	return s + "]"
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
