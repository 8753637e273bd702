// Package graphintel builds reachability, taint, impact, and test-topology
// intelligence on top of the in-memory call graph, per spec §4.13-§4.15.
package graphintel

import (
	"sync"

	"github.com/coderift/drift/internal/boundary"
	"github.com/coderift/drift/internal/callgraph"
)

// Sensitivity mirrors boundary.SensitivityClass ordering so reachability
// results can carry a "maximum sensitivity reachable" summary without an
// import cycle back into boundary's detection types.
type Sensitivity int

const (
	SensitivityNone Sensitivity = iota
	SensitivityPII
	SensitivityFinancial
	SensitivityHealth
	SensitivityCredentials
)

func sensitivityOf(class boundary.SensitivityClass) Sensitivity {
	switch class {
	case boundary.ClassPII:
		return SensitivityPII
	case boundary.ClassFinancial:
		return SensitivityFinancial
	case boundary.ClassHealth:
		return SensitivityHealth
	case boundary.ClassCredentials:
		return SensitivityCredentials
	default:
		return SensitivityNone
	}
}

// Direction selects which edge orientation a reachability query walks.
type Direction int

const (
	DirectionForward Direction = iota
	DirectionInverse
)

// FunctionSensitivity maps a function to the highest sensitivity class of
// any field it touches, via the boundary analyzer's function->table->field
// map (spec §4.13).
type FunctionSensitivity map[callgraph.FunctionID]Sensitivity

// Result is a reachability query's outcome: the reached set (with the
// depth each node was first discovered at) and the maximum sensitivity
// reachable from the query root.
type Result struct {
	Reached           map[callgraph.FunctionID]int
	MaxDepth          int
	Saturated         bool
	MaxSensitivity    Sensitivity
}

const defaultMaxDepth = 20

type cacheKey struct {
	root      callgraph.FunctionID
	direction Direction
	maxDepth  int
}

// Engine runs reachability queries over a call graph, with an LRU cache
// keyed by (root_fn, direction, max_depth) (spec §4.13). The Engine does
// not watch the graph for mutations; the cache is emptied only by
// Invalidate.
type Engine struct {
	graph       *callgraph.Graph
	sensitivity FunctionSensitivity

	mu    sync.Mutex
	cache *lru
}

// NewEngine creates a reachability Engine with a cache of the given
// capacity (0 disables caching).
func NewEngine(graph *callgraph.Graph, sensitivity FunctionSensitivity, cacheCapacity int) *Engine {
	return &Engine{graph: graph, sensitivity: sensitivity, cache: newLRU(cacheCapacity)}
}

// Invalidate clears the reachability cache; call on any call-graph
// mutation (file add/remove/edge change).
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache.clear()
}

// Query runs a single-root reachability query, using the cache when
// possible.
func (e *Engine) Query(root callgraph.FunctionID, direction Direction, maxDepth int) Result {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	key := cacheKey{root: root, direction: direction, maxDepth: maxDepth}

	e.mu.Lock()
	if cached, ok := e.cache.get(key); ok {
		e.mu.Unlock()
		return cached
	}
	e.mu.Unlock()

	var rr callgraph.ReachabilityResult
	if direction == DirectionForward {
		rr = e.graph.Forward([]callgraph.FunctionID{root}, maxDepth)
	} else {
		rr = e.graph.Inverse([]callgraph.FunctionID{root}, maxDepth)
	}

	result := Result{Reached: rr.Reached, MaxDepth: rr.MaxDepth, Saturated: rr.Saturated}
	for fn := range rr.Reached {
		if s := e.sensitivity[fn]; s > result.MaxSensitivity {
			result.MaxSensitivity = s
		}
	}

	e.mu.Lock()
	e.cache.put(key, result)
	e.mu.Unlock()
	return result
}

// FindPath runs BFS with predecessor recording from root toward target,
// returning the path of function IDs (root first, target last) or nil if
// unreachable within maxDepth.
func (e *Engine) FindPath(root, target callgraph.FunctionID, direction Direction, maxDepth int) []callgraph.FunctionID {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	predecessor := map[callgraph.FunctionID]callgraph.FunctionID{root: root}
	depth := map[callgraph.FunctionID]int{root: 0}
	queue := []callgraph.FunctionID{root}

	neighbors := func(id callgraph.FunctionID) []callgraph.FunctionID {
		var r callgraph.ReachabilityResult
		if direction == DirectionForward {
			r = e.graph.Forward([]callgraph.FunctionID{id}, 1)
		} else {
			r = e.graph.Inverse([]callgraph.FunctionID{id}, 1)
		}
		var out []callgraph.FunctionID
		for fn, d := range r.Reached {
			if d == 1 {
				out = append(out, fn)
			}
		}
		return out
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == target {
			return reconstructPath(predecessor, root, target)
		}
		if depth[cur] >= maxDepth {
			continue
		}
		for _, next := range neighbors(cur) {
			if _, seen := depth[next]; seen {
				continue
			}
			depth[next] = depth[cur] + 1
			predecessor[next] = cur
			queue = append(queue, next)
		}
	}
	return nil
}

func reconstructPath(predecessor map[callgraph.FunctionID]callgraph.FunctionID, root, target callgraph.FunctionID) []callgraph.FunctionID {
	var path []callgraph.FunctionID
	cur := target
	for {
		path = append([]callgraph.FunctionID{cur}, path...)
		if cur == root {
			return path
		}
		prev, ok := predecessor[cur]
		if !ok || prev == cur && cur != root {
			return nil
		}
		if prev == cur {
			return path
		}
		cur = prev
	}
}

// lru is a tiny fixed-capacity least-recently-used cache: a hit in get
// moves the key to the most-recent end of order, and a put of a new key
// past capacity evicts the least recently used one. The linear scan of
// order is adequate at the scale reachability queries run (tens to low
// hundreds of distinct (root, direction, depth) keys per scan).
type lru struct {
	capacity int
	order    []cacheKey
	values   map[cacheKey]Result
}

func newLRU(capacity int) *lru {
	return &lru{capacity: capacity, values: make(map[cacheKey]Result)}
}

func (c *lru) get(k cacheKey) (Result, bool) {
	if c.capacity <= 0 {
		return Result{}, false
	}
	v, ok := c.values[k]
	if ok {
		for i, o := range c.order {
			if o == k {
				c.order = append(append(c.order[:i:i], c.order[i+1:]...), k)
				break
			}
		}
	}
	return v, ok
}

func (c *lru) put(k cacheKey, v Result) {
	if c.capacity <= 0 {
		return
	}
	if _, exists := c.values[k]; !exists {
		c.order = append(c.order, k)
		if len(c.order) > c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.values, oldest)
		}
	}
	c.values[k] = v
}

func (c *lru) clear() {
	c.order = nil
	c.values = make(map[cacheKey]Result)
}
