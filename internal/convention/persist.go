package convention

import (
	"github.com/coderift/drift/internal/ids"
	"github.com/coderift/drift/internal/store"
)

// Persist flushes one gene's lifecycle state through the store's batch
// ingest channel into the conventions table (spec §4.12, §6). patternID
// and scope identify the underlying aggregated pattern this gene tracks;
// discoveredAt/lastSeen are Unix timestamps the caller maintains across
// scans since a Gene itself carries only DaysSinceSeen, not wall-clock time.
func Persist(s *store.Store, patternID ids.PatternID, scope string, g *Gene, discoveredAt, lastSeen int64) {
	dominance := 0.0
	if len(g.PosteriorMeans) > 0 {
		_, dominance = dominantAllele(g.PosteriorMeans)
	}
	s.Ingest(store.Batch{Rows: []store.Row{{
		SQL: `INSERT INTO conventions (id, pattern_id, category, scope, dominance, discovered_at, last_seen, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET category=excluded.category, scope=excluded.scope,
			dominance=excluded.dominance, last_seen=excluded.last_seen, status=excluded.status`,
		Args: []any{g.ID, int64(patternID), string(g.Category), scope, dominance, discoveredAt, lastSeen, string(g.Status)},
	}}})
}
