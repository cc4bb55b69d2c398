package rules

import (
	"fmt"

	"github.com/archlens/sysmodel/pkg/cache"
	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

// CachedEvaluator memoizes Evaluate results keyed by a store's version
// and the requested phase, so repeated evaluations of an unchanged
// graph (e.g. successive optimizer search iterations that end up back
// at a previously-seen variant, or a UI re-rendering gate status after
// an unrelated read) skip the full rule-catalog sweep.
type CachedEvaluator struct {
	cache *cache.QueryCache
}

// NewCachedEvaluator wraps a cache.QueryCache sized and TTL'd per
// config.CacheConfig. A nil cache disables memoization and every call
// falls through to Evaluate.
func NewCachedEvaluator(c *cache.QueryCache) *CachedEvaluator {
	return &CachedEvaluator{cache: c}
}

// Evaluate returns store's rule-evaluation Result for phase, serving
// it from cache when store's version and phase match a prior call and
// recomputing (then caching) otherwise. A store mutation bumps its
// version (graph.Store.bump), so a stale cache entry is never served
// for a changed graph.
func (e *CachedEvaluator) Evaluate(store *graph.Store, phase ontology.Phase) Result {
	if e == nil || e.cache == nil {
		return Evaluate(store, phase)
	}

	key := e.cache.Key(cacheKeyQuery(store, phase), nil)
	if cached, ok := e.cache.Get(key); ok {
		if result, ok := cached.(Result); ok {
			return result
		}
	}

	result := Evaluate(store, phase)
	e.cache.Put(key, result)
	return result
}

func cacheKeyQuery(store *graph.Store, phase ontology.Phase) string {
	return fmt.Sprintf("%s/%s@%d#%s", store.WorkspaceID(), store.SystemID(), store.Version(), phase)
}
