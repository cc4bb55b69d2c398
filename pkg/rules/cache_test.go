package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens/sysmodel/pkg/cache"
	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

func TestCachedEvaluatorReturnsSameResultOnHit(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.AddNode(&graph.Node{ID: "Lonely.SY.001", Kind: ontology.KindSystem, Name: "Lonely", Description: "d"}))

	ce := NewCachedEvaluator(cache.NewQueryCache(10, time.Minute))
	first := ce.Evaluate(s, ontology.PhaseVerification)
	second := ce.Evaluate(s, ontology.PhaseVerification)
	assert.Equal(t, first, second)
}

func TestCachedEvaluatorRecomputesAfterMutation(t *testing.T) {
	s := newStore(t)
	ce := NewCachedEvaluator(cache.NewQueryCache(10, time.Minute))

	before := ce.Evaluate(s, ontology.PhaseVerification)
	assert.Equal(t, 1.0, before.RewardScore)

	require.NoError(t, s.AddNode(&graph.Node{ID: "Lonely.SY.001", Kind: ontology.KindSystem, Name: "Lonely", Description: "d"}))
	after := ce.Evaluate(s, ontology.PhaseVerification)
	assert.Len(t, after.Violations, 1)
}

func TestCachedEvaluatorWithNilCacheFallsThrough(t *testing.T) {
	s := newStore(t)
	ce := NewCachedEvaluator(nil)
	result := ce.Evaluate(s, ontology.PhaseAll)
	assert.Equal(t, 1.0, result.RewardScore)
}
