package semid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens/sysmodel/pkg/ontology"
)

func TestExtract(t *testing.T) {
	reg := ontology.LoadDefault()

	ext, err := Extract(reg, "ValidateInput.FN.001")
	require.NoError(t, err)
	assert.Equal(t, "ValidateInput", ext.Name)
	assert.Equal(t, ontology.KindFunc, ext.Kind)
}

func TestExtractRejectsUnknownAbbreviation(t *testing.T) {
	reg := ontology.LoadDefault()
	_, err := Extract(reg, "Thing.ZZ.001")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedSemanticID)
}

func TestExtractRejectsMissingDots(t *testing.T) {
	reg := ontology.LoadDefault()

	t.Run("no dots", func(t *testing.T) {
		_, err := Extract(reg, "JustAName")
		assert.ErrorIs(t, err, ErrMalformedSemanticID)
	})

	t.Run("one dot", func(t *testing.T) {
		_, err := Extract(reg, "Name.FN")
		assert.ErrorIs(t, err, ErrMalformedSemanticID)
	})
}

func TestGenerateProducesExtractableID(t *testing.T) {
	reg := ontology.LoadDefault()
	id, err := Generate(reg, "Order Food!", ontology.KindFunc, map[string]struct{}{})
	require.NoError(t, err)

	ext, err := Extract(reg, id)
	require.NoError(t, err)
	assert.Equal(t, "OrderFood", ext.Name)
	assert.Equal(t, ontology.KindFunc, ext.Kind)
}

func TestGenerateCapsNameLength(t *testing.T) {
	reg := ontology.LoadDefault()
	long := ""
	for i := 0; i < 100; i++ {
		long += "a"
	}
	id, err := Generate(reg, long, ontology.KindFunc, map[string]struct{}{})
	require.NoError(t, err)

	ext, err := Extract(reg, id)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(ext.Name), maxNameLength)
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	reg := ontology.LoadDefault()
	id, err := Generate(reg, "Hub", ontology.KindFunc, map[string]struct{}{})
	require.NoError(t, err)

	existing := map[string]struct{}{id: {}}
	id2, err := Generate(reg, "Hub", ontology.KindFunc, existing)
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)
}

func TestEdgeID(t *testing.T) {
	id := EdgeID("A.FN.001", ontology.EdgeIO, "B.FL.002")
	assert.Equal(t, "A.FN.001-io-B.FL.002", id)
}
