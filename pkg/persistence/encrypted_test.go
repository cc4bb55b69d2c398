package persistence

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

func testKey() []byte {
	return []byte("01234567890123456789012345678901") // 32 bytes
}

func TestNewEncryptedStoreRejectsShortKey(t *testing.T) {
	_, err := NewEncryptedStore(NewMemoryStore(), []byte("too-short"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestEncryptedStoreRoundTripsNodeText(t *testing.T) {
	inner := NewMemoryStore()
	enc, err := NewEncryptedStore(inner, testKey())
	require.NoError(t, err)
	ctx := context.Background()

	node := &graph.Node{ID: "Checkout.MOD.001", Kind: ontology.KindModule, Name: "Checkout", Description: "handles checkout"}
	_, err = enc.SaveGraph(ctx, "ws1", "sys1", []*graph.Node{node}, nil)
	require.NoError(t, err)

	nodes, _, err := enc.LoadGraph(ctx, "ws1", "sys1")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Checkout", nodes[0].Name)
	assert.Equal(t, "handles checkout", nodes[0].Description)
}

func TestEncryptedStorePersistsCiphertextNotPlaintext(t *testing.T) {
	inner := NewMemoryStore()
	enc, err := NewEncryptedStore(inner, testKey())
	require.NoError(t, err)
	ctx := context.Background()

	node := &graph.Node{ID: "Checkout.MOD.001", Kind: ontology.KindModule, Name: "SecretName"}
	_, err = enc.SaveGraph(ctx, "ws1", "sys1", []*graph.Node{node}, nil)
	require.NoError(t, err)

	rawNodes, _, err := inner.LoadGraph(ctx, "ws1", "sys1")
	require.NoError(t, err)
	require.Len(t, rawNodes, 1)
	assert.NotEqual(t, "SecretName", rawNodes[0].Name)
	assert.False(t, strings.Contains(rawNodes[0].Name, "SecretName"))
}

func TestEncryptedStoreSessionChatIDRoundTrips(t *testing.T) {
	enc, err := NewEncryptedStore(NewMemoryStore(), testKey())
	require.NoError(t, err)
	ctx := context.Background()

	session := &Session{UserID: "user-1", WorkspaceID: "ws1", ActiveSystemID: "sys1", ChatID: "secret-thread"}
	require.NoError(t, enc.SaveSession(ctx, session))

	loaded, err := enc.LoadSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "secret-thread", loaded.ChatID)
}

func TestEncryptedStoreWrongKeyFailsToDecrypt(t *testing.T) {
	inner := NewMemoryStore()
	ctx := context.Background()

	encA, err := NewEncryptedStore(inner, testKey())
	require.NoError(t, err)
	node := &graph.Node{ID: "X.MOD.001", Kind: ontology.KindModule, Name: "X"}
	_, err = encA.SaveGraph(ctx, "ws1", "sys1", []*graph.Node{node}, nil)
	require.NoError(t, err)

	encB, err := NewEncryptedStore(inner, []byte("99999999999999999999999999999999"))
	require.NoError(t, err)
	_, _, err = encB.LoadGraph(ctx, "ws1", "sys1")
	assert.Error(t, err)
}
