package persistence

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/archlens/sysmodel/pkg/graph"
)

// ErrInvalidKey is returned when a key of the wrong length is supplied
// to NewEncryptedStore.
var ErrInvalidKey = errors.New("persistence: encryption key must be 32 bytes (AES-256)")

// EncryptedStore decorates another Store with AES-256-GCM envelope
// encryption (§6), adapted from the reference engine's
// pkg/encryption.Encryptor and trimmed to the single encrypt/decrypt
// operation the persistence boundary needs: one fixed 32-byte key, no
// key rotation, no KMS integration (those are the reference engine's
// compliance-program concerns, out of scope here per DESIGN.md), and
// no password derivation inside the store itself (DeriveKey in keys.go
// does that separately). It encrypts the human-readable text
// that would otherwise sit in plaintext on disk or in a snapshot —
// node Name/Description, edge Label, and the session's ChatID — while
// leaving IDs, kinds, and structural fields untouched so the wrapped
// store's indexes and lookups keep working unmodified.
type EncryptedStore struct {
	inner Store
	key   []byte
}

// NewEncryptedStore wraps inner with AES-256-GCM encryption keyed by
// key, which must be exactly 32 bytes (use crypto/rand or a KDF output
// upstream — EncryptedStore does not derive keys itself).
func NewEncryptedStore(inner Store, key []byte) (*EncryptedStore, error) {
	if len(key) != 32 {
		return nil, ErrInvalidKey
	}
	return &EncryptedStore{inner: inner, key: key}, nil
}

// encryptString seals plaintext under a fresh random nonce and returns
// base64(nonce || ciphertext || tag), the same shape as the reference
// engine's Encryptor.Encrypt minus the key-version header (there is
// only ever one key here).
func (s *EncryptedStore) encryptString(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *EncryptedStore) decryptString(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("persistence: invalid ciphertext encoding: %w", err)
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("persistence: ciphertext shorter than nonce")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("persistence: decryption failed (authentication error): %w", err)
	}
	return string(plaintext), nil
}

func (s *EncryptedStore) encryptNode(n *graph.Node) (*graph.Node, error) {
	out := n.Clone()
	name, err := s.encryptString(n.Name)
	if err != nil {
		return nil, err
	}
	desc, err := s.encryptString(n.Description)
	if err != nil {
		return nil, err
	}
	out.Name, out.Description = name, desc
	return out, nil
}

func (s *EncryptedStore) decryptNode(n *graph.Node) (*graph.Node, error) {
	out := n.Clone()
	name, err := s.decryptString(n.Name)
	if err != nil {
		return nil, err
	}
	desc, err := s.decryptString(n.Description)
	if err != nil {
		return nil, err
	}
	out.Name, out.Description = name, desc
	return out, nil
}

func (s *EncryptedStore) encryptEdge(e *graph.Edge) (*graph.Edge, error) {
	out := e.Clone()
	label, err := s.encryptString(e.Label)
	if err != nil {
		return nil, err
	}
	out.Label = label
	return out, nil
}

func (s *EncryptedStore) decryptEdge(e *graph.Edge) (*graph.Edge, error) {
	out := e.Clone()
	label, err := s.decryptString(e.Label)
	if err != nil {
		return nil, err
	}
	out.Label = label
	return out, nil
}

// LoadGraph loads from inner and decrypts every node/edge's text fields.
func (s *EncryptedStore) LoadGraph(ctx context.Context, workspaceID, systemID string) ([]*graph.Node, []*graph.Edge, error) {
	nodes, edges, err := s.inner.LoadGraph(ctx, workspaceID, systemID)
	if err != nil {
		return nil, nil, err
	}

	outNodes := make([]*graph.Node, len(nodes))
	for i, n := range nodes {
		dn, err := s.decryptNode(n)
		if err != nil {
			return nil, nil, fmt.Errorf("persistence: decrypting node %q: %w", n.ID, err)
		}
		outNodes[i] = dn
	}

	outEdges := make([]*graph.Edge, len(edges))
	for i, e := range edges {
		de, err := s.decryptEdge(e)
		if err != nil {
			return nil, nil, fmt.Errorf("persistence: decrypting edge %q: %w", e.ID, err)
		}
		outEdges[i] = de
	}

	return outNodes, outEdges, nil
}

// SaveGraph encrypts every dirty node/edge's text fields and delegates
// to inner, which persists them as it normally would.
func (s *EncryptedStore) SaveGraph(ctx context.Context, workspaceID, systemID string, dirtyNodes []*graph.Node, dirtyEdges []*graph.Edge) (PersistedCounts, error) {
	encNodes := make([]*graph.Node, 0, len(dirtyNodes))
	for _, n := range dirtyNodes {
		if n == nil {
			continue
		}
		en, err := s.encryptNode(n)
		if err != nil {
			return PersistedCounts{}, fmt.Errorf("persistence: encrypting node %q: %w", n.ID, err)
		}
		encNodes = append(encNodes, en)
	}

	encEdges := make([]*graph.Edge, 0, len(dirtyEdges))
	for _, e := range dirtyEdges {
		if e == nil {
			continue
		}
		ee, err := s.encryptEdge(e)
		if err != nil {
			return PersistedCounts{}, fmt.Errorf("persistence: encrypting edge %q: %w", e.ID, err)
		}
		encEdges = append(encEdges, ee)
	}

	return s.inner.SaveGraph(ctx, workspaceID, systemID, encNodes, encEdges)
}

// LoadSession loads from inner and decrypts the ChatID field.
func (s *EncryptedStore) LoadSession(ctx context.Context, userID string) (*Session, error) {
	session, err := s.inner.LoadSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	chatID, err := s.decryptString(session.ChatID)
	if err != nil {
		return nil, fmt.Errorf("persistence: decrypting session chat id: %w", err)
	}
	session.ChatID = chatID
	return session, nil
}

// SaveSession encrypts the ChatID field and delegates to inner.
func (s *EncryptedStore) SaveSession(ctx context.Context, session *Session) error {
	if session == nil {
		return ErrInvalidID
	}
	chatID, err := s.encryptString(session.ChatID)
	if err != nil {
		return fmt.Errorf("persistence: encrypting session chat id: %w", err)
	}
	toSave := *session
	toSave.ChatID = chatID
	return s.inner.SaveSession(ctx, &toSave)
}

// Close closes the wrapped store.
func (s *EncryptedStore) Close() error {
	return s.inner.Close()
}

var _ Store = (*EncryptedStore)(nil)
