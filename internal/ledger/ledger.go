// Package ledger persists per-conversation activation state.
//
// One JSON file per conversation. Reads are tolerant: a missing or
// corrupt file yields a zero state so the turn proceeds with full
// capacity. Writes replace the whole file atomically (write-to-temp,
// rename); overlapping writers resolve last-writer-wins with no merge.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/flexigpt/skillrouter-go/spec"
)

// File stores one ledger file per conversation under dir.
type File struct {
	dir string
}

func NewFile(dir string) *File {
	return &File{dir: dir}
}

func (l *File) Read(id spec.ConversationID) (spec.LedgerState, error) {
	if strings.TrimSpace(string(id)) == "" {
		return spec.LedgerState{}, spec.ErrConversationRequired
	}

	b, err := os.ReadFile(l.path(id))
	if err != nil {
		// Missing is the common first-turn case; unreadable degrades the
		// same way per the error taxonomy.
		return spec.LedgerState{}, nil
	}

	var st spec.LedgerState
	if err := json.Unmarshal(b, &st); err != nil {
		return spec.LedgerState{}, nil
	}
	st.Activated = dedupe(st.Activated)
	return st, nil
}

func (l *File) Write(id spec.ConversationID, st spec.LedgerState) error {
	if strings.TrimSpace(string(id)) == "" {
		return spec.ErrConversationRequired
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}

	st.Activated = dedupe(st.Activated)
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now().UTC()
	}

	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	// Atomic replace: a crash mid-write never leaves a partial ledger
	// visible to the next turn.
	tmp, err := os.CreateTemp(l.dir, ".ledger-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, l.path(id)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (l *File) path(id spec.ConversationID) string {
	return filepath.Join(l.dir, safeName(string(id))+".json")
}

// safeName keeps simple IDs readable on disk and hashes anything that
// could escape the ledger dir or collide across filesystems.
func safeName(id string) string {
	plain := true
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			continue
		}
		plain = false
		break
	}
	if plain && id != "" && id != "." && id != ".." && len(id) <= 128 {
		return id
	}
	sum := sha256.Sum256([]byte(id))
	return "conv-" + hex.EncodeToString(sum[:])[:16]
}

// Mem is an in-process ledger for tests and embedded callers.
type Mem struct {
	mu sync.Mutex
	m  map[spec.ConversationID]spec.LedgerState
}

func NewMem() *Mem {
	return &Mem{m: map[spec.ConversationID]spec.LedgerState{}}
}

func (l *Mem) Read(id spec.ConversationID) (spec.LedgerState, error) {
	if strings.TrimSpace(string(id)) == "" {
		return spec.LedgerState{}, spec.ErrConversationRequired
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.m[id]
	st.Activated = append([]string(nil), st.Activated...)
	return st, nil
}

func (l *Mem) Write(id spec.ConversationID, st spec.LedgerState) error {
	if strings.TrimSpace(string(id)) == "" {
		return spec.ErrConversationRequired
	}
	st.Activated = dedupe(st.Activated)
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now().UTC()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m[id] = st
	return nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
