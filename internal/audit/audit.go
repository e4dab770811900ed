// Package audit maintains the session-scoped, append-only audit trail.
// Entries are hash-annotated so that later tampering with a description is
// detectable; the hash is an integrity aid, not an access-control mechanism.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roofmetrics/roofcalc/internal/model"
)

// Trail is an append-only log of operations performed during one measurement
// session. Entries are never reordered or deleted. A Trail is not safe for
// concurrent use; one engine instance owns one Trail.
type Trail struct {
	entries []model.AuditEntry
}

// NewTrail returns an empty audit trail.
func NewTrail() *Trail {
	return &Trail{}
}

// Append records a new entry and returns it. The entry's DataHash is a
// SHA-256 digest of the description.
func (t *Trail) Append(action model.AuditAction, userID, sessionID, description string) model.AuditEntry {
	entry := model.AuditEntry{
		ID:          uuid.New().String()[:8],
		Timestamp:   time.Now(),
		Action:      action,
		UserID:      userID,
		SessionID:   sessionID,
		Description: description,
		DataHash:    HashDescription(description),
	}
	t.entries = append(t.entries, entry)
	return entry
}

// Entries returns a copy of the trail in append order.
func (t *Trail) Entries() []model.AuditEntry {
	out := make([]model.AuditEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries recorded so far.
func (t *Trail) Len() int {
	return len(t.entries)
}

// HashDescription returns the hex-encoded SHA-256 digest of a description.
func HashDescription(description string) string {
	sum := sha256.Sum256([]byte(description))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the hash of every entry's description and returns an
// error naming the first entry whose stored hash does not match.
func Verify(entries []model.AuditEntry) error {
	for i, e := range entries {
		if HashDescription(e.Description) != e.DataHash {
			return fmt.Errorf("audit entry %d (%s) failed hash verification", i, e.ID)
		}
	}
	return nil
}
