package audit

import (
	"strings"
	"testing"

	"github.com/roofmetrics/roofcalc/internal/model"
)

func TestAppend_RecordsEntryFields(t *testing.T) {
	trail := NewTrail()
	entry := trail.Append(model.AuditCreate, "user-1", "session-1", "Started measurement")

	if entry.ID == "" || len(entry.ID) != 8 {
		t.Errorf("expected 8-character entry ID, got %q", entry.ID)
	}
	if entry.Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}
	if entry.Action != model.AuditCreate {
		t.Errorf("expected create action, got %s", entry.Action)
	}
	if entry.UserID != "user-1" || entry.SessionID != "session-1" {
		t.Errorf("unexpected identity fields: %s / %s", entry.UserID, entry.SessionID)
	}
	if entry.DataHash != HashDescription("Started measurement") {
		t.Error("data hash does not match description digest")
	}
	if trail.Len() != 1 {
		t.Errorf("expected trail length 1, got %d", trail.Len())
	}
}

func TestAppend_PreservesOrder(t *testing.T) {
	trail := NewTrail()
	trail.Append(model.AuditCreate, "u", "s", "first")
	trail.Append(model.AuditModify, "u", "s", "second")
	trail.Append(model.AuditExport, "u", "s", "third")

	entries := trail.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"first", "second", "third"} {
		if entries[i].Description != want {
			t.Errorf("entry %d: expected %q, got %q", i, want, entries[i].Description)
		}
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.Before(entries[i-1].Timestamp) {
			t.Errorf("entry %d timestamp precedes entry %d", i, i-1)
		}
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	trail := NewTrail()
	trail.Append(model.AuditCreate, "u", "s", "original")

	entries := trail.Entries()
	entries[0].Description = "tampered"

	if trail.Entries()[0].Description != "original" {
		t.Error("mutating the returned slice must not affect the trail")
	}
}

func TestHashDescription_IsHexSHA256(t *testing.T) {
	sum := HashDescription("hello")
	if len(sum) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(sum))
	}
	if sum != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("unexpected digest for 'hello': %s", sum)
	}
	if HashDescription("hello") != sum {
		t.Error("digest must be deterministic")
	}
	if HashDescription("hello!") == sum {
		t.Error("different descriptions must not collide")
	}
}

func TestVerify_DetectsTampering(t *testing.T) {
	trail := NewTrail()
	trail.Append(model.AuditCreate, "u", "s", "Started measurement")
	trail.Append(model.AuditModify, "u", "s", "Completed measurement")

	entries := trail.Entries()
	if err := Verify(entries); err != nil {
		t.Fatalf("unmodified trail must verify: %v", err)
	}

	entries[1].Description = "Completed measurement (edited)"
	err := Verify(entries)
	if err == nil {
		t.Fatal("expected verification failure after tampering")
	}
	if !strings.Contains(err.Error(), "entry 1") {
		t.Errorf("error should name the failing entry: %v", err)
	}
}

func TestVerify_EmptyTrail(t *testing.T) {
	if err := Verify(nil); err != nil {
		t.Errorf("empty trail must verify: %v", err)
	}
}
