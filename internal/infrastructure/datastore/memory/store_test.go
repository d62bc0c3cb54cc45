package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/competition-manager/internal/platform/datastore"
	"github.com/riskibarqy/competition-manager/internal/usecase"
)

type sequenceIDs struct {
	next int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.next++
	return "id-" + string(rune('0'+g.next)), nil
}

func TestStore_InsertGeneratesIDAndSelectFilters(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&sequenceIDs{})

	inserted, err := store.Insert(ctx, "players", []datastore.Row{
		{"nome": "Ana", "user_id": "u1"},
		{"nome": "Bruno", "user_id": "u2"},
	})
	if err != nil {
		t.Fatalf("insert players: %v", err)
	}
	if len(inserted) != 2 || inserted[0]["id"] != "id-1" {
		t.Fatalf("unexpected inserted rows: %+v", inserted)
	}

	rows, err := store.Select(ctx, "players", datastore.Query{Filters: []datastore.Filter{datastore.Eq("user_id", "u2")}})
	if err != nil {
		t.Fatalf("select players: %v", err)
	}
	if len(rows) != 1 || rows[0]["nome"] != "Bruno" {
		t.Fatalf("unexpected filtered rows: %+v", rows)
	}
}

func TestStore_SelectOrdersDescending(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	base := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

	_, err := store.Insert(ctx, "competitions", []datastore.Row{
		{"id": "old", "created_at": base},
		{"id": "new", "created_at": base.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("insert competitions: %v", err)
	}

	rows, err := store.Select(ctx, "competitions", datastore.Query{Order: &datastore.Order{Column: "created_at", Descending: true}})
	if err != nil {
		t.Fatalf("select competitions: %v", err)
	}
	if len(rows) != 2 || rows[0]["id"] != "new" {
		t.Fatalf("expected newest first, got %+v", rows)
	}
}

func TestStore_UpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	if _, err := store.Insert(ctx, "players", []datastore.Row{{"id": "p1", "nome": "Ana", "apelido": "A"}}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rows, err := store.Update(ctx, "players", datastore.Row{"apelido": "Aninha"}, []datastore.Filter{datastore.Eq("id", "p1")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(rows) != 1 || rows[0]["nome"] != "Ana" || rows[0]["apelido"] != "Aninha" {
		t.Fatalf("unexpected updated row: %+v", rows)
	}

	rows, err = store.Update(ctx, "players", datastore.Row{"apelido": "x"}, []datastore.Filter{datastore.Eq("id", "missing")})
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no affected rows, got %+v", rows)
	}
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	if _, err := store.Insert(ctx, "games", []datastore.Row{{"id": "g1"}}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := store.Delete(ctx, "games", []datastore.Filter{datastore.Eq("id", "g1")}); err != nil {
			t.Fatalf("delete attempt %d: %v", i+1, err)
		}
	}
	rows, _ := store.Select(ctx, "games", datastore.Query{})
	if len(rows) != 0 {
		t.Fatalf("expected empty table, got %+v", rows)
	}
}

func TestStore_RejectsDuplicateIDAndUnfilteredDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	if _, err := store.Insert(ctx, "games", []datastore.Row{{"id": "g1"}}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := store.Insert(ctx, "games", []datastore.Row{{"id": "g1"}}); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for duplicate id, got %v", err)
	}
	if err := store.Delete(ctx, "games", nil); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unfiltered delete, got %v", err)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	inserted, err := store.Insert(ctx, "players", []datastore.Row{{"id": "p1", "nome": "Ana"}})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	inserted[0]["nome"] = "mutated"

	rows, _ := store.Select(ctx, "players", datastore.Query{})
	if rows[0]["nome"] != "Ana" {
		t.Fatalf("store row was mutated through returned copy: %+v", rows[0])
	}
}
