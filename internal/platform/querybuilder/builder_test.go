package querybuilder

import (
	"errors"
	"testing"

	"github.com/riskibarqy/competition-manager/internal/platform/datastore"
)

func TestSelect(t *testing.T) {
	stmt, err := Select("competitions", datastore.Query{
		Filters: []datastore.Filter{datastore.Eq("user_id", "u1")},
		Order:   &datastore.Order{Column: "created_at", Descending: true},
	})
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT * FROM competitions WHERE user_id = $1 ORDER BY created_at DESC"
	if stmt.SQL != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, stmt.SQL)
	}
	if len(stmt.Args) != 1 || stmt.Args[0] != "u1" {
		t.Fatalf("unexpected args: %+v", stmt.Args)
	}
}

func TestSelect_NilEqualityBecomesIsNull(t *testing.T) {
	stmt, err := Select("games", datastore.Query{Filters: []datastore.Filter{
		datastore.Eq("winner_id", nil),
		datastore.Eq("competicao_id", "c1"),
	}})
	if err != nil {
		t.Fatalf("build select: %v", err)
	}
	if stmt.SQL != "SELECT * FROM games WHERE winner_id IS NULL AND competicao_id = $1" {
		t.Fatalf("unexpected query: %s", stmt.SQL)
	}
	if len(stmt.Args) != 1 || stmt.Args[0] != "c1" {
		t.Fatalf("unexpected args: %+v", stmt.Args)
	}
}

func TestInsert_SortsColumns(t *testing.T) {
	stmt, err := Insert("players", datastore.Row{"user_id": "u1", "nome": "Ana"})
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}

	want := "INSERT INTO players (nome, user_id) VALUES ($1, $2) RETURNING *"
	if stmt.SQL != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, stmt.SQL)
	}
	if len(stmt.Args) != 2 || stmt.Args[0] != "Ana" || stmt.Args[1] != "u1" {
		t.Fatalf("unexpected args: %+v", stmt.Args)
	}
}

func TestUpdate_NumbersSetBeforeWhere(t *testing.T) {
	stmt, err := Update("competitions",
		datastore.Row{"name": "Copa", "updated_at": "2026-10-14T00:00:00Z"},
		[]datastore.Filter{datastore.Eq("id", "c1")},
	)
	if err != nil {
		t.Fatalf("build update: %v", err)
	}

	want := "UPDATE competitions SET name = $1, updated_at = $2 WHERE id = $3 RETURNING *"
	if stmt.SQL != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, stmt.SQL)
	}
	if len(stmt.Args) != 3 || stmt.Args[0] != "Copa" || stmt.Args[2] != "c1" {
		t.Fatalf("unexpected args: %+v", stmt.Args)
	}
}

func TestDelete(t *testing.T) {
	stmt, err := Delete("matches", []datastore.Filter{datastore.Eq("game_id", "g1")})
	if err != nil {
		t.Fatalf("build delete: %v", err)
	}
	if stmt.SQL != "DELETE FROM matches WHERE game_id = $1" || len(stmt.Args) != 1 {
		t.Fatalf("unexpected delete: %s %+v", stmt.SQL, stmt.Args)
	}
}

func TestRejectsInvalidStatements(t *testing.T) {
	cases := map[string]func() error{
		"table": func() error {
			_, err := Select("players; drop table players", datastore.Query{})
			return err
		},
		"order column": func() error {
			_, err := Select("players", datastore.Query{Order: &datastore.Order{Column: "1; select"}})
			return err
		},
		"empty insert": func() error {
			_, err := Insert("players", datastore.Row{})
			return err
		},
		"unfiltered update": func() error {
			_, err := Update("players", datastore.Row{"nome": "x"}, nil)
			return err
		},
		"unfiltered delete": func() error {
			_, err := Delete("players", nil)
			return err
		},
	}
	for name, build := range cases {
		if err := build(); !errors.Is(err, ErrInvalidStatement) {
			t.Fatalf("%s: expected ErrInvalidStatement, got %v", name, err)
		}
	}
}
