package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/typerace/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "typerace.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func insertRaces(t *testing.T, st *Store, places ...int) []string {
	t.Helper()
	ctx := context.Background()
	var ids []string
	for i, place := range places {
		start := time.Unix(0, 0).UTC().Add(time.Duration(i) * time.Hour)
		id, err := st.InsertRace(ctx, model.RaceRecord{
			StartedAt:      start,
			EndedAt:        start.Add(40 * time.Second),
			PassageChars:   150,
			Opponents:      3,
			WPM:            50 + i,
			Accuracy:       95,
			Errors:         2,
			ElapsedSeconds: 40,
			Place:          place,
			Winner:         "You",
			Finished:       place == 1,
		})
		if err != nil {
			t.Fatalf("insert race: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestInsertAndListRaces(t *testing.T) {
	st := openTestStore(t)
	ids := insertRaces(t, st, 1, 3, 2)
	if ids[0] == "" || ids[0] == ids[1] {
		t.Fatalf("expected unique generated ids, got %v", ids)
	}

	races, err := st.ListRaces(context.Background(), model.StatsConfig{})
	if err != nil {
		t.Fatalf("list races: %v", err)
	}
	if len(races) != 3 {
		t.Fatalf("expected 3 races, got %d", len(races))
	}
	first := races[0]
	if first.ID != ids[0] || first.WPM != 50 || !first.Finished || first.Place != 1 {
		t.Fatalf("unexpected first race: %+v", first)
	}
	if first.EndedAt.Sub(first.StartedAt) != 40*time.Second {
		t.Fatalf("expected timestamps to round-trip, got %+v", first)
	}
}

func TestListRacesFilters(t *testing.T) {
	st := openTestStore(t)
	ids := insertRaces(t, st, 1, 2, 3, 4)

	races, err := st.ListRaces(context.Background(), model.StatsConfig{Last: 2})
	if err != nil {
		t.Fatalf("list races: %v", err)
	}
	if len(races) != 2 || races[0].ID != ids[2] || races[1].ID != ids[3] {
		t.Fatalf("expected last two races, got %+v", races)
	}

	since := time.Unix(0, 0).UTC().Add(90 * time.Minute)
	races, err = st.ListRaces(context.Background(), model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list races: %v", err)
	}
	if len(races) != 2 || races[0].ID != ids[2] {
		t.Fatalf("expected races after since, got %+v", races)
	}
}

func TestPlaceCounts(t *testing.T) {
	st := openTestStore(t)
	insertRaces(t, st, 1, 1, 2, 4)
	counts, err := st.PlaceCounts(context.Background())
	if err != nil {
		t.Fatalf("place counts: %v", err)
	}
	if counts[1] != 2 || counts[2] != 1 || counts[4] != 1 || counts[3] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}
