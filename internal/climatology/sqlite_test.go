package climatology

import (
	"context"
	"errors"
	"math"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	probs := []float64{0.1, 0.9, 0.5, 0.0, 1.0}
	st, err := store.UpsertStation(ctx, "vancouver", probs)
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if st.ID == "" {
		t.Error("expected a generated station ID")
	}
	if st.Days != len(probs) {
		t.Errorf("expected %d days, got %d", len(probs), st.Days)
	}

	got, err := store.GetDailyProbabilities(ctx, "vancouver")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got) != len(probs) {
		t.Fatalf("expected %d probabilities, got %d", len(probs), len(got))
	}
	for i := range probs {
		if math.Abs(got[i]-probs[i]) > 1e-15 {
			t.Errorf("day %d: expected %v, got %v", i, probs[i], got[i])
		}
	}
}

func TestSQLiteStoreUpsertReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertStation(ctx, "seattle", []float64{0.5, 0.5, 0.5})
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	second, err := store.UpsertStation(ctx, "seattle", []float64{0.25, 0.75})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("upsert changed station ID from %s to %s", first.ID, second.ID)
	}

	got, err := store.GetDailyProbabilities(ctx, "seattle")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got) != 2 || got[0] != 0.25 || got[1] != 0.75 {
		t.Errorf("expected replaced vector [0.25 0.75], got %v", got)
	}
}

func TestSQLiteStoreListStations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"victoria", "burnaby", "richmond"} {
		if _, err := store.UpsertStation(ctx, name, []float64{0.4}); err != nil {
			t.Fatalf("upsert %s failed: %v", name, err)
		}
	}

	stations, err := store.ListStations(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(stations) != 3 {
		t.Fatalf("expected 3 stations, got %d", len(stations))
	}
	// Ordered by name.
	for i, want := range []string{"burnaby", "richmond", "victoria"} {
		if stations[i].Name != want {
			t.Errorf("station %d: expected %s, got %s", i, want, stations[i].Name)
		}
	}
}

func TestSQLiteStoreUnknownStation(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetStation(context.Background(), "atlantis"); !errors.Is(err, ErrStationNotFound) {
		t.Errorf("expected ErrStationNotFound, got %v", err)
	}
	if _, err := store.GetDailyProbabilities(context.Background(), "atlantis"); !errors.Is(err, ErrStationNotFound) {
		t.Errorf("expected ErrStationNotFound, got %v", err)
	}
}
