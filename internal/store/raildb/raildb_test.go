package raildb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MaghsoodSalimi/train-delay-simulator/internal/config"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "rail.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	return db
}

func seed(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	for _, s := range []model.Station{
		{Code: "THR", Lat: 35.7, Long: 51.4},
		{Code: "MHD", Lat: 36.3, Long: 59.6},
	} {
		if err := db.InsertStation(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	for _, d := range []model.Departure{
		{TrainID: "T100", Origin: "THR", Destination: "MHD", Hour: 8, DelayMin: 12},
		{TrainID: "T101", Origin: "MHD", Destination: "THR", Hour: 23, DelayMin: -5},
	} {
		if err := db.InsertDeparture(ctx, d); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoadDeparturesJoinsCoordinates(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	deps, err := db.LoadDepartures(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 2 {
		t.Fatalf("loaded %d departures, want 2", len(deps))
	}
	var out *model.Departure
	for i := range deps {
		if deps[i].TrainID == "T100" {
			out = &deps[i]
		}
	}
	if out == nil {
		t.Fatal("T100 missing")
	}
	if out.OriginLat != 35.7 || out.DestLong != 59.6 {
		t.Fatalf("join did not attach coordinates: %+v", out)
	}
}

func TestLoadDeparturesCleansNegativeDelay(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	deps, err := db.LoadDepartures(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range deps {
		if d.DelayMin < 0 {
			t.Fatalf("departure %s kept negative delay %v", d.TrainID, d.DelayMin)
		}
	}
}

func TestLoadDeparturesSkipsUnknownStations(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	ctx := context.Background()
	if err := db.InsertDeparture(ctx, model.Departure{TrainID: "T999", Origin: "ZZZ", Destination: "THR", Hour: 1, DelayMin: 3}); err != nil {
		t.Fatal(err)
	}
	deps, err := db.LoadDepartures(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range deps {
		if d.TrainID == "T999" {
			t.Fatal("departure with unknown origin survived the inner join")
		}
	}
}

func TestLoadStation(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	s, err := db.LoadStation(context.Background(), "THR")
	if err != nil {
		t.Fatal(err)
	}
	if s.Code != "THR" || s.Lat != 35.7 {
		t.Fatalf("unexpected station: %+v", s)
	}
	if _, err := db.LoadStation(context.Background(), "NOPE"); err == nil {
		t.Fatal("expected error for missing station")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
