package service

import (
	"errors"
	"testing"

	"github.com/simfon/fate-pbc-rpg/internal/models"
)

func TestLocationCreate_LinksBack(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewLocationService(gdb)

	piazza := mkLocation(t, gdb, "Piazza")

	taverna, err := svc.Create(LocationInput{
		Name:        "Taverna",
		Description: "Una taverna fumosa",
		SouthID:     uintPtr(piazza.ID),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if taverna.SouthID == nil || *taverna.SouthID != piazza.ID {
		t.Errorf("Create() SouthID = %v, want %d", taverna.SouthID, piazza.ID)
	}

	got, err := svc.Get(piazza.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.NorthID == nil || *got.NorthID != taverna.ID {
		t.Errorf("neighbor NorthID = %v, want %d (inverse edge written back)", got.NorthID, taverna.ID)
	}
}

func TestLocationCreate_Validation(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewLocationService(gdb)

	tests := []struct {
		name string
		in   LocationInput
	}{
		{"missing name", LocationInput{Description: "d"}},
		{"missing description", LocationInput{Name: "n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.in)
			if _, ok := AsValidation(err); !ok {
				t.Errorf("Create() error = %v, want validation error", err)
			}
		})
	}
}

func TestLocationUpdate_RewiresEdges(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewLocationService(gdb)

	a := mkLocation(t, gdb, "A")
	b := mkLocation(t, gdb, "B")
	c := mkLocation(t, gdb, "C")

	// A --north--> B
	err := svc.Update(a.ID, LocationInput{
		Name:        "A",
		Description: "descrizione di A",
		NorthID:     uintPtr(b.ID),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got, _ := svc.Get(b.ID); got.SouthID == nil || *got.SouthID != a.ID {
		t.Fatalf("B.SouthID = %v, want %d", got.SouthID, a.ID)
	}

	// ricollega A verso C: B deve perdere l'arco di ritorno
	err = svc.Update(a.ID, LocationInput{
		Name:        "A",
		Description: "descrizione di A",
		NorthID:     uintPtr(c.ID),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got, _ := svc.Get(b.ID); got.SouthID != nil {
		t.Errorf("B.SouthID = %v, want nil after rewire", *got.SouthID)
	}
	if got, _ := svc.Get(c.ID); got.SouthID == nil || *got.SouthID != a.ID {
		t.Errorf("C.SouthID = %v, want %d", got.SouthID, a.ID)
	}
}

func TestLocationUpdate_NotFound(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewLocationService(gdb)

	err := svc.Update(999, LocationInput{Name: "X", Description: "d"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestLocationDelete_RelocatesAndUnlinks(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewLocationService(gdb)

	fallback := mkLocation(t, gdb, "Piazza") // id 1
	if fallback.ID != FallbackLocationID {
		t.Fatalf("fallback location id = %d, want %d", fallback.ID, FallbackLocationID)
	}
	doomed := mkLocation(t, gdb, "Cripta")
	neighbor := mkLocation(t, gdb, "Tempio")

	// neighbor --east--> doomed
	err := svc.Update(neighbor.ID, LocationInput{
		Name:        "Tempio",
		Description: "descrizione di Tempio",
		EastID:      uintPtr(doomed.ID),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	user := mkUser(t, gdb, "aria", models.RolePlayer)
	ch := mkCharacter(t, gdb, user.ID, doomed.ID, "Corvo")

	if err := svc.Delete(doomed.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var moved models.Character
	if err := gdb.First(&moved, ch.ID).Error; err != nil {
		t.Fatalf("reload character: %v", err)
	}
	if moved.CurrentLocationID != FallbackLocationID {
		t.Errorf("CurrentLocationID = %d, want %d", moved.CurrentLocationID, FallbackLocationID)
	}

	got, err := svc.Get(neighbor.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.EastID != nil {
		t.Errorf("neighbor EastID = %v, want nil after delete", *got.EastID)
	}

	if _, err := svc.Get(doomed.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestLocationConnections(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewLocationService(gdb)

	a := mkLocation(t, gdb, "A")
	b := mkLocation(t, gdb, "B")

	err := svc.Update(a.ID, LocationInput{
		Name:        "A",
		Description: "descrizione di A",
		WestID:      uintPtr(b.ID),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	loc, _ := svc.Get(a.ID)
	conns, err := svc.Connections(loc)
	if err != nil {
		t.Fatalf("Connections() error = %v", err)
	}
	if conns["west"] == nil || conns["west"].Name != "B" {
		t.Errorf("Connections()[west] = %v, want B", conns["west"])
	}
	for _, dir := range []string{"north", "south", "east"} {
		if conns[dir] != nil {
			t.Errorf("Connections()[%s] = %v, want nil", dir, conns[dir])
		}
	}
}
