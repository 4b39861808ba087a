package selection

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/smartpark-vision/parking-monitor/pkg/types"
)

type fakeStore struct {
	areas []types.ParkingArea
	err   error
}

func (f *fakeStore) ListAreas(ctx context.Context) ([]types.ParkingArea, error) {
	return f.areas, f.err
}

func (f *fakeStore) SetAreaTotalSlots(ctx context.Context, areaID string, total int) error {
	return nil
}

func (f *fakeStore) UpsertSlotStatus(ctx context.Context, areaID string, slotNumber int, status types.SlotStatus, updatedAt time.Time) error {
	return nil
}

func (f *fakeStore) SetSystemOnline(ctx context.Context, systemID, location string, at time.Time) error {
	return nil
}

func (f *fakeStore) SetSystemOffline(ctx context.Context, systemID string) error {
	return nil
}

func testAreas() []types.ParkingArea {
	return []types.ParkingArea{
		{ID: "a1", Name: "North Lot", TotalSlots: 10, Password: "secret"},
		{ID: "a2", Name: "South Lot", TotalSlots: 4},
	}
}

func terminal(input string) *Terminal {
	return &Terminal{In: strings.NewReader(input), Out: &strings.Builder{}}
}

func TestResolveDerivesSystemID(t *testing.T) {
	st := &fakeStore{areas: testAreas()}
	choice, err := Resolve(context.Background(), st, &Fixed{AreaID: "a1"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if choice.SystemID != "parking_monitor_north_lot" {
		t.Errorf("SystemID = %q", choice.SystemID)
	}
	if choice.Area.ID != "a1" {
		t.Errorf("Area.ID = %q", choice.Area.ID)
	}
}

func TestResolveNoAreas(t *testing.T) {
	st := &fakeStore{}
	_, err := Resolve(context.Background(), st, &Fixed{AreaID: "a1"})
	if !errors.Is(err, ErrNoAreas) {
		t.Errorf("err = %v, want ErrNoAreas", err)
	}
}

func TestResolveListFailure(t *testing.T) {
	st := &fakeStore{err: errors.New("backend down")}
	_, err := Resolve(context.Background(), st, &Fixed{AreaID: "a1"})
	if err == nil || !strings.Contains(err.Error(), "list parking areas") {
		t.Errorf("err = %v", err)
	}
}

func TestTerminalPickWithPassword(t *testing.T) {
	term := terminal("1\nsecret\n")
	area, err := term.Choose(testAreas())
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if area.ID != "a1" {
		t.Errorf("area = %+v", area)
	}
}

func TestTerminalWrongPassword(t *testing.T) {
	term := terminal("1\nnope\n")
	_, err := term.Choose(testAreas())
	if !errors.Is(err, ErrBadPassword) {
		t.Errorf("err = %v, want ErrBadPassword", err)
	}
}

func TestTerminalNoPasswordPrompt(t *testing.T) {
	// Area 2 has no password; no second line is needed.
	term := terminal("2\n")
	area, err := term.Choose(testAreas())
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if area.ID != "a2" {
		t.Errorf("area = %+v", area)
	}
}

func TestTerminalRejectsOutOfRange(t *testing.T) {
	for _, input := range []string{"0\n", "3\n", "x\n", "\n"} {
		term := terminal(input)
		if _, err := term.Choose(testAreas()); err == nil {
			t.Errorf("input %q: want error", input)
		}
	}
}

func TestFixedUnknownArea(t *testing.T) {
	if _, err := (&Fixed{AreaID: "missing"}).Choose(testAreas()); err == nil {
		t.Error("want error for unknown area id")
	}
}

func TestSystemIDSlug(t *testing.T) {
	cases := map[string]string{
		"North Lot":       "parking_monitor_north_lot",
		"  Campus  B  ":   "parking_monitor_campus_b",
		"Garage":          "parking_monitor_garage",
		"MIXED Case Name": "parking_monitor_mixed_case_name",
	}
	for name, want := range cases {
		if got := SystemID(name); got != want {
			t.Errorf("SystemID(%q) = %q, want %q", name, got, want)
		}
	}
}
