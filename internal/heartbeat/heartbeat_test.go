package heartbeat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/smartpark-vision/parking-monitor/internal/metrics"
	"github.com/smartpark-vision/parking-monitor/pkg/types"
)

type livenessWrite struct {
	status        string
	lastHeartbeat time.Time
	hasTimestamp  bool
}

// fakeStore records system_status writes.
type fakeStore struct {
	writes  []livenessWrite
	failing bool
}

func (f *fakeStore) SetSystemOnline(_ context.Context, _, _ string, at time.Time) error {
	if f.failing {
		return errors.New("backend unavailable")
	}
	f.writes = append(f.writes, livenessWrite{status: "online", lastHeartbeat: at, hasTimestamp: true})
	return nil
}

func (f *fakeStore) SetSystemOffline(_ context.Context, _ string) error {
	if f.failing {
		return errors.New("backend unavailable")
	}
	f.writes = append(f.writes, livenessWrite{status: "offline"})
	return nil
}

func (f *fakeStore) ListAreas(context.Context) ([]types.ParkingArea, error) { return nil, nil }
func (f *fakeStore) SetAreaTotalSlots(context.Context, string, int) error   { return nil }
func (f *fakeStore) UpsertSlotStatus(context.Context, string, int, types.SlotStatus, time.Time) error {
	return nil
}

func newTestReporter(st *fakeStore, mock *clock.Mock) *Reporter {
	return New(st, "parking_monitor_test_lot", "Test Lot", 30*time.Second, mock, metrics.New())
}

func TestStartWritesImmediately(t *testing.T) {
	st := &fakeStore{}
	mock := clock.NewMock()
	r := newTestReporter(st, mock)

	r.Start(context.Background())
	if len(st.writes) != 1 || st.writes[0].status != "online" {
		t.Fatalf("writes = %+v, want one online write", st.writes)
	}
}

func TestTickDueRespectsInterval(t *testing.T) {
	st := &fakeStore{}
	mock := clock.NewMock()
	r := newTestReporter(st, mock)
	r.Start(context.Background())

	// At t=29s nothing happens.
	mock.Add(29 * time.Second)
	r.TickDue(context.Background())
	if len(st.writes) != 1 {
		t.Fatalf("writes at t=29s = %d, want 1", len(st.writes))
	}

	// At t=30.5s one write with a fresh timestamp.
	mock.Add(1500 * time.Millisecond)
	r.TickDue(context.Background())
	if len(st.writes) != 2 {
		t.Fatalf("writes at t=30.5s = %d, want 2", len(st.writes))
	}
	if !st.writes[1].lastHeartbeat.After(st.writes[0].lastHeartbeat) {
		t.Error("second heartbeat timestamp is not fresher than the first")
	}
}

func TestFailedBeatRetriesNextTick(t *testing.T) {
	st := &fakeStore{failing: true}
	mock := clock.NewMock()
	r := newTestReporter(st, mock)

	r.Start(context.Background())
	if len(st.writes) != 0 {
		t.Fatalf("failing store recorded %d writes", len(st.writes))
	}

	// The timestamp did not advance, so the very next tick retries
	// without waiting another full interval.
	st.failing = false
	mock.Add(time.Second)
	r.TickDue(context.Background())
	if len(st.writes) != 1 {
		t.Fatalf("writes after recovery = %d, want 1", len(st.writes))
	}
}

func TestShutdownOmitsTimestamp(t *testing.T) {
	st := &fakeStore{}
	mock := clock.NewMock()
	r := newTestReporter(st, mock)

	r.Start(context.Background())
	r.Shutdown(context.Background())

	last := st.writes[len(st.writes)-1]
	if last.status != "offline" {
		t.Fatalf("last write status = %s, want offline", last.status)
	}
	if last.hasTimestamp {
		t.Error("offline write must not touch last_heartbeat")
	}
}

func TestShutdownFailureIsSwallowed(t *testing.T) {
	st := &fakeStore{failing: true}
	mock := clock.NewMock()
	r := newTestReporter(st, mock)

	// Must not panic or block; the process is exiting.
	r.Shutdown(context.Background())
}
