package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	supabase "github.com/supabase-community/supabase-go"

	"github.com/smartpark-vision/parking-monitor/pkg/types"
)

// Credentials holds what is needed to open an authenticated session.
type Credentials struct {
	URL      string
	Key      string
	Email    string
	Password string
}

// Supabase is the production Store backed by the Supabase REST API.
type Supabase struct {
	client *supabase.Client
}

// Connect creates the client and signs in with email and password.
// A failed sign-in is a fatal startup error for the callers.
func Connect(creds Credentials) (*Supabase, error) {
	client, err := supabase.NewClient(creds.URL, creds.Key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	if _, err := client.SignInWithEmailPassword(creds.Email, creds.Password); err != nil {
		return nil, fmt.Errorf("authenticate against backend: %w", err)
	}
	return &Supabase{client: client}, nil
}

// The postgrest layer does not accept a context; its requests carry
// their own HTTP timeout. ctx is part of the Store contract so fakes
// and future transports can honor cancellation.

func (s *Supabase) ListAreas(ctx context.Context) ([]types.ParkingArea, error) {
	data, _, err := s.client.From("parking_areas").Select("*", "", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("list parking areas: %w", err)
	}
	var areas []types.ParkingArea
	if err := json.Unmarshal(data, &areas); err != nil {
		return nil, fmt.Errorf("decode parking areas: %w", err)
	}
	return areas, nil
}

func (s *Supabase) SetAreaTotalSlots(ctx context.Context, areaID string, total int) error {
	row := map[string]any{"total_slots": total}
	if _, _, err := s.client.From("parking_areas").Update(row, "", "").Eq("id", areaID).Execute(); err != nil {
		return fmt.Errorf("update total_slots for area %s: %w", areaID, err)
	}
	return nil
}

func (s *Supabase) UpsertSlotStatus(ctx context.Context, areaID string, slotNumber int, status types.SlotStatus, updatedAt time.Time) error {
	row := map[string]any{
		"parking_area_id": areaID,
		"slot_number":     slotNumber,
		"status":          string(status),
		"updated_at":      updatedAt.UTC().Format(time.RFC3339),
	}
	if _, _, err := s.client.From("slots").Upsert(row, "parking_area_id,slot_number", "", "").Execute(); err != nil {
		return fmt.Errorf("upsert slot %d: %w", slotNumber, err)
	}
	return nil
}

func (s *Supabase) SetSystemOnline(ctx context.Context, systemID, location string, at time.Time) error {
	row := map[string]any{
		"system_id":      systemID,
		"status":         "online",
		"location":       location,
		"last_heartbeat": at.UTC().Format(time.RFC3339),
	}
	if _, _, err := s.client.From("system_status").Upsert(row, "system_id", "", "").Execute(); err != nil {
		return fmt.Errorf("set %s online: %w", systemID, err)
	}
	return nil
}

func (s *Supabase) SetSystemOffline(ctx context.Context, systemID string) error {
	// Status only; last_heartbeat keeps the last-seen time so
	// observers can tell "recently died" from "long dead".
	row := map[string]any{"status": "offline"}
	if _, _, err := s.client.From("system_status").Update(row, "", "").Eq("system_id", systemID).Execute(); err != nil {
		return fmt.Errorf("set %s offline: %w", systemID, err)
	}
	return nil
}
