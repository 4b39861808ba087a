// Package selection resolves which parking area a monitor instance
// watches. The operator picks an area interactively at startup and
// proves control of it with the area password.
package selection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/smartpark-vision/parking-monitor/internal/logger"
	"github.com/smartpark-vision/parking-monitor/internal/store"
	"github.com/smartpark-vision/parking-monitor/pkg/types"
)

// ErrNoAreas is returned when the backend has no parking areas to
// choose from.
var ErrNoAreas = errors.New("no parking areas registered")

// ErrBadPassword is returned when the operator fails the area password
// check.
var ErrBadPassword = errors.New("wrong area password")

// Choice is a resolved area selection.
type Choice struct {
	Area     types.ParkingArea
	SystemID string
}

// Provider picks one area out of the backend list and authenticates
// the pick. Terminal is the interactive implementation; tests supply
// scripted ones.
type Provider interface {
	Choose(areas []types.ParkingArea) (types.ParkingArea, error)
}

// Resolve lists the areas, delegates the pick to the provider, and
// derives the system identifier the liveness row is keyed by.
func Resolve(ctx context.Context, st store.Store, p Provider) (Choice, error) {
	areas, err := st.ListAreas(ctx)
	if err != nil {
		return Choice{}, fmt.Errorf("list parking areas: %w", err)
	}
	if len(areas) == 0 {
		return Choice{}, ErrNoAreas
	}

	area, err := p.Choose(areas)
	if err != nil {
		return Choice{}, err
	}

	logger.Info("Selection", "monitoring area %q (%s)", area.Name, area.ID)
	return Choice{Area: area, SystemID: SystemID(area.Name)}, nil
}

// SystemID derives the liveness row key from an area name:
// lower-cased, spaces collapsed to underscores, prefixed so multiple
// tools sharing the table stay distinguishable.
func SystemID(areaName string) string {
	slug := strings.ToLower(strings.TrimSpace(areaName))
	slug = strings.Join(strings.Fields(slug), "_")
	return "parking_monitor_" + slug
}

// Terminal prompts on the given streams. It shows the numbered area
// list, reads a 1-based pick, then checks the area password. Empty
// area passwords skip the check.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

// Choose implements Provider.
func (t *Terminal) Choose(areas []types.ParkingArea) (types.ParkingArea, error) {
	fmt.Fprintln(t.Out, "Available parking areas:")
	for i, a := range areas {
		fmt.Fprintf(t.Out, "  %d. %s (%d slots)\n", i+1, a.Name, a.TotalSlots)
	}

	r := bufio.NewReader(t.In)

	fmt.Fprint(t.Out, "Select area: ")
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return types.ParkingArea{}, fmt.Errorf("read selection: %w", err)
	}
	pick, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || pick < 1 || pick > len(areas) {
		return types.ParkingArea{}, fmt.Errorf("invalid selection %q", strings.TrimSpace(line))
	}
	area := areas[pick-1]

	if area.Password != "" {
		fmt.Fprint(t.Out, "Area password: ")
		line, err = r.ReadString('\n')
		if err != nil && line == "" {
			return types.ParkingArea{}, fmt.Errorf("read password: %w", err)
		}
		if strings.TrimSpace(line) != area.Password {
			return types.ParkingArea{}, ErrBadPassword
		}
	}

	return area, nil
}

// Fixed always picks the area with the given ID. It backs the -area
// flag for unattended runs.
type Fixed struct {
	AreaID string
}

// Choose implements Provider.
func (f *Fixed) Choose(areas []types.ParkingArea) (types.ParkingArea, error) {
	for _, a := range areas {
		if a.ID == f.AreaID {
			return a, nil
		}
	}
	return types.ParkingArea{}, fmt.Errorf("parking area %q not found", f.AreaID)
}
