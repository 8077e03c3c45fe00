package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"rescueDispatch/internal/domain"
	"rescueDispatch/pkg/e"

	"gopkg.in/yaml.v3"
)

// Seed is the YAML layout of the directory file used in memory mode.
type Seed struct {
	Drivers    []domain.Driver   `yaml:"drivers"`
	Facilities []domain.Facility `yaml:"facilities"`
}

func LoadSeed(path string) (Seed, error) {
	const op = "memory.LoadSeed"

	var seed Seed
	if path == "" {
		return seed, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return seed, fmt.Errorf("%s: %w", op, err)
	}
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return seed, fmt.Errorf("%s: %w", op, err)
	}
	for _, d := range seed.Drivers {
		if d.ID == "" || !d.Coordinates.Valid() {
			return seed, fmt.Errorf("%s: driver %q: %w", op, d.ID, e.ErrInvalidInput)
		}
	}
	for _, f := range seed.Facilities {
		if f.ID == "" || !f.Coordinates.Valid() {
			return seed, fmt.Errorf("%s: facility %q: %w", op, f.ID, e.ErrInvalidInput)
		}
	}
	return seed, nil
}

// DriverDirectory is a read-only view of driver profiles.
type DriverDirectory struct {
	mu      sync.RWMutex
	drivers map[string]domain.Driver
}

func NewDriverDirectory(drivers []domain.Driver) *DriverDirectory {
	d := &DriverDirectory{drivers: make(map[string]domain.Driver, len(drivers))}
	for _, drv := range drivers {
		d.drivers[drv.ID] = drv
	}
	return d
}

func (d *DriverDirectory) Get(ctx context.Context, id string) (*domain.Driver, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	drv, ok := d.drivers[id]
	if !ok {
		return nil, fmt.Errorf("memory.Driver.Get: %w", e.ErrNotFound)
	}
	return &drv, nil
}

func (d *DriverDirectory) ListAvailable(ctx context.Context) ([]domain.Driver, error) {
	return d.list(func(drv domain.Driver) bool { return drv.Available }), nil
}

// List returns every driver; used to seed the location index at startup.
func (d *DriverDirectory) List(ctx context.Context) ([]domain.Driver, error) {
	return d.list(func(domain.Driver) bool { return true }), nil
}

func (d *DriverDirectory) list(keep func(domain.Driver) bool) []domain.Driver {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.Driver, 0, len(d.drivers))
	for _, drv := range d.drivers {
		if keep(drv) {
			out = append(out, drv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Put replaces a profile; driver management owns this path, dispatch never calls it.
func (d *DriverDirectory) Put(drv domain.Driver) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drivers[drv.ID] = drv
}

type FacilityDirectory struct {
	mu         sync.RWMutex
	facilities map[string]domain.Facility
}

func NewFacilityDirectory(facilities []domain.Facility) *FacilityDirectory {
	f := &FacilityDirectory{facilities: make(map[string]domain.Facility, len(facilities))}
	for _, fc := range facilities {
		f.facilities[fc.ID] = fc
	}
	return f
}

func (f *FacilityDirectory) Get(ctx context.Context, id string) (*domain.Facility, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	fc, ok := f.facilities[id]
	if !ok {
		return nil, fmt.Errorf("memory.Facility.Get: %w", e.ErrNotFound)
	}
	return &fc, nil
}

func (f *FacilityDirectory) List(ctx context.Context) ([]domain.Facility, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]domain.Facility, 0, len(f.facilities))
	for _, fc := range f.facilities {
		out = append(out, fc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FacilityDirectory) Put(fc domain.Facility) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.facilities[fc.ID] = fc
}
