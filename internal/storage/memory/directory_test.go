package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/pkg/e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
drivers:
  - id: drv-1
    name: Kamal
    coordinates: {lat: 6.9, lng: 79.86}
    available: true
  - id: drv-2
    name: Sunil
    coordinates: {lat: 6.95, lng: 79.9}
    available: false
facilities:
  - id: vet-1
    name: Colombo Animal Hospital
    address: 12 Kynsey Road
    contact: "+94112000000"
    coordinates: {lat: 6.91, lng: 79.87}
    accepts_emergencies: true
    capacity: 4
`

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.Drivers, 2)
	require.Len(t, seed.Facilities, 1)
	assert.Equal(t, 6.9, seed.Drivers[0].Coordinates.Lat)
	assert.True(t, seed.Facilities[0].AcceptsEmergencies)

	drivers := NewDriverDirectory(seed.Drivers)
	avail, err := drivers.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, "drv-1", avail[0].ID)

	all, err := drivers.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "drv-2", all[1].ID)

	_, err = drivers.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, e.ErrNotFound)

	facilities := NewFacilityDirectory(seed.Facilities)
	f, err := facilities.Get(context.Background(), "vet-1")
	require.NoError(t, err)
	assert.Equal(t, 4, f.Capacity)
}

func TestLoadSeed_RejectsBadCoordinates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("drivers:\n  - id: x\n    coordinates: {lat: 120, lng: 0}\n"), 0o600))

	_, err := LoadSeed(path)
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestNotificationQueue(t *testing.T) {
	q := NewNotificationQueue(1)
	ctx := context.Background()

	n := domain.Notification{ID: uuid.New(), Type: domain.NotificationIncidentCreated}
	require.NoError(t, q.Enqueue(ctx, n))
	assert.ErrorIs(t, q.Enqueue(ctx, n), e.ErrInternal)

	got, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)

	_, err = q.Pop(ctx, 10*time.Millisecond)
	assert.ErrorIs(t, err, e.ErrQueueEmpty)
}
