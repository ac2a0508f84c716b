package deliveries

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quickbite-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo keeps deliveries in a map and reproduces the repository's
// conditional-update semantics, so the service can be exercised without a
// database. The mutex matters for the concurrent claim test.
type fakeRepo struct {
	mu         sync.Mutex
	deliveries map[string]*models.Delivery
	profiles   map[string]*models.DriverProfile
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		deliveries: make(map[string]*models.Delivery),
		profiles:   make(map[string]*models.DriverProfile),
	}
}

func (f *fakeRepo) FindByID(ctx context.Context, deliveryID string) (*models.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deliveries[deliveryID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRepo) FindByOrderID(ctx context.Context, orderID string) (*models.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.deliveries {
		if d.OrderID == orderID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) ListAvailable(ctx context.Context, page, limit int) ([]*models.Delivery, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Delivery{}
	for _, d := range f.deliveries {
		if d.Status == models.DeliveryStatusPending && d.DriverID == nil {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListByDriver(ctx context.Context, driverID string, page, limit int) ([]*models.Delivery, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Delivery{}
	for _, d := range f.deliveries {
		if d.DriverID != nil && *d.DriverID == driverID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

// Claim mirrors the single conditional UPDATE: the row must still be pending
// and unassigned, otherwise the update matches nothing.
func (f *fakeRepo) Claim(ctx context.Context, deliveryID, driverID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deliveries[deliveryID]
	if !ok || d.Status != models.DeliveryStatusPending || d.DriverID != nil {
		return models.ErrNotFound
	}
	id := driverID
	now := time.Now()
	d.DriverID = &id
	d.Status = models.DeliveryStatusAssigned
	d.AssignedAt = &now
	return nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, deliveryID string, status models.DeliveryStatus) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deliveries[deliveryID]
	if !ok {
		return "", models.ErrNotFound
	}
	now := time.Now()
	d.Status = status
	switch status {
	case models.DeliveryStatusPickedUp, models.DeliveryStatusOnTheWay:
		if d.PickedUpAt == nil {
			d.PickedUpAt = &now
		}
	case models.DeliveryStatusDelivered:
		d.DeliveredAt = &now
	case models.DeliveryStatusCancelled:
		d.CancelledAt = &now
	}
	return d.OrderID, nil
}

func (f *fakeRepo) UpsertDriverProfile(ctx context.Context, profile *models.DriverProfile) (*models.DriverProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *profile
	cp.UpdatedAt = time.Now()
	f.profiles[profile.UserID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRepo) FindDriverProfile(ctx context.Context, userID string) (*models.DriverProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// fakeOrderUpdater records propagation calls and can be told to fail.
type fakeOrderUpdater struct {
	mu    sync.Mutex
	calls []models.OrderStatus
	err   error
}

func (f *fakeOrderUpdater) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, reason *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, status)
	return f.err
}

func seedDelivery(f *fakeRepo, id, orderID string) *models.Delivery {
	d := &models.Delivery{
		ID:              id,
		OrderID:         orderID,
		PickupAddress:   "1 Main St",
		DeliveryAddress: "2 Oak Ave",
		Status:          models.DeliveryStatusPending,
		CreatedAt:       time.Now(),
	}
	f.deliveries[id] = d
	return d
}

func TestClaimAssignsDriver(t *testing.T) {
	repo := newFakeRepo()
	seedDelivery(repo, "d1", "o1")
	svc := NewService(repo, &fakeOrderUpdater{})

	got, err := svc.Claim(context.Background(), "d1", "driver-1")
	require.NoError(t, err)
	require.NotNil(t, got.DriverID)
	assert.Equal(t, "driver-1", *got.DriverID)
	assert.Equal(t, models.DeliveryStatusAssigned, got.Status)
	assert.NotNil(t, got.AssignedAt)
}

func TestClaimMissingDelivery(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeOrderUpdater{})

	_, err := svc.Claim(context.Background(), "nope", "driver-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestClaimAlreadyTaken(t *testing.T) {
	repo := newFakeRepo()
	seedDelivery(repo, "d1", "o1")
	svc := NewService(repo, &fakeOrderUpdater{})

	_, err := svc.Claim(context.Background(), "d1", "driver-1")
	require.NoError(t, err)

	_, err = svc.Claim(context.Background(), "d1", "driver-2")
	assert.ErrorIs(t, err, models.ErrDeliveryTaken)

	// The loser must not have displaced the winner.
	d, err := repo.FindByID(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "driver-1", *d.DriverID)
}

func TestClaimConcurrentDrivers(t *testing.T) {
	repo := newFakeRepo()
	seedDelivery(repo, "d1", "o1")
	svc := NewService(repo, &fakeOrderUpdater{})

	const drivers = 8
	errs := make([]error, drivers)
	var wg sync.WaitGroup
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Claim(context.Background(), "d1", string(rune('a'+i)))
		}(i)
	}
	wg.Wait()

	wins, losses := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, models.ErrDeliveryTaken):
			losses++
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, drivers-1, losses)
}

func TestUpdateStatusRequiresAssignedDriver(t *testing.T) {
	repo := newFakeRepo()
	seedDelivery(repo, "d1", "o1")
	svc := NewService(repo, &fakeOrderUpdater{})

	// Unassigned delivery: no driver may update it.
	_, err := svc.UpdateStatus(context.Background(), "d1", "driver-1", models.DeliveryStatusPickedUp)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.Claim(context.Background(), "d1", "driver-1")
	require.NoError(t, err)

	// A different driver still cannot touch it.
	_, err = svc.UpdateStatus(context.Background(), "d1", "driver-2", models.DeliveryStatusPickedUp)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	repo := newFakeRepo()
	seedDelivery(repo, "d1", "o1")
	svc := NewService(repo, &fakeOrderUpdater{})

	_, err := svc.UpdateStatus(context.Background(), "d1", "driver-1", models.DeliveryStatus("teleported"))
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}

func TestUpdateStatusPropagatesToOrder(t *testing.T) {
	cases := []struct {
		status models.DeliveryStatus
		want   []models.OrderStatus
	}{
		{models.DeliveryStatusPickedUp, []models.OrderStatus{models.OrderStatusPickedUp}},
		{models.DeliveryStatusOnTheWay, []models.OrderStatus{models.OrderStatusOnTheWay}},
		{models.DeliveryStatusDelivered, []models.OrderStatus{models.OrderStatusDelivered}},
		// Claiming has no order counterpart, so nothing is mirrored.
		{models.DeliveryStatusAssigned, nil},
		{models.DeliveryStatusCancelled, nil},
	}

	for _, tc := range cases {
		repo := newFakeRepo()
		seedDelivery(repo, "d1", "o1")
		orders := &fakeOrderUpdater{}
		svc := NewService(repo, orders)

		_, err := svc.Claim(context.Background(), "d1", "driver-1")
		require.NoError(t, err)

		_, err = svc.UpdateStatus(context.Background(), "d1", "driver-1", tc.status)
		require.NoError(t, err, "status %s", tc.status)
		assert.Equal(t, tc.want, orders.calls, "status %s", tc.status)
	}
}

func TestUpdateStatusSurvivesPropagationFailure(t *testing.T) {
	repo := newFakeRepo()
	seedDelivery(repo, "d1", "o1")
	orders := &fakeOrderUpdater{err: errors.New("order service down")}
	svc := NewService(repo, orders)

	_, err := svc.Claim(context.Background(), "d1", "driver-1")
	require.NoError(t, err)

	got, err := svc.UpdateStatus(context.Background(), "d1", "driver-1", models.DeliveryStatusPickedUp)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusPickedUp, got.Status)
	assert.Len(t, orders.calls, 1)
}

func TestUpdateStatusKeepsFirstPickupTimestamp(t *testing.T) {
	repo := newFakeRepo()
	seedDelivery(repo, "d1", "o1")
	svc := NewService(repo, &fakeOrderUpdater{})

	_, err := svc.Claim(context.Background(), "d1", "driver-1")
	require.NoError(t, err)

	first, err := svc.UpdateStatus(context.Background(), "d1", "driver-1", models.DeliveryStatusPickedUp)
	require.NoError(t, err)
	require.NotNil(t, first.PickedUpAt)

	later, err := svc.UpdateStatus(context.Background(), "d1", "driver-1", models.DeliveryStatusOnTheWay)
	require.NoError(t, err)
	require.NotNil(t, later.PickedUpAt)
	assert.True(t, later.PickedUpAt.Equal(*first.PickedUpAt))
}

func TestUpdateStatusStampsPickupWhenSkippedToOnTheWay(t *testing.T) {
	repo := newFakeRepo()
	seedDelivery(repo, "d1", "o1")
	svc := NewService(repo, &fakeOrderUpdater{})

	_, err := svc.Claim(context.Background(), "d1", "driver-1")
	require.NoError(t, err)

	got, err := svc.UpdateStatus(context.Background(), "d1", "driver-1", models.DeliveryStatusOnTheWay)
	require.NoError(t, err)
	assert.NotNil(t, got.PickedUpAt)
}

func TestListAvailableExcludesClaimed(t *testing.T) {
	repo := newFakeRepo()
	seedDelivery(repo, "d1", "o1")
	seedDelivery(repo, "d2", "o2")
	svc := NewService(repo, &fakeOrderUpdater{})

	_, err := svc.Claim(context.Background(), "d1", "driver-1")
	require.NoError(t, err)

	available, total, err := svc.ListAvailable(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, available, 1)
	assert.Equal(t, "d2", available[0].ID)
}

func TestUpsertDriverProfileRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeOrderUpdater{})

	created, err := svc.UpsertDriverProfile(context.Background(), "driver-1", models.UpsertDriverProfileRequest{
		VehicleType:     "bike",
		LicensePlate:    "ABC-123",
		IsAvailable:     true,
		CurrentLocation: `{"lat":37.77,"lng":-122.41}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "driver-1", created.UserID)

	got, err := svc.GetDriverProfile(context.Background(), "driver-1")
	require.NoError(t, err)
	assert.Equal(t, "bike", got.VehicleType)
	assert.Equal(t, `{"lat":37.77,"lng":-122.41}`, got.CurrentLocation)
}
