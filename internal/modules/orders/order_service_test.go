package orders

import (
	"context"
	"testing"
	"time"

	"quickbite-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo replays the repository's timestamp bookkeeping in memory so the
// service can be tested without PostgreSQL.
type fakeRepo struct {
	orders map[string]*models.Order
	owners map[string]string // restaurant ID -> owner account ID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: make(map[string]*models.Order),
		owners: make(map[string]string),
	}
}

func (f *fakeRepo) Create(ctx context.Context, customerID string, req models.CreateOrderRequest) (*models.Order, error) {
	o := &models.Order{
		ID:              "order-1",
		CustomerID:      customerID,
		RestaurantID:    req.RestaurantID,
		TotalAmount:     req.TotalAmount,
		DeliveryAddress: req.DeliveryAddress,
		Status:          models.OrderStatusPreparing,
		CreatedAt:       time.Now(),
	}
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeRepo) ListByCustomer(ctx context.Context, customerID string, page, limit int) ([]*models.Order, int, error) {
	out := []*models.Order{}
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListByRestaurantOwner(ctx context.Context, ownerID string, page, limit int) ([]*models.Order, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) FindByIDForOwner(ctx context.Context, orderID, ownerID string) (*models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok || f.owners[o.RestaurantID] != ownerID {
		return nil, models.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, reason *string) error {
	o, ok := f.orders[orderID]
	if !ok {
		return models.ErrNotFound
	}
	now := time.Now()
	o.Status = status
	switch status {
	case models.OrderStatusConfirmed:
		o.ConfirmedAt = &now
	case models.OrderStatusPreparing:
		if o.ConfirmedAt == nil {
			o.ConfirmedAt = &now
		}
	case models.OrderStatusReady:
		o.PreparedAt = &now
	case models.OrderStatusPickedUp:
		o.PickedUpAt = &now
	case models.OrderStatusDelivered:
		o.DeliveredAt = &now
	case models.OrderStatusCancelled:
		o.CancelledAt = &now
		if reason != nil {
			o.CancelReason = reason
		}
	}
	return nil
}

func seedOrder(f *fakeRepo, id, customerID string, status models.OrderStatus) *models.Order {
	o := &models.Order{
		ID:           id,
		CustomerID:   customerID,
		RestaurantID: "rest-1",
		Status:       status,
		CreatedAt:    time.Now(),
	}
	f.orders[id] = o
	return o
}

func TestUpdateOrderStatusStampsTimestamps(t *testing.T) {
	cases := []struct {
		status models.OrderStatus
		check  func(t *testing.T, o *models.Order)
	}{
		{models.OrderStatusConfirmed, func(t *testing.T, o *models.Order) {
			assert.NotNil(t, o.ConfirmedAt)
		}},
		{models.OrderStatusReady, func(t *testing.T, o *models.Order) {
			assert.NotNil(t, o.PreparedAt)
		}},
		{models.OrderStatusPickedUp, func(t *testing.T, o *models.Order) {
			assert.NotNil(t, o.PickedUpAt)
		}},
		{models.OrderStatusDelivered, func(t *testing.T, o *models.Order) {
			assert.NotNil(t, o.DeliveredAt)
		}},
		{models.OrderStatusOnTheWay, func(t *testing.T, o *models.Order) {
			// on_the_way carries no timestamp of its own.
			assert.Nil(t, o.PickedUpAt)
			assert.Nil(t, o.DeliveredAt)
		}},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			repo := newFakeRepo()
			seedOrder(repo, "o1", "cust-1", models.OrderStatusPending)
			svc := NewService(repo)

			err := svc.UpdateOrderStatus(context.Background(), "o1", tc.status, nil)
			require.NoError(t, err)

			o, err := repo.FindByID(context.Background(), "o1")
			require.NoError(t, err)
			assert.Equal(t, tc.status, o.Status)
			tc.check(t, o)
		})
	}
}

func TestUpdateOrderStatusRejectsUnknown(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", "cust-1", models.OrderStatusPending)
	svc := NewService(repo)

	err := svc.UpdateOrderStatus(context.Background(), "o1", models.OrderStatus("refunded"), nil)
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}

func TestUpdateOrderStatusMissingOrder(t *testing.T) {
	svc := NewService(newFakeRepo())

	err := svc.UpdateOrderStatus(context.Background(), "nope", models.OrderStatusConfirmed, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCancelOrderRecordsReason(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", "cust-1", models.OrderStatusConfirmed)
	svc := NewService(repo)

	err := svc.CancelOrder(context.Background(), "o1", "cust-1", "ordered by mistake")
	require.NoError(t, err)

	o, err := repo.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, o.Status)
	assert.NotNil(t, o.CancelledAt)
	require.NotNil(t, o.CancelReason)
	assert.Equal(t, "ordered by mistake", *o.CancelReason)
}

func TestCancelOrderOwnership(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", "cust-1", models.OrderStatusPending)
	svc := NewService(repo)

	err := svc.CancelOrder(context.Background(), "o1", "cust-2", "not mine")
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestCancelOrderTooLate(t *testing.T) {
	for _, status := range []models.OrderStatus{
		models.OrderStatusReady,
		models.OrderStatusPickedUp,
		models.OrderStatusOnTheWay,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	} {
		repo := newFakeRepo()
		seedOrder(repo, "o1", "cust-1", status)
		svc := NewService(repo)

		err := svc.CancelOrder(context.Background(), "o1", "cust-1", "changed my mind")
		assert.ErrorIs(t, err, models.ErrOrderCannotBeCancelled, "status %s", status)
	}
}

func TestUpdateOrderStatusCancelledWithoutReason(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", "cust-1", models.OrderStatusPreparing)
	svc := NewService(repo)

	err := svc.UpdateOrderStatus(context.Background(), "o1", models.OrderStatusCancelled, nil)
	require.NoError(t, err)

	o, err := repo.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, o.Status)
	assert.NotNil(t, o.CancelledAt)
	assert.Nil(t, o.CancelReason)
}

func TestUpdateOrderStatusNilReasonKeepsExisting(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", "cust-1", models.OrderStatusPending)
	svc := NewService(repo)

	require.NoError(t, svc.CancelOrder(context.Background(), "o1", "cust-1", "out of stock"))

	// A reasonless cancel arriving afterwards must not wipe the stored reason.
	require.NoError(t, svc.UpdateOrderStatus(context.Background(), "o1", models.OrderStatusCancelled, nil))

	o, err := repo.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	require.NotNil(t, o.CancelReason)
	assert.Equal(t, "out of stock", *o.CancelReason)
}

func TestMerchantStatusUpdateScopedToOwner(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", "cust-1", models.OrderStatusPreparing)
	repo.owners["rest-1"] = "owner-1"
	svc := NewService(repo)

	// Another restaurant account cannot touch the order, or learn it exists.
	err := svc.UpdateRestaurantOrderStatus(context.Background(), "o1", "owner-2", models.OrderStatusReady)
	assert.ErrorIs(t, err, models.ErrNotFound)

	o, err := repo.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, o.Status)

	// The owning account can.
	require.NoError(t, svc.UpdateRestaurantOrderStatus(context.Background(), "o1", "owner-1", models.OrderStatusReady))

	o, err = repo.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReady, o.Status)
	assert.NotNil(t, o.PreparedAt)
}

func TestMerchantStatusUpdateClosedOrder(t *testing.T) {
	for _, status := range []models.OrderStatus{models.OrderStatusDelivered, models.OrderStatusCancelled} {
		repo := newFakeRepo()
		seedOrder(repo, "o1", "cust-1", status)
		repo.owners["rest-1"] = "owner-1"
		svc := NewService(repo)

		err := svc.UpdateRestaurantOrderStatus(context.Background(), "o1", "owner-1", models.OrderStatusConfirmed)
		assert.ErrorIs(t, err, models.ErrOrderClosed, "status %s", status)
	}
}

func TestCreateOrderStartsPreparing(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	order, err := svc.CreateOrder(context.Background(), "cust-1", models.CreateOrderRequest{
		RestaurantID:    "rest-1",
		DeliveryAddress: "2 Oak Ave",
		TotalAmount:     24.50,
		Items: []models.OrderItemRequest{
			{MenuItemID: "item-1", Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, order.Status)
	assert.Equal(t, "cust-1", order.CustomerID)
}

func TestGetOrderDetailsCustomerScope(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "o1", "cust-1", models.OrderStatusPreparing)
	svc := NewService(repo)

	got, err := svc.GetOrderDetails(context.Background(), "o1", "cust-1", models.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)

	_, err = svc.GetOrderDetails(context.Background(), "o1", "cust-2", models.RoleCustomer)
	assert.ErrorIs(t, err, models.ErrForbidden)
}
