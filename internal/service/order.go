package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/orderid"
	"github.com/Skotchmaster/storefront/internal/pricing"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type Repository interface {
	Insert(ctx context.Context, order *models.Order) (uint, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	ListByEmail(ctx context.Context, email string) ([]models.Order, error)
	ListRecent(ctx context.Context, limit int) ([]models.Order, error)
	Patch(ctx context.Context, id uint, p repo.Patch) error
	ListAll(ctx context.Context) ([]models.Order, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event events.Typed) error
}

type OrderIndexer interface {
	IndexOrder(ctx context.Context, order *models.Order) error
}

// Cart is the part of a cart store an order is built from.
type Cart interface {
	Items() []cart.LineItem
	Clear()
}

// OrderService owns order creation and the status lifecycle. Events and
// Index are optional.
type OrderService struct {
	Repo     Repository
	Notifier notify.Sender
	Events   EventPublisher
	Index    OrderIndexer

	NewID func() string
	Now   func() time.Time

	// AllowAnyTransition turns off terminal-state protection.
	AllowAnyTransition bool
}

type CreateResult struct {
	Order           *models.Order
	MessageID       string
	NotificationErr error
}

// Checkout validates the raw form and places the order.
func (s *OrderService) Checkout(ctx context.Context, c Cart, form checkout.Form) (*CreateResult, error) {
	req, fieldErrs := checkout.Validate(form)
	if len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}
	return s.CreateOrder(ctx, c, req)
}

// CreateOrder persists the cart as a pending order, then mails the
// confirmation and empties the cart. A failed mail does not fail the order.
func (s *OrderService) CreateOrder(ctx context.Context, c Cart, req *checkout.Request) (*CreateResult, error) {
	l := logging.FromContext(ctx).With("svc", "order.create")

	if req == nil {
		return nil, fmt.Errorf("%w: missing checkout request", ErrValidation)
	}

	lines := c.Items()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]models.OrderItem, len(lines))
	for i, li := range lines {
		items[i] = models.OrderItem{
			Position:  i,
			ProductID: li.ID,
			Name:      li.Name,
			ShortName: li.ShortName,
			UnitPrice: li.UnitPrice,
			Quantity:  li.Quantity,
			ImageRef:  li.ImageRef,
		}
	}

	now := s.now()
	order := &models.Order{
		OrderID: s.newID(),
		Customer: models.Customer{
			Name:  req.Billing.Name,
			Email: req.Billing.Email,
			Phone: req.Billing.PhoneNumber,
		},
		Shipping: models.ShippingAddress{
			Address: req.Shipping.Address,
			ZipCode: req.Shipping.ZipCode,
			City:    req.Shipping.City,
			Country: req.Shipping.Country,
		},
		PaymentMethod: req.Payment.Kind(),
		Items:         items,
		Totals:        pricing.ComputeTotals(items),
		Status:        models.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := s.Repo.Insert(ctx, order); err != nil {
		l.Error("create_order_error", "reason", "persist", "order_id", order.OrderID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	l = l.With("order_id", order.OrderID)

	metrics.OrdersCreated.Inc()
	metrics.OrderValue.Observe(order.Totals.GrandTotal.InexactFloat64())

	res := &CreateResult{Order: order}

	msgID, err := s.Notifier.Send(ctx, notify.FromOrder(order))
	if err != nil {
		res.NotificationErr = fmt.Errorf("%w: %v", ErrNotification, err)
		metrics.Notifications.WithLabelValues("failed").Inc()
		l.Warn("confirmation_not_sent", "error", err)
	} else {
		res.MessageID = msgID
		metrics.Notifications.WithLabelValues("sent").Inc()
	}

	c.Clear()

	s.publish(ctx, order.OrderID, events.OrderCreated{
		Type:          events.TypeOrderCreated,
		OrderID:       order.OrderID,
		Email:         order.Customer.Email,
		PaymentMethod: order.PaymentMethod,
		ItemCount:     itemCount(order.Items),
		GrandTotal:    order.Totals.GrandTotal,
		CreatedAt:     order.CreatedAt,
	})
	s.index(ctx, order)

	l.Info("create_order_success", "grand_total", order.Totals.GrandTotal.String())
	return res, nil
}

// UpdateStatus moves an order to status. Staying in the same status only
// refreshes updatedAt.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status models.Status) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", orderID)

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if !s.AllowAnyTransition && !from.CanTransitionTo(status) {
		metrics.StatusTransitions.WithLabelValues(string(from), string(status), "rejected").Inc()
		l.Warn("update_status_error", "status", 409, "from", from, "to", status)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, status)
	}

	now := s.now()
	if now.Before(order.CreatedAt) {
		now = order.CreatedAt
	}

	patch := repo.Patch{UpdatedAt: now}
	if status != from {
		patch.Status = &status
	}
	if err := s.Repo.Patch(ctx, order.ID, patch); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, orderID)
		}
		l.Error("update_status_error", "reason", "persist", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	order.Status = status
	order.UpdatedAt = now
	metrics.StatusTransitions.WithLabelValues(string(from), string(status), "applied").Inc()

	if status != from {
		s.publish(ctx, order.OrderID, events.OrderStatusChanged{
			Type:      events.TypeOrderStatusChanged,
			OrderID:   order.OrderID,
			From:      string(from),
			To:        string(status),
			UpdatedAt: now,
		})
	}
	s.index(ctx, order)

	l.Info("update_status_success", "from", from, "to", status)
	return order, nil
}

func (s *OrderService) CancelOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.UpdateStatus(ctx, orderID, models.StatusCancelled)
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.Repo.FindByOrderID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return order, nil
}

func (s *OrderService) ListByEmail(ctx context.Context, email string) ([]models.Order, error) {
	orders, err := s.Repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return orders, nil
}

// ListRecent returns the newest orders. A non-positive limit means 50.
func (s *OrderService) ListRecent(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	orders, err := s.Repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return orders, nil
}

// GetStats scans every order. It is meant for the admin dashboard only.
func (s *OrderService) GetStats(ctx context.Context) (*models.Stats, error) {
	orders, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	st := &models.Stats{StatusCounts: make(map[models.Status]int, len(models.AllStatuses))}
	for _, status := range models.AllStatuses {
		st.StatusCounts[status] = 0
	}
	for _, o := range orders {
		st.TotalOrders++
		st.TotalRevenue = st.TotalRevenue.Add(o.Totals.GrandTotal)
		st.StatusCounts[o.Status]++
	}
	return st, nil
}

func (s *OrderService) publish(ctx context.Context, key string, ev events.Typed) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishEvent(ctx, events.TopicOrderEvents, key, ev); err != nil {
		metrics.SideEffectFailures.WithLabelValues("event").Inc()
		logging.FromContext(ctx).Warn("publish_event_failed", "order_id", key, "type", ev.EventType(), "error", err)
	}
}

func (s *OrderService) index(ctx context.Context, order *models.Order) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexOrder(ctx, order); err != nil {
		metrics.SideEffectFailures.WithLabelValues("index").Inc()
		logging.FromContext(ctx).Warn("index_order_failed", "order_id", order.OrderID, "error", err)
	}
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *OrderService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return orderid.New()
}

func itemCount(items []models.OrderItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
