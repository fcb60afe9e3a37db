package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/stationery_shop/internal/events"
	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/repo"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Now    func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *OrderService) List(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx, userID)
}

func (s *OrderService) Get(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	o, err := s.Repo.OrderWithItems(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if o.UserID != userID || o.Status == models.StatusOpen {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	return o, nil
}

func (s *OrderService) RequestRefund(ctx context.Context, userID, orderID uint, reason string) (*models.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ValidationErrors{{Field: "reason", Err: ErrRequired}}
	}
	return s.advance(ctx, orderID, &userID, models.StatusRefundRequested, func(tx *repo.GormRepo) error {
		return tx.CreateRefund(ctx, &models.Refund{OrderID: orderID, Reason: reason})
	})
}

func (s *OrderService) Ship(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.advance(ctx, orderID, nil, models.StatusInTransit, nil)
}

func (s *OrderService) Deliver(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.advance(ctx, orderID, nil, models.StatusDelivered, func(tx *repo.GormRepo) error {
		return tx.MarkDelivered(ctx, orderID, s.now())
	})
}

func (s *OrderService) GrantRefund(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.advance(ctx, orderID, nil, models.StatusRefundGranted, func(tx *repo.GormRepo) error {
		return notFound(tx.AcceptRefund(ctx, orderID), "refund")
	})
}

// advance moves a locked order to next and runs extra in the same transaction.
// A non-nil owner restricts the change to that user's orders.
func (s *OrderService) advance(ctx context.Context, orderID uint, owner *uint, next models.OrderStatus, extra func(*repo.GormRepo) error) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.transition", "order_id", orderID, "to", next)

	var from models.OrderStatus
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return notFound(err, "order")
		}
		if owner != nil && o.UserID != *owner {
			return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		from = o.Status
		if err := o.Transition(next); err != nil {
			return err
		}
		if err := tx.SetOrderStatus(ctx, orderID, from, next); err != nil {
			return notFound(err, "order")
		}
		if extra != nil {
			return extra(tx)
		}
		return nil
	})
	if err != nil {
		l.Warn("order_transition_failed", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, events.TopicOrder, idKey(orderID), map[string]any{
		"type":    "order_status_changed",
		"orderID": orderID,
		"from":    string(from),
		"to":      string(next),
	})
	return s.Repo.OrderWithItems(ctx, orderID)
}
