package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/stationery_shop/internal/events"
	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Locks  *UserLocks
	Events events.Publisher
	Now    func() time.Time
}

type Cart struct {
	Order      *models.Order
	Items      []models.CartProduct
	ItemsTotal int
	Total      decimal.Decimal
}

func newCart(o *models.Order) *Cart {
	if o == nil {
		return &Cart{Items: []models.CartProduct{}, Total: decimal.Zero}
	}
	return &Cart{Order: o, Items: o.Items, ItemsTotal: len(o.Items), Total: o.Total()}
}

func (s *CartService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// openOrder returns the user's open order inside tx, or nil when the user has none.
func openOrder(ctx context.Context, tx *repo.GormRepo, user *models.User) (*models.Order, error) {
	if user.ActiveOrderID == nil {
		return nil, nil
	}
	o, err := tx.OrderWithItems(ctx, *user.ActiveOrderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if o.Status != models.StatusOpen {
		return nil, nil
	}
	return o, nil
}

func (s *CartService) Get(ctx context.Context, userID uint) (*Cart, error) {
	user, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	o, err := openOrder(ctx, s.Repo, user)
	if err != nil {
		return nil, err
	}
	return newCart(o), nil
}

func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) (*Cart, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add", "user_id", userID, "product_id", productID)

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	unlock := s.Locks.Lock(userID)
	defer unlock()

	var orderID uint
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		product, err := tx.ProductByID(ctx, productID)
		if err != nil {
			return notFound(err, "product")
		}
		if quantity > product.Stock {
			return ErrInsufficientStock
		}

		user, err := tx.LockUser(ctx, userID)
		if err != nil {
			return notFound(err, "user")
		}

		order, err := openOrder(ctx, tx, user)
		if err != nil {
			return err
		}
		if order == nil {
			order = &models.Order{UserID: userID, DateOrdered: s.now(), Status: models.StatusOpen}
			if err := tx.CreateOrder(ctx, order); err != nil {
				return err
			}
			if err := tx.SetActiveOrder(ctx, userID, &order.ID); err != nil {
				return err
			}
		}
		orderID = order.ID

		line, err := tx.LineByProduct(ctx, order.ID, productID)
		if err != nil {
			return err
		}
		if line != nil {
			combined := line.Quantity + quantity
			if combined > product.Stock {
				return ErrCombinedQuantityExceedsStock
			}
			return tx.SetLineQuantity(ctx, line.ID, combined)
		}

		return tx.CreateLine(ctx, &models.CartProduct{
			UserID:    userID,
			ProductID: productID,
			OrderID:   order.ID,
			Quantity:  quantity,
		})
	})
	if err != nil {
		l.Warn("add_to_cart_failed", "quantity", quantity, "error", err)
		return nil, err
	}

	cart, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCart, idKey(userID), map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": productID,
		"quantity":  quantity,
	})
	l.Info("item_added_to_cart", "items_total", cart.ItemsTotal)
	return cart, nil
}

func (s *CartService) Update(ctx context.Context, userID, lineID uint, quantity int) (*Cart, *models.CartProduct, error) {
	if quantity <= 0 {
		return nil, nil, ErrInvalidQuantity
	}

	unlock := s.Locks.Lock(userID)
	defer unlock()

	var (
		orderID uint
		changed *models.CartProduct
	)
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		user, err := tx.LockUser(ctx, userID)
		if err != nil {
			return notFound(err, "user")
		}
		if user.ActiveOrderID == nil {
			return fmt.Errorf("cart item %d: %w", lineID, ErrNotFound)
		}
		orderID = *user.ActiveOrderID

		line, err := tx.LineInOrder(ctx, orderID, lineID)
		if err != nil {
			return notFound(err, "cart item")
		}
		if quantity > line.Product.Stock {
			return ErrInsufficientStock
		}
		line.Quantity = quantity
		changed = line
		return tx.SetLineQuantity(ctx, line.ID, quantity)
	})
	if err != nil {
		return nil, nil, err
	}

	cart, err := s.load(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	publish(ctx, s.Events, events.TopicCart, idKey(userID), map[string]any{
		"type":     "cart_item_changed",
		"userID":   userID,
		"itemID":   lineID,
		"quantity": quantity,
	})
	return cart, changed, nil
}

func (s *CartService) Remove(ctx context.Context, userID, lineID uint) (*Cart, *models.CartProduct, error) {
	unlock := s.Locks.Lock(userID)
	defer unlock()

	var (
		orderID uint
		removed *models.CartProduct
	)
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		user, err := tx.LockUser(ctx, userID)
		if err != nil {
			return notFound(err, "user")
		}
		if user.ActiveOrderID == nil {
			return fmt.Errorf("cart item %d: %w", lineID, ErrNotFound)
		}
		orderID = *user.ActiveOrderID

		line, err := tx.LineInOrder(ctx, orderID, lineID)
		if err != nil {
			return notFound(err, "cart item")
		}
		removed = line
		return tx.DeleteLine(ctx, line.ID)
	})
	if err != nil {
		return nil, nil, err
	}

	cart, err := s.load(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	publish(ctx, s.Events, events.TopicCart, idKey(userID), map[string]any{
		"type":      "cart_item_removed",
		"userID":    userID,
		"productID": removed.ProductID,
	})
	return cart, removed, nil
}

func (s *CartService) load(ctx context.Context, orderID uint) (*Cart, error) {
	o, err := s.Repo.OrderWithItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return newCart(o), nil
}
