package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/stationery_shop/internal/events"
	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/repo"
)

type CheckoutService struct {
	Repo   *repo.GormRepo
	Locks  *UserLocks
	Events events.Publisher
	Now    func() time.Time
}

type PaymentRequest struct {
	Method string // models.PaymentWallet or models.PaymentCard
	CardID uint   // saved card; zero when NewCard is set
	// NewCard is validated and charged; it is stored on the user when SaveCard is set.
	NewCard  *CardForm
	SaveCard bool
}

type Summary struct {
	Cart      *Cart
	Addresses []models.Address
	Cards     []models.Card
	Balance   decimal.Decimal
}

func (s *CheckoutService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *CheckoutService) Summary(ctx context.Context, userID uint) (*Summary, error) {
	user, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	o, err := openOrder(ctx, s.Repo, user)
	if err != nil {
		return nil, err
	}
	addrs, err := s.Repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	cards, err := s.Repo.ListCards(ctx, userID)
	if err != nil {
		return nil, err
	}
	bal, err := s.Repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, notFound(err, "wallet")
	}
	return &Summary{Cart: newCart(o), Addresses: addrs, Cards: cards, Balance: bal.Balance}, nil
}

// Checkout turns the open cart into a finalized order. Payment, stock and order
// changes commit together or not at all.
func (s *CheckoutService) Checkout(ctx context.Context, userID, addressID uint, pay PaymentRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "checkout", "user_id", userID)
	now := s.now()

	switch pay.Method {
	case models.PaymentWallet:
	case models.PaymentCard:
		if pay.NewCard != nil {
			if err := ValidateCard(*pay.NewCard, now); err != nil {
				return nil, err
			}
		} else if pay.CardID == 0 {
			return nil, fmt.Errorf("card: %w", ErrRequired)
		}
	default:
		return nil, ErrInvalidPayment
	}

	unlock := s.Locks.Lock(userID)
	defer unlock()

	var (
		orderID   uint
		total     decimal.Decimal
		committed *models.Order
	)
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		user, err := tx.LockUser(ctx, userID)
		if err != nil {
			return notFound(err, "user")
		}
		order, err := openOrder(ctx, tx, user)
		if err != nil {
			return err
		}
		if order == nil || len(order.Items) == 0 {
			return ErrEmptyCart
		}
		orderID = order.ID

		addr, err := tx.UserAddress(ctx, userID, addressID)
		if err != nil {
			return notFound(err, "address")
		}

		items := append([]models.CartProduct(nil), order.Items...)
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
		ids := make([]uint, len(items))
		for i, it := range items {
			ids[i] = it.ProductID
		}
		stock, err := tx.LockProducts(ctx, ids)
		if err != nil {
			return err
		}
		for i := range items {
			p := stock[items[i].ProductID]
			if items[i].Quantity > p.Stock {
				return &StockExceededError{Product: p}
			}
			items[i].Product = p
		}

		total = models.Order{Items: items}.Total()
		payment := &models.Payment{OrderID: order.ID, UserID: userID, Method: pay.Method, Amount: total}

		switch {
		case pay.Method == models.PaymentWallet:
			if _, err := debit(ctx, tx, userID, total); err != nil {
				return err
			}
		case pay.NewCard != nil:
			if pay.SaveCard {
				card := cardFromForm(userID, *pay.NewCard)
				if err := tx.CreateCard(ctx, card); err != nil {
					return err
				}
				payment.CardID = &card.ID
			}
		default:
			card, err := tx.UserCard(ctx, userID, pay.CardID)
			if err != nil {
				return notFound(err, "card")
			}
			if err := CheckExpiry(card.Expiry, now); err != nil {
				return err
			}
			payment.CardID = &card.ID
		}

		for _, it := range items {
			ok, err := tx.DecrementStock(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &StockExceededError{Product: it.Product}
			}
		}

		if err := order.Transition(models.StatusFinalized); err != nil {
			return err
		}
		if err := tx.FinalizeOrder(ctx, order.ID, addressID, now); err != nil {
			return err
		}
		if err := tx.MarkItemsOrdered(ctx, order.ID); err != nil {
			return err
		}
		if err := tx.SetActiveOrder(ctx, userID, nil); err != nil {
			return err
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}

		for i := range items {
			items[i].Ordered = true
			items[i].Product.Stock -= items[i].Quantity
		}
		order.Items = items
		order.DateOrdered = now
		order.ShippingAddressID = &addr.ID
		order.ShippingAddress = addr
		committed = order
		return nil
	})
	if err != nil {
		l.Warn("checkout_failed", "method", pay.Method, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, events.TopicOrder, idKey(orderID), map[string]any{
		"type":    "order_finalized",
		"orderID": orderID,
		"userID":  userID,
		"method":  pay.Method,
		"total":   total.StringFixed(2),
	})
	l.Info("checkout_success", "order_id", orderID, "total", total.StringFixed(2))

	// the order is placed; a failed reload must not report the checkout as failed
	o, err := s.Repo.OrderWithItems(ctx, orderID)
	if err != nil {
		l.Error("checkout_reload_failed", "order_id", orderID, "error", err)
		return committed, nil
	}
	return o, nil
}
