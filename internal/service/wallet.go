package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/stationery_shop/internal/events"
	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/repo"
)

type WalletService struct {
	Repo   *repo.GormRepo
	Locks  *UserLocks
	Events events.Publisher
	Now    func() time.Time
}

func (s *WalletService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *WalletService) Balance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	b, err := s.Repo.GetBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, notFound(err, "wallet")
	}
	return b.Balance, nil
}

func (s *WalletService) TopUp(ctx context.Context, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	l := logging.FromContext(ctx).With("svc", "wallet.top_up", "user_id", userID)

	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	unlock := s.Locks.Lock(userID)
	defer unlock()

	var next decimal.Decimal
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		b, err := tx.LockBalance(ctx, userID)
		if err != nil {
			return notFound(err, "wallet")
		}
		next = b.Balance.Add(amount).Round(2)
		return tx.SetBalance(ctx, userID, next)
	})
	if err != nil {
		l.Warn("top_up_failed", "error", err)
		return decimal.Zero, err
	}

	publish(ctx, s.Events, events.TopicWallet, idKey(userID), map[string]any{
		"type":    "wallet_topped_up",
		"userID":  userID,
		"amount":  amount.StringFixed(2),
		"balance": next.StringFixed(2),
	})
	return next, nil
}

func debit(ctx context.Context, tx *repo.GormRepo, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	b, err := tx.LockBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, notFound(err, "wallet")
	}
	if b.Balance.LessThan(amount) {
		return b.Balance, ErrInsufficientBalance
	}
	next := b.Balance.Sub(amount).Round(2)
	if err := tx.SetBalance(ctx, userID, next); err != nil {
		return decimal.Zero, err
	}
	return next, nil
}

func (s *WalletService) Debit(ctx context.Context, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}

	unlock := s.Locks.Lock(userID)
	defer unlock()

	var next decimal.Decimal
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		next, err = debit(ctx, tx, userID, amount)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return next, nil
}

func (s *WalletService) ListCards(ctx context.Context, userID uint) ([]models.Card, error) {
	return s.Repo.ListCards(ctx, userID)
}

func (s *WalletService) AddCard(ctx context.Context, userID uint, form CardForm) (*models.Card, error) {
	if err := ValidateCard(form, s.now()); err != nil {
		return nil, err
	}
	card := cardFromForm(userID, form)
	if err := s.Repo.CreateCard(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *WalletService) DeleteCard(ctx context.Context, userID, cardID uint) error {
	return notFound(s.Repo.DeleteCard(ctx, userID, cardID), "card")
}

func cardFromForm(userID uint, form CardForm) *models.Card {
	return &models.Card{
		UserID: &userID,
		Name:   form.Name,
		Number: form.Number,
		Cvc:    form.Cvc,
		Expiry: form.Expiry,
	}
}
