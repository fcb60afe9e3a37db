package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/repo"
	"github.com/Skotchmaster/stationery_shop/internal/testutil"
)

var fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

type env struct {
	db     *gorm.DB
	repo   *repo.GormRepo
	events *testutil.Recorder
	locks  *UserLocks

	cart     *CartService
	checkout *CheckoutService
	wallet   *WalletService
	orders   *OrderService
	reviews  *ReviewService
	address  *AddressService

	cat *models.Category
}

func newEnv(t *testing.T) *env {
	t.Helper()

	gdb := testutil.NewDB(t)
	r := &repo.GormRepo{DB: gdb}
	rec := &testutil.Recorder{}
	locks := NewUserLocks()
	now := func() time.Time { return fixedNow }

	return &env{
		db:       gdb,
		repo:     r,
		events:   rec,
		locks:    locks,
		cart:     &CartService{Repo: r, Locks: locks, Events: rec, Now: now},
		checkout: &CheckoutService{Repo: r, Locks: locks, Events: rec, Now: now},
		wallet:   &WalletService{Repo: r, Locks: locks, Events: rec, Now: now},
		orders:   &OrderService{Repo: r, Events: rec, Now: now},
		reviews:  &ReviewService{Repo: r},
		address:  &AddressService{Repo: r},
		cat:      testutil.Category(t, gdb, "pens"),
	}
}

// finalized puts one product in the user's cart and pays for it from the wallet.
func (e *env) finalized(t *testing.T, user *models.User, products ...*models.Product) *models.Order {
	t.Helper()

	ctx := context.Background()
	for _, p := range products {
		if _, err := e.cart.Add(ctx, user.ID, p.ID, 1); err != nil {
			t.Fatalf("add %s: %v", p.Slug, err)
		}
	}
	testutil.SetBalance(t, e.db, user.ID, "1000.00")
	addr := testutil.Address(t, e.db, user.ID)
	o, err := e.checkout.Checkout(ctx, user.ID, addr.ID, PaymentRequest{Method: models.PaymentWallet})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	return o
}
