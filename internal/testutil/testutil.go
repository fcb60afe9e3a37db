// Package testutil builds in-memory databases and fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/stationery_shop/internal/db"
	"github.com/Skotchmaster/stationery_shop/internal/hash"
	"github.com/Skotchmaster/stationery_shop/internal/models"
)

func init() { hash.Cost = bcrypt.MinCost }

func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

const Password = "password123"

func User(t testing.TB, gdb *gorm.DB, username string) *models.User {
	t.Helper()

	pw, err := hash.HashPassword(Password)
	require.NoError(t, err)
	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: pw, Role: models.RoleUser}
	require.NoError(t, gdb.Create(u).Error)
	require.NoError(t, gdb.Create(&models.Balance{UserID: u.ID, Balance: decimal.Zero}).Error)
	return u
}

func Admin(t testing.TB, gdb *gorm.DB, username string) *models.User {
	t.Helper()

	u := User(t, gdb, username)
	require.NoError(t, gdb.Model(u).Update("role", models.RoleAdmin).Error)
	u.Role = models.RoleAdmin
	return u
}

func SetBalance(t testing.TB, gdb *gorm.DB, userID uint, amount string) {
	t.Helper()

	require.NoError(t, gdb.Model(&models.Balance{}).
		Where("user_id = ?", userID).
		Update("balance", decimal.RequireFromString(amount)).Error)
}

func Category(t testing.TB, gdb *gorm.DB, slug string) *models.Category {
	t.Helper()

	c := &models.Category{Title: slug, Slug: slug}
	require.NoError(t, gdb.Create(c).Error)
	return c
}

func Product(t testing.TB, gdb *gorm.DB, cat *models.Category, slug, price string, stock int) *models.Product {
	t.Helper()

	p := &models.Product{
		Name:       slug,
		Slug:       slug,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: cat.ID,
	}
	require.NoError(t, gdb.Omit("Category").Create(p).Error)
	return p
}

var regionSeq atomic.Int64

func Address(t testing.TB, gdb *gorm.DB, userID uint) *models.Address {
	t.Helper()

	reg := &models.Region{Name: fmt.Sprintf("Region %d", regionSeq.Add(1))}
	require.NoError(t, gdb.Create(reg).Error)
	sub := &models.SubRegion{RegionID: reg.ID, Name: "Sub"}
	require.NoError(t, gdb.Create(sub).Error)

	a := &models.Address{UserID: &userID, Address: "1 Paper St", RegionID: reg.ID, SubRegionID: sub.ID, Zip: "10001"}
	require.NoError(t, gdb.Omit("Region", "SubRegion").Create(a).Error)
	return a
}

func Stock(t testing.TB, gdb *gorm.DB, productID uint) int {
	t.Helper()

	var p models.Product
	require.NoError(t, gdb.First(&p, productID).Error)
	return p.Stock
}

func Balance(t testing.TB, gdb *gorm.DB, userID uint) decimal.Decimal {
	t.Helper()

	var b models.Balance
	require.NoError(t, gdb.Where("user_id = ?", userID).First(&b).Error)
	return b.Balance
}

type Event struct {
	Topic string
	Key   string
	Body  map[string]any
}

// Recorder is an events.Publisher that keeps everything in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	body, _ := event.(map[string]any)
	r.events = append(r.events, Event{Topic: topic, Key: key, Body: body})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events(topic string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}
