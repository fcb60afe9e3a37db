package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Skotchmaster/stationery_shop/internal/cache"
	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/repo"
)

const (
	maxSuggestions    = 4
	suggestionTTL     = 5 * time.Minute
	DefaultMinSupport = 0.1
)

type Recommender interface {
	Suggest(ctx context.Context, productID uint) ([]models.Product, error)
}

// BasketRecommender suggests products that finalized orders bought together with the given one.
type BasketRecommender struct {
	Repo       *repo.GormRepo
	Cache      cache.Cache
	MinSupport float64
}

type scored struct {
	id      uint
	support float64
}

func suggestionKey(productID uint) string { return fmt.Sprintf("recommend:%d", productID) }

func (r *BasketRecommender) Suggest(ctx context.Context, productID uint) ([]models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "recommend", "product_id", productID)

	var ids []uint
	if r.Cache != nil {
		hit, err := r.Cache.Get(ctx, suggestionKey(productID), &ids)
		if err != nil {
			l.Warn("recommend_cache_get_failed", "error", err)
		}
		if hit {
			return r.Repo.ProductsByIDs(ctx, ids)
		}
	}

	ids, err := r.rank(ctx, productID)
	if err != nil {
		return nil, err
	}

	if r.Cache != nil {
		if err := r.Cache.Set(ctx, suggestionKey(productID), ids, suggestionTTL); err != nil {
			l.Warn("recommend_cache_set_failed", "error", err)
		}
	}
	return r.Repo.ProductsByIDs(ctx, ids)
}

// rank keeps partners whose support reaches MinSupport with lift of at least 1.
func (r *BasketRecommender) rank(ctx context.Context, productID uint) ([]uint, error) {
	b, err := r.Repo.BasketStats(ctx, productID)
	if err != nil {
		return nil, err
	}
	ids := []uint{}
	if b.Orders == 0 || b.Product == 0 {
		return ids, nil
	}

	minSupport := r.MinSupport
	if minSupport <= 0 {
		minSupport = DefaultMinSupport
	}

	n := float64(b.Orders)
	supP := float64(b.Product) / n
	var candidates []scored
	for _, t := range b.Together {
		partner := b.Partners[t.ProductID]
		if partner == 0 {
			continue
		}
		support := float64(t.Orders) / n
		lift := support / (supP * (float64(partner) / n))
		if support >= minSupport && lift >= 1 {
			candidates = append(candidates, scored{id: t.ProductID, support: support})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].support != candidates[j].support {
			return candidates[i].support > candidates[j].support
		}
		return candidates[i].id < candidates[j].id
	})
	for i := 0; i < len(candidates) && i < maxSuggestions; i++ {
		ids = append(ids, candidates[i].id)
	}
	return ids, nil
}
