package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/stationery_shop/internal/models"
)

// UpsertReview keeps one review per (product, user), overwriting the previous one.
func (r *GormRepo) UpsertReview(ctx context.Context, rv *models.Review) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"subject", "comment", "rating", "updated_at"}),
	}).Create(rv).Error
}

func (r *GormRepo) UserReview(ctx context.Context, productID, userID uint) (*models.Review, error) {
	var rv models.Review
	if err := r.DB.WithContext(ctx).Where("product_id = ? AND user_id = ?", productID, userID).First(&rv).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

type RatingCount struct {
	Rating int
	Count  int64
}

func (r *GormRepo) RatingCounts(ctx context.Context, productID uint) ([]RatingCount, error) {
	var rows []RatingCount
	if err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Group("rating").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepo) ListReviews(ctx context.Context, productID uint, offset, limit int) (int64, []models.Review, error) {
	q := r.DB.WithContext(ctx).Model(&models.Review{}).
		Where("product_id = ? AND comment <> ?", productID, "")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Review
	if err := q.Order("updated_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
