package repo

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/stationery_shop/internal/models"
)

func (r *GormRepo) CreateBalance(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Create(&models.Balance{UserID: userID, Balance: decimal.Zero}).Error
}

func (r *GormRepo) GetBalance(ctx context.Context, userID uint) (*models.Balance, error) {
	var b models.Balance
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormRepo) LockBalance(ctx context.Context, userID uint) (*models.Balance, error) {
	var b models.Balance
	if err := r.DB.WithContext(ctx).Clauses(forUpdate()).Where("user_id = ?", userID).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormRepo) SetBalance(ctx context.Context, userID uint, amount decimal.Decimal) error {
	res := r.DB.WithContext(ctx).Model(&models.Balance{}).
		Where("user_id = ?", userID).
		Update("balance", amount)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ListCards(ctx context.Context, userID uint) ([]models.Card, error) {
	var cards []models.Card
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *GormRepo) UserCard(ctx context.Context, userID, cardID uint) (*models.Card, error) {
	var c models.Card
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", cardID, userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) CreateCard(ctx context.Context, c *models.Card) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) DeleteCard(ctx context.Context, userID, cardID uint) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", cardID, userID).Delete(&models.Card{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
