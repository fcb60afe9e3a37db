package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/stationery_shop/internal/models"
)

func (r *GormRepo) ListAddresses(ctx context.Context, userID uint) ([]models.Address, error) {
	var items []models.Address
	if err := r.DB.WithContext(ctx).Preload("Region").Preload("SubRegion").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) UserAddress(ctx context.Context, userID, id uint) (*models.Address, error) {
	var a models.Address
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormRepo) CreateAddress(ctx context.Context, a *models.Address) error {
	return r.DB.WithContext(ctx).Omit("Region", "SubRegion").Create(a).Error
}

// UnlinkAddress clears the owner and keeps the row for orders that ship to it.
func (r *GormRepo) UnlinkAddress(ctx context.Context, userID, id uint) error {
	res := r.DB.WithContext(ctx).Model(&models.Address{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("user_id", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ListRegions(ctx context.Context) ([]models.Region, error) {
	var items []models.Region
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetRegion(ctx context.Context, id uint) (*models.Region, error) {
	var reg models.Region
	if err := r.DB.WithContext(ctx).First(&reg, id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *GormRepo) GetSubRegion(ctx context.Context, id uint) (*models.SubRegion, error) {
	var sr models.SubRegion
	if err := r.DB.WithContext(ctx).First(&sr, id).Error; err != nil {
		return nil, err
	}
	return &sr, nil
}

func (r *GormRepo) ListSubRegions(ctx context.Context, regionID uint) ([]models.SubRegion, error) {
	var items []models.SubRegion
	if err := r.DB.WithContext(ctx).Where("region_id = ?", regionID).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateRegion(ctx context.Context, reg *models.Region) error {
	return r.DB.WithContext(ctx).Create(reg).Error
}

func (r *GormRepo) CreateSubRegion(ctx context.Context, sr *models.SubRegion) error {
	return r.DB.WithContext(ctx).Create(sr).Error
}
