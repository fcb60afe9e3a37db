package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/stationery_shop/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Omit("Items", "ShippingAddress").Create(o).Error
}

// OrderWithItems loads an order with its line items and their products.
func (r *GormRepo) OrderWithItems(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Preload("ShippingAddress").
		Preload("ShippingAddress.Region").
		Preload("ShippingAddress.SubRegion").
		First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// LineByProduct returns nil without error when the product is not in the order.
func (r *GormRepo) LineByProduct(ctx context.Context, orderID, productID uint) (*models.CartProduct, error) {
	var line models.CartProduct
	err := r.DB.WithContext(ctx).
		Where("order_id = ? AND product_id = ? AND ordered = ?", orderID, productID, false).
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormRepo) LineInOrder(ctx context.Context, orderID, lineID uint) (*models.CartProduct, error) {
	var line models.CartProduct
	if err := r.DB.WithContext(ctx).Preload("Product").
		Where("id = ? AND order_id = ? AND ordered = ?", lineID, orderID, false).
		First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormRepo) CreateLine(ctx context.Context, line *models.CartProduct) error {
	return r.DB.WithContext(ctx).Omit("Product").Create(line).Error
}

func (r *GormRepo) SetLineQuantity(ctx context.Context, lineID uint, quantity int) error {
	return r.DB.WithContext(ctx).Model(&models.CartProduct{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

func (r *GormRepo) DeleteLine(ctx context.Context, lineID uint) error {
	return r.DB.WithContext(ctx).Delete(&models.CartProduct{}, lineID).Error
}
