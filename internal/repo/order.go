package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/stationery_shop/internal/models"
)

func (r *GormRepo) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items.Product").
		Preload("ShippingAddress").
		Where("user_id = ? AND status <> ?", userID, models.StatusOpen).
		Order("date_ordered DESC").Order("id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) LockOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Clauses(forUpdate()).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) FinalizeOrder(ctx context.Context, orderID, addressID uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.StatusOpen).
		Updates(map[string]any{
			"status":              models.StatusFinalized,
			"shipping_address_id": addressID,
			"date_ordered":        at,
		}).Error
}

func (r *GormRepo) MarkItemsOrdered(ctx context.Context, orderID uint) error {
	return r.DB.WithContext(ctx).Model(&models.CartProduct{}).
		Where("order_id = ?", orderID).
		Update("ordered", true).Error
}

// SetOrderStatus moves the order from one status to the next. A status changed concurrently
// yields gorm.ErrRecordNotFound.
func (r *GormRepo) SetOrderStatus(ctx context.Context, orderID uint, from, to models.OrderStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) MarkDelivered(ctx context.Context, orderID uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("delivered_at", at).Error
}

func (r *GormRepo) CreatePayment(ctx context.Context, p *models.Payment) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) PaymentByOrder(ctx context.Context, orderID uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) CreateRefund(ctx context.Context, rf *models.Refund) error {
	return r.DB.WithContext(ctx).Create(rf).Error
}

func (r *GormRepo) AcceptRefund(ctx context.Context, orderID uint) error {
	res := r.DB.WithContext(ctx).Model(&models.Refund{}).
		Where("order_id = ?", orderID).
		Update("accepted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) RefundByOrder(ctx context.Context, orderID uint) (*models.Refund, error) {
	var rf models.Refund
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&rf).Error; err != nil {
		return nil, err
	}
	return &rf, nil
}

type ProductOrders struct {
	ProductID uint
	Orders    int64
}

type Basket struct {
	Orders   int64
	Product  int64
	Together []ProductOrders
	Partners map[uint]int64
}

// BasketStats counts finalized orders overall, those holding productID, and for every
// other product bought with it, both the joint and the standalone order counts.
func (r *GormRepo) BasketStats(ctx context.Context, productID uint) (*Basket, error) {
	db := r.DB.WithContext(ctx)
	b := &Basket{Partners: map[uint]int64{}}

	if err := db.Model(&models.CartProduct{}).
		Where("ordered = ?", true).
		Distinct("order_id").
		Count(&b.Orders).Error; err != nil {
		return nil, err
	}
	if b.Orders == 0 {
		return b, nil
	}

	if err := db.Model(&models.CartProduct{}).
		Where("ordered = ? AND product_id = ?", true, productID).
		Distinct("order_id").
		Count(&b.Product).Error; err != nil {
		return nil, err
	}
	if b.Product == 0 {
		return b, nil
	}

	if err := db.Table("cart_products AS a").
		Select("b.product_id AS product_id, COUNT(DISTINCT a.order_id) AS orders").
		Joins("JOIN cart_products AS b ON b.order_id = a.order_id AND b.product_id <> a.product_id").
		Where("a.product_id = ? AND a.ordered = ? AND b.ordered = ?", productID, true, true).
		Group("b.product_id").
		Order("b.product_id ASC").
		Scan(&b.Together).Error; err != nil {
		return nil, err
	}
	if len(b.Together) == 0 {
		return b, nil
	}

	ids := make([]uint, len(b.Together))
	for i, t := range b.Together {
		ids[i] = t.ProductID
	}
	var singles []ProductOrders
	if err := db.Model(&models.CartProduct{}).
		Select("product_id, COUNT(DISTINCT order_id) AS orders").
		Where("ordered = ? AND product_id IN ?", true, ids).
		Group("product_id").
		Scan(&singles).Error; err != nil {
		return nil, err
	}
	for _, s := range singles {
		b.Partners[s.ProductID] = s.Orders
	}
	return b, nil
}
