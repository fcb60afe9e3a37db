package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username      string `gorm:"unique;not null"          json:"username"`
	Email         string `gorm:"size:254"                 json:"email"`
	FirstName     string `gorm:"size:150"                 json:"first_name"`
	LastName      string `gorm:"size:150"                 json:"last_name"`
	PasswordHash  string `gorm:"not null"                 json:"-"`
	Role          string `gorm:"not null;default:user"    json:"role"`
	ActiveOrderID *uint  `gorm:"index"                    json:"active_order_id,omitempty"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"            json:"id"`
	UserID    uint   `gorm:"index;not null"        json:"user_id"`
	Token     string `gorm:"unique;not null"       json:"-"`
	JTI       string `gorm:"uniqueIndex;not null"  json:"jti"`
	ExpiresAt int64  `gorm:"not null"              json:"expires_at"`
	Revoked   bool   `gorm:"default:false"         json:"revoked"`
}

type Category struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	Title    string `gorm:"size:255;unique;not null"  json:"title"`
	Slug     string `gorm:"size:255;unique;not null"  json:"slug"`
	Ordering int    `gorm:"not null;default:1"        json:"ordering"`
}

type Product struct {
	ID            uint                `gorm:"primaryKey;autoIncrement"       json:"id"`
	Name          string              `gorm:"size:100;not null"              json:"name"`
	Slug          string              `gorm:"size:100;uniqueIndex;not null"  json:"slug"`
	Description   string              `gorm:"type:text"                      json:"description"`
	Price         decimal.Decimal     `gorm:"type:numeric(12,2);not null"    json:"price"`
	DiscountPrice decimal.NullDecimal `gorm:"type:numeric(12,2)"             json:"discount_price"`
	Stock         int                 `gorm:"not null;default:0;check:stock>=0" json:"stock"`
	Image         string              `gorm:"size:255;default:default.jpg"   json:"image"`
	CategoryID    uint                `gorm:"index;not null"                 json:"category_id"`
	Category      Category            `gorm:"foreignKey:CategoryID"          json:"-"`
	CreatedAt     time.Time           `                                      json:"date_added"`
}

// EffectivePrice is the discount price when one is set, otherwise the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice.Valid && !p.DiscountPrice.Decimal.IsZero() {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

type CartProduct struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"   json:"id"`
	UserID    uint    `gorm:"index;not null"             json:"user_id"`
	ProductID uint    `gorm:"index;not null"             json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID"       json:"product"`
	OrderID   uint    `gorm:"index;not null"             json:"order_id"`
	Quantity  int     `gorm:"not null;default:1;check:quantity>0" json:"quantity"`
	Ordered   bool    `gorm:"not null;default:false"     json:"ordered"`
}

// LineTotal is quantity times the effective unit price, rounded to cents.
func (cp CartProduct) LineTotal() decimal.Decimal {
	return cp.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(cp.Quantity))).Round(2)
}

// AmountSaved is what the discount takes off the line.
func (cp CartProduct) AmountSaved() decimal.Decimal {
	full := cp.Product.Price.Mul(decimal.NewFromInt(int64(cp.Quantity))).Round(2)
	return full.Sub(cp.LineTotal())
}

type Order struct {
	ID                uint          `gorm:"primaryKey;autoIncrement"       json:"id"`
	UserID            uint          `gorm:"index;not null"                 json:"user_id"`
	Items             []CartProduct `gorm:"foreignKey:OrderID"             json:"items"`
	DateOrdered       time.Time     `gorm:"not null"                       json:"date_ordered"`
	Status            OrderStatus   `gorm:"size:32;not null;default:OPEN;index" json:"status"`
	ShippingAddressID *uint         `                                      json:"shipping_address_id,omitempty"`
	ShippingAddress   *Address      `gorm:"foreignKey:ShippingAddressID;constraint:OnDelete:SET NULL" json:"shipping_address,omitempty"`
	DeliveredAt       *time.Time    `                                      json:"delivered_at,omitempty"`
}

// Received stays true once the order was delivered, even after a refund request.
func (o Order) Received() bool { return o.DeliveredAt != nil }

// Total sums the rounded line totals and rounds the result to cents.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total.Round(2)
}

type Region struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name string `gorm:"size:200;unique;not null"  json:"name"`
}

type SubRegion struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	RegionID uint   `gorm:"index;not null"            json:"region_id"`
	Name     string `gorm:"size:200;not null"         json:"name"`
}

type Address struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID      *uint     `gorm:"index"                     json:"user_id"`
	Name        string    `gorm:"size:100"                  json:"name"`
	Address     string    `gorm:"size:400;not null"         json:"address"`
	RegionID    uint      `gorm:"not null"                  json:"region_id"`
	Region      Region    `gorm:"foreignKey:RegionID;constraint:OnDelete:RESTRICT"    json:"region"`
	SubRegionID uint      `gorm:"not null"                  json:"subregion_id"`
	SubRegion   SubRegion `gorm:"foreignKey:SubRegionID;constraint:OnDelete:RESTRICT" json:"subregion"`
	Zip         string    `gorm:"size:50;not null"          json:"zip"`
}

type Balance struct {
	ID      uint            `gorm:"primaryKey;autoIncrement"            json:"id"`
	UserID  uint            `gorm:"uniqueIndex;not null"                json:"user_id"`
	Balance decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"balance"`
}

type Card struct {
	ID     uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID *uint  `gorm:"index"                     json:"user_id"`
	Name   string `gorm:"size:100;not null"         json:"name"`
	Number string `gorm:"size:19;not null"          json:"-"`
	Cvc    string `gorm:"size:4;not null"           json:"-"`
	Expiry string `gorm:"size:50;not null"          json:"expiry"`
}

// Masked hides everything but the last group of the card number.
func (c Card) Masked() string {
	r := []rune(c.Number)
	if len(r) < 4 {
		return c.Number
	}
	return "**** **** **** " + string(r[len(r)-4:])
}

type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                json:"id"`
	ProductID uint      `gorm:"uniqueIndex:idx_review_product_user;not null" json:"product_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_review_product_user;not null" json:"user_id"`
	Subject   string    `gorm:"size:50"                                 json:"subject"`
	Comment   string    `gorm:"size:400"                                json:"comment"`
	Rating    int       `gorm:"not null;default:1"                      json:"rating"`
	CreatedAt time.Time `                                               json:"created_at"`
	UpdatedAt time.Time `gorm:"index"                                   json:"updated_at"`
}

type Refund struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	OrderID  uint   `gorm:"uniqueIndex;not null"      json:"order_id"`
	Reason   string `gorm:"type:text;not null"        json:"reason"`
	Accepted bool   `gorm:"not null;default:false"    json:"accepted"`
}

const (
	PaymentWallet = "wallet"
	PaymentCard   = "card"
)

type Payment struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"     json:"id"`
	OrderID   uint            `gorm:"uniqueIndex;not null"         json:"order_id"`
	UserID    uint            `gorm:"index;not null"               json:"user_id"`
	Method    string          `gorm:"size:16;not null"             json:"method"`
	CardID    *uint           `                                    json:"card_id,omitempty"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"amount"`
	CreatedAt time.Time       `                                    json:"created_at"`
}

// All lists every model in migration order.
func All() []any {
	return []any{
		&User{}, &RefreshToken{}, &Category{}, &Product{}, &Region{}, &SubRegion{},
		&Address{}, &Order{}, &CartProduct{}, &Balance{}, &Card{}, &Review{}, &Refund{}, &Payment{},
	}
}
