package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/util"
)

// Money renders an amount with two decimals.
func Money(d decimal.Decimal) string { return d.StringFixed(2) }

type MessageResponse struct {
	Message string `json:"message"`
}

type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type CategoryResponse struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Ordering int    `json:"ordering"`
}

func Category(c models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Title: c.Title, Slug: c.Slug, Ordering: c.Ordering}
}

type ProductResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	Price          string    `json:"price"`
	DiscountPrice  *string   `json:"discount_price"`
	EffectivePrice string    `json:"effective_price"`
	Stock          int       `json:"stock"`
	Image          string    `json:"image"`
	CategoryID     uint      `json:"category_id"`
	CategorySlug   string    `json:"category_slug,omitempty"`
	DateAdded      time.Time `json:"date_added"`
}

func Product(p models.Product) ProductResponse {
	out := ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Price:          Money(p.Price),
		EffectivePrice: Money(p.EffectivePrice()),
		Stock:          p.Stock,
		Image:          p.Image,
		CategoryID:     p.CategoryID,
		CategorySlug:   p.Category.Slug,
		DateAdded:      p.CreatedAt,
	}
	if p.DiscountPrice.Valid {
		d := Money(p.DiscountPrice.Decimal)
		out.DiscountPrice = &d
	}
	return out
}

func Products(items []models.Product) []ProductResponse {
	out := make([]ProductResponse, len(items))
	for i, p := range items {
		out[i] = Product(p)
	}
	return out
}

type ProductListResponse struct {
	Category *CategoryResponse `json:"category,omitempty"`
	Data     []ProductResponse `json:"data"`
	Meta     util.Meta         `json:"meta"`
}

type ReviewResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Subject   string    `json:"subject"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	UpdatedAt time.Time `json:"updated_at"`
}

func Reviews(items []models.Review) []ReviewResponse {
	out := make([]ReviewResponse, len(items))
	for i, r := range items {
		out[i] = ReviewResponse{ID: r.ID, UserID: r.UserID, Subject: r.Subject, Comment: r.Comment, Rating: r.Rating, UpdatedAt: r.UpdatedAt}
	}
	return out
}

type ReviewPageResponse struct {
	Data []ReviewResponse `json:"data"`
	Meta util.Meta        `json:"meta"`
}

type ReviewStatsResponse struct {
	Average string   `json:"average"`
	Stars   [5]int64 `json:"stars"`
	Count   int64    `json:"count"`
}

type ProductPageResponse struct {
	Product     ProductResponse     `json:"product"`
	Stats       ReviewStatsResponse `json:"stats"`
	Reviews     ReviewPageResponse  `json:"reviews"`
	Suggestions []ProductResponse   `json:"suggestions"`
}

type CartItemResponse struct {
	ID          uint            `json:"id"`
	Product     ProductResponse `json:"product"`
	Quantity    int             `json:"quantity"`
	LineTotal   string          `json:"line_total"`
	AmountSaved string          `json:"amount_saved"`
}

func CartItem(cp models.CartProduct) CartItemResponse {
	return CartItemResponse{
		ID:          cp.ID,
		Product:     Product(cp.Product),
		Quantity:    cp.Quantity,
		LineTotal:   Money(cp.LineTotal()),
		AmountSaved: Money(cp.AmountSaved()),
	}
}

type CartResponse struct {
	OrderID    uint               `json:"order_id,omitempty"`
	Items      []CartItemResponse `json:"items"`
	ItemsTotal int                `json:"items_total"`
	Total      string             `json:"total"`
	Message    string             `json:"message,omitempty"`
}

func Cart(o *models.Order, items []models.CartProduct, total decimal.Decimal) CartResponse {
	out := CartResponse{Items: make([]CartItemResponse, len(items)), ItemsTotal: len(items), Total: Money(total)}
	if o != nil {
		out.OrderID = o.ID
	}
	for i, it := range items {
		out.Items[i] = CartItem(it)
	}
	return out
}

type RegionResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type AddressResponse struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Address   string         `json:"address"`
	Region    RegionResponse `json:"region"`
	SubRegion RegionResponse `json:"subregion"`
	Zip       string         `json:"zip"`
}

func Address(a models.Address) AddressResponse {
	return AddressResponse{
		ID:        a.ID,
		Name:      a.Name,
		Address:   a.Address,
		Region:    RegionResponse{ID: a.Region.ID, Name: a.Region.Name},
		SubRegion: RegionResponse{ID: a.SubRegion.ID, Name: a.SubRegion.Name},
		Zip:       a.Zip,
	}
}

func Addresses(items []models.Address) []AddressResponse {
	out := make([]AddressResponse, len(items))
	for i, a := range items {
		out[i] = Address(a)
	}
	return out
}

type CardResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
	Expiry string `json:"expiry"`
}

func Cards(items []models.Card) []CardResponse {
	out := make([]CardResponse, len(items))
	for i, c := range items {
		out[i] = CardResponse{ID: c.ID, Name: c.Name, Number: c.Masked(), Expiry: c.Expiry}
	}
	return out
}

type WalletResponse struct {
	Balance string         `json:"balance"`
	Cards   []CardResponse `json:"cards"`
	Message string         `json:"message,omitempty"`
}

type OrderResponse struct {
	ID              uint               `json:"id"`
	Status          string             `json:"status"`
	DateOrdered     time.Time          `json:"date_ordered"`
	Items           []CartItemResponse `json:"items"`
	Total           string             `json:"total"`
	ShippingAddress *AddressResponse   `json:"shipping_address,omitempty"`

	Ordered         bool `json:"ordered"`
	BeingDelivered  bool `json:"being_delivered"`
	Received        bool `json:"received"`
	RefundRequested bool `json:"refund_requested"`
	RefundGranted   bool `json:"refund_granted"`
}

func Order(o models.Order) OrderResponse {
	out := OrderResponse{
		ID:              o.ID,
		Status:          string(o.Status),
		DateOrdered:     o.DateOrdered,
		Items:           make([]CartItemResponse, len(o.Items)),
		Total:           Money(o.Total()),
		Ordered:         o.Status.Ordered(),
		BeingDelivered:  o.Status.BeingDelivered(),
		Received:        o.Received(),
		RefundRequested: o.Status.RefundRequested(),
		RefundGranted:   o.Status.RefundGranted(),
	}
	for i, it := range o.Items {
		out.Items[i] = CartItem(it)
	}
	if o.ShippingAddress != nil {
		a := Address(*o.ShippingAddress)
		out.ShippingAddress = &a
	}
	return out
}

func Orders(items []models.Order) []OrderResponse {
	out := make([]OrderResponse, len(items))
	for i, o := range items {
		out[i] = Order(o)
	}
	return out
}

type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func User(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Role: u.Role}
}

// ProductActionRequest is the product page form: add to cart or submit a review.
type ProductActionRequest struct {
	Action   string `json:"action" form:"action"`
	Quantity int    `json:"quantity" form:"quantity"`
	Subject  string `json:"subject" form:"subject"`
	Comment  string `json:"comment" form:"comment"`
	Rating   int    `json:"rating" form:"rating"`
}

// CartActionRequest changes or deletes one cart line.
type CartActionRequest struct {
	Action   string `json:"action" form:"action"`
	ItemID   uint   `json:"item_id" form:"item_id"`
	Quantity int    `json:"quantity" form:"quantity"`
}

type CheckoutRequest struct {
	Action    string `json:"action" form:"action"`
	AddressID uint   `json:"address_id" form:"address_id"`
	CardID    uint   `json:"card_id" form:"card_id"`
	SaveCard  bool   `json:"save_card" form:"save_card"`

	Name   string `json:"name" form:"name"`
	Number string `json:"number" form:"number"`
	Cvc    string `json:"cvc" form:"cvc"`
	Expiry string `json:"expiry" form:"expiry"`
}

type CheckoutSummaryResponse struct {
	Cart      CartResponse      `json:"cart"`
	Addresses []AddressResponse `json:"addresses"`
	Cards     []CardResponse    `json:"cards"`
	Balance   string            `json:"balance"`
}

type TopUpRequest struct {
	Amount string `json:"amount" form:"amount"`
}

type RefundRequest struct {
	Reason string `json:"reason" form:"reason"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type CategoryRequest struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Ordering int    `json:"ordering"`
}

type RegionRequest struct {
	Name string `json:"name"`
}

type ImportResponse struct {
	Created int `json:"created_count"`
	Updated int `json:"updated_count"`
	Skipped int `json:"skipped_count"`
}
