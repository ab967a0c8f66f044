package trade

import (
	"time"

	"github.com/marketplace/backend/internal/domain/trade"
)

// BasketItemRequest is one (product, quantity) pair of a basket request
type BasketItemRequest struct {
	Product  int64 `json:"product"`
	Quantity int64 `json:"quantity"`
}

// BasketItemsRequest represents a request to add or replace basket lines.
// Items is validated by the service so a missing list reports MISSING_ITEMS.
type BasketItemsRequest struct {
	Items []BasketItemRequest `json:"items"`
}

// ToItemQuantities converts the request lines to domain values
func (r BasketItemsRequest) ToItemQuantities() []trade.ItemQuantity {
	if r.Items == nil {
		return nil
	}
	items := make([]trade.ItemQuantity, len(r.Items))
	for i, it := range r.Items {
		items[i] = trade.ItemQuantity{ProductID: it.Product, Quantity: it.Quantity}
	}
	return items
}

// RemoveBasketItemsRequest represents a request to delete basket lines by product id
type RemoveBasketItemsRequest struct {
	Items []int64 `json:"items"`
}

// ChangeStatusRequest represents an operator status change
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ShopOrdersFilter represents the optional status filter of the shop order view
type ShopOrdersFilter struct {
	Status string `form:"status"`
}

// BasketLineResponse is one basket line
type BasketLineResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	PriceRCC    int64  `json:"price_rcc"`
	Quantity    int64  `json:"quantity"`
}

// BasketResponse represents the current basket
type BasketResponse struct {
	Empty      bool                 `json:"empty,omitempty"`
	Items      []BasketLineResponse `json:"items"`
	TotalPrice int64                `json:"total_price"`
}

// EmptyBasketResponse is returned when the user has no basket or no lines
func EmptyBasketResponse() *BasketResponse {
	return &BasketResponse{Empty: true, Items: []BasketLineResponse{}, TotalPrice: 0}
}

// OrderLineResponse is one line of a placed order
type OrderLineResponse struct {
	ProductID   int64  `json:"product_id"`
	ExternalID  int64  `json:"external_id"`
	ProductName string `json:"product_name"`
	ShopID      int64  `json:"shop_id"`
	PriceRCC    int64  `json:"price_rcc"`
	Quantity    int64  `json:"quantity"`
}

// OrderResponse represents a placed order in API responses
type OrderResponse struct {
	ID         int64               `json:"id"`
	UserID     int64               `json:"user_id"`
	Status     string              `json:"status"`
	Date       time.Time           `json:"date"`
	ContactID  *int64              `json:"contact_id,omitempty"`
	Items      []OrderLineResponse `json:"items"`
	TotalPrice int64               `json:"total_price"`
}

// ShopOrderContactResponse is the delivery contact shown to a shop
type ShopOrderContactResponse struct {
	City   string `json:"city"`
	Street string `json:"street"`
	House  string `json:"house"`
	Phone  string `json:"phone"`
}

// ShopOrderProductResponse is a line of the shop order view
type ShopOrderProductResponse struct {
	ExternalID int64  `json:"external_id"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
}

// ShopOrderResponse is an order as seen by one shop
type ShopOrderResponse struct {
	OrderID   int64                      `json:"order_id"`
	UserEmail string                     `json:"user_email"`
	Contact   *ShopOrderContactResponse  `json:"contact"`
	Date      time.Time                  `json:"date"`
	Status    string                     `json:"status"`
	Products  []ShopOrderProductResponse `json:"products"`
}

// ToBasketResponse converts a basket order; no lines yields the empty form
func ToBasketResponse(o *trade.Order) *BasketResponse {
	if o == nil || len(o.Items) == 0 {
		return EmptyBasketResponse()
	}
	lines := make([]BasketLineResponse, len(o.Items))
	for i, it := range o.Items {
		lines[i] = BasketLineResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			PriceRCC:    it.PriceRCC,
			Quantity:    it.Quantity,
		}
	}
	return &BasketResponse{Items: lines, TotalPrice: o.Total()}
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *trade.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Items))
	for i, it := range o.Items {
		lines[i] = OrderLineResponse{
			ProductID:   it.ProductID,
			ExternalID:  it.ExternalID,
			ProductName: it.ProductName,
			ShopID:      it.ShopID,
			PriceRCC:    it.PriceRCC,
			Quantity:    it.Quantity,
		}
	}
	return OrderResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		Status:     o.Status.String(),
		Date:       o.Date,
		ContactID:  o.ContactID,
		Items:      lines,
		TotalPrice: o.Total(),
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}

// ToShopOrderResponses converts the shop order view
func ToShopOrderResponses(orders []trade.ShopOrder) []ShopOrderResponse {
	responses := make([]ShopOrderResponse, len(orders))
	for i, o := range orders {
		products := make([]ShopOrderProductResponse, len(o.Products))
		for j, p := range o.Products {
			products[j] = ShopOrderProductResponse{ExternalID: p.ExternalID, Name: p.Name, Quantity: p.Quantity}
		}
		var contact *ShopOrderContactResponse
		if o.Contact != nil {
			contact = &ShopOrderContactResponse{
				City:   o.Contact.City,
				Street: o.Contact.Street,
				House:  o.Contact.House,
				Phone:  o.Contact.Phone,
			}
		}
		responses[i] = ShopOrderResponse{
			OrderID:   o.OrderID,
			UserEmail: o.UserEmail,
			Contact:   contact,
			Date:      o.Date,
			Status:    o.Status.String(),
			Products:  products,
		}
	}
	return responses
}
