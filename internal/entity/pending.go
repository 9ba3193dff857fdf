package domain

import (
	"encoding/json"
	"time"
)

// ImageRef accepts either a single image URL or an array of URLs on the
// wire; storefront clients send both shapes. First returns the primary ref.
type ImageRef []string

func (i *ImageRef) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if one == "" {
			*i = nil
			return nil
		}
		*i = ImageRef{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*i = ImageRef(many)
	return nil
}

func (i ImageRef) First() string {
	if len(i) == 0 {
		return ""
	}
	return i[0]
}

// CartItem is one entry of the cart as submitted at checkout time.
type CartItem struct {
	ProductID    string            `json:"productId"`
	Quantity     int               `json:"quantity"`
	Price        float64           `json:"price"`
	Name         string            `json:"name"`
	Image        ImageRef          `json:"image"`
	Category     string            `json:"category"`
	Measurements map[string]string `json:"measurements,omitempty"`
	GiftCard     *GiftCard         `json:"giftCard,omitempty"`
}

// PendingOrder is the ephemeral order state held between checkout-session
// creation and payment confirmation, keyed by correlation id.
type PendingOrder struct {
	CorrelationID string     `json:"correlationId"`
	Products      []CartItem `json:"products"`
	Email         string     `json:"email"`
	CustomerName  string     `json:"customerName"`
	CustomerPhone string     `json:"customerPhone"`
	Country       string     `json:"country"` // resolved final destination
	Wilayat       string     `json:"wilayat"`
	Description   string     `json:"description"`
	DepositMode   bool       `json:"depositMode"`
	GiftCard      *GiftCard  `json:"giftCard,omitempty"`
	GulfCountry   string     `json:"gulfCountry,omitempty"` // raw sub-selection, kept for older clients
	ShippingFee   float64    `json:"shippingFee"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ToOrderProduct normalizes a cart entry into the durable product shape.
func (c CartItem) ToOrderProduct() OrderProduct {
	return OrderProduct{
		ProductID:    c.ProductID,
		Quantity:     c.Quantity,
		Name:         c.Name,
		Price:        c.Price,
		Image:        c.Image.First(),
		Category:     c.Category,
		Measurements: c.Measurements,
		GiftCard:     NormalizeGiftCard(c.GiftCard),
	}
}
