package usecase

import (
	"github.com/shopspring/decimal"

	domain "github.com/bilal-alaabadi/mahen-b/internal/entity"
)

// ShippingRates holds the flat-fee tiers, in OMR.
type ShippingRates struct {
	Domestic      float64 // inside Oman
	Neighbor      float64 // UAE, flat regardless of item count
	GulfBase      float64 // other Gulf countries, first item
	GulfExtraItem float64 // other Gulf countries, each item beyond the first
}

// Fee computes the shipping fee for a destination and item count.
// Destinations that are neither domestic nor a recognized Gulf country
// fall back to the domestic fee, matching long-standing storefront
// behavior.
func (r ShippingRates) Fee(dest domain.Destination, itemCount int) float64 {
	if !dest.IsOman && dest.IsGulf {
		if dest.EffectiveGulf == domain.CountryUAE {
			return r.Neighbor
		}
		extra := itemCount - 1
		if extra < 0 {
			extra = 0
		}
		return r.GulfBase + float64(extra)*r.GulfExtraItem
	}
	return r.Domestic
}

// ItemCount sums per-product quantities, each floored at 1.
func ItemCount(items []domain.CartItem) int {
	n := 0
	for _, it := range items {
		q := it.Quantity
		if q < 1 {
			q = 1
		}
		n += q
	}
	return n
}

// MinorUnit converts between the major currency unit (OMR) and the
// gateway's minor unit (baisa). The floor guards against the gateway
// rejecting zero or near-zero line items.
type MinorUnit struct {
	Factor int64
	Floor  int64
}

// FromMajor converts an OMR amount to minor units, rounding to the
// nearest integer and clamping up to the floor.
func (m MinorUnit) FromMajor(v float64) int64 {
	u := decimal.NewFromFloat(v).
		Mul(decimal.NewFromInt(m.Factor)).
		Round(0).
		IntPart()
	if u < m.Floor {
		return m.Floor
	}
	return u
}

// ToMajor converts a gateway-reported minor-unit total back to OMR.
func (m MinorUnit) ToMajor(v int64) float64 {
	f, _ := decimal.NewFromInt(v).
		Div(decimal.NewFromInt(m.Factor)).
		Float64()
	return f
}
