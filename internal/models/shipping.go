package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type DeliveryMode string

const (
	DeliveryPharmacyPickup DeliveryMode = "PHARMACY_PICKUP"
	DeliveryHome           DeliveryMode = "HOME"
	DeliveryRelayPoint     DeliveryMode = "RELAY_POINT"
)

func ParseDeliveryMode(s string) (DeliveryMode, bool) {
	m := DeliveryMode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case DeliveryPharmacyPickup, DeliveryHome, DeliveryRelayPoint:
		return m, true
	}
	return "", false
}

// ShippingRate is one weight bracket, inclusive on both ends.
type ShippingRate struct {
	ID        int64           `json:"id"`
	MethodID  int64           `json:"methodId"`
	MinWeight decimal.Decimal `json:"minWeight"`
	MaxWeight decimal.Decimal `json:"maxWeight"`
	Price     decimal.Decimal `json:"price"`
	Position  int             `json:"position"`
}

type ShippingMethod struct {
	ID                    int64            `json:"id"`
	Mode                  DeliveryMode     `json:"mode"`
	Name                  string           `json:"name"`
	IsActive              bool             `json:"isActive"`
	FreeShippingThreshold *decimal.Decimal `json:"freeShippingThreshold,omitempty"`
	Rates                 []ShippingRate   `json:"rates"`
}

type ShippingCost struct {
	Cost          decimal.Decimal  `json:"cost"`
	IsFree        bool             `json:"isFree"`
	FreeThreshold *decimal.Decimal `json:"freeThreshold"`
}
