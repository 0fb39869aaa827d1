package events

import (
	"time"

	"github.com/google/uuid"
)

// EventProduct is the per-event overlay of a catalog product. Price and
// name are snapshotted from the catalog at first reference; quantities
// carry the raw form the client sent.
type EventProduct struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CostPrice     float64   `json:"costPrice"`
	SellPrice     float64   `json:"sellPrice"`
	QuantityTaken RawNumber `json:"quantityTaken"`
	QuantitySold  RawNumber `json:"quantitySold"`
}

// Event is a market appearance. Numeric fields keep whatever the form
// produced; consumers read them through RawNumber. The three snapshot
// fields are set once on finalization.
type Event struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Date          string         `json:"date"`
	Location      string         `json:"location"`
	EventAddress  string         `json:"eventAddress"`
	StartAddress  string         `json:"startAddress"`
	Distance      RawNumber      `json:"distance"`
	Consumption   RawNumber      `json:"consumption"`
	FuelPrice     RawNumber      `json:"fuelPrice"`
	Helpers       RawNumber      `json:"helpers"`
	HelperPayment RawNumber      `json:"helperPayment"`
	ExtraCosts    RawNumber      `json:"extraCosts"`
	Products      []EventProduct `json:"products"`

	TotalSales *float64 `json:"totalSales,omitempty"`
	TotalCosts *float64 `json:"totalCosts,omitempty"`
	Profit     *float64 `json:"profit,omitempty"`
}

// ProductInfo is the catalog template the merger synthesizes new event
// products from.
type ProductInfo struct {
	ID        string
	Name      string
	CostPrice float64
	SellPrice float64
}

// ProductSource resolves catalog products by id. Implemented by the
// catalog service.
type ProductSource interface {
	Product(id string) (ProductInfo, bool)
}

// Field keys accepted by UpdateDraftField and UpdateDraftProduct.
const (
	FieldName          = "name"
	FieldDate          = "date"
	FieldLocation      = "location"
	FieldEventAddress  = "eventAddress"
	FieldStartAddress  = "startAddress"
	FieldDistance      = "distance"
	FieldConsumption   = "consumption"
	FieldFuelPrice     = "fuelPrice"
	FieldHelpers       = "helpers"
	FieldHelperPayment = "helperPayment"
	FieldExtraCosts    = "extraCosts"

	FieldQuantityTaken = "quantityTaken"
	FieldQuantitySold  = "quantitySold"
)

// NewDraft produces a blank event with a fresh id and the current date.
func NewDraft() Event {
	return Event{
		ID:       uuid.NewString(),
		Date:     time.Now().UTC().Format("2006-01-02"),
		Products: []EventProduct{},
	}
}

func cloneEvent(event Event) Event {
	copied := event
	copied.Products = append([]EventProduct{}, event.Products...)
	copied.TotalSales = cloneFloat(event.TotalSales)
	copied.TotalCosts = cloneFloat(event.TotalCosts)
	copied.Profit = cloneFloat(event.Profit)
	return copied
}

func cloneFloat(value *float64) *float64 {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
