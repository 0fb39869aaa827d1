package events

// Costs is the derived cost breakdown of an event.
type Costs struct {
	Fuel     float64 `json:"fuelCost"`
	Helper   float64 `json:"helperCost"`
	Products float64 `json:"productsCost"`
	Total    float64 `json:"totalCosts"`
}

// ComputeCosts derives the cost breakdown from an event's raw fields.
// Distance is the full travelled distance as entered, used as-is.
// Pure: bad input reads as 0 and the function never fails.
func ComputeCosts(event Event) Costs {
	distance := event.Distance.Float()
	consumption := event.Consumption.Float()
	fuelPrice := event.FuelPrice.Float()

	var fuel float64
	if consumption > 0 {
		fuel = (distance / consumption) * fuelPrice
	}

	helper := event.Helpers.Float() * event.HelperPayment.Float()

	var products float64
	for _, product := range event.Products {
		products += product.QuantitySold.Float() * product.CostPrice
	}

	return Costs{
		Fuel:     fuel,
		Helper:   helper,
		Products: products,
		Total:    fuel + helper + event.ExtraCosts.Float() + products,
	}
}

// TotalSales sums quantity sold times sell price over the event's products.
func TotalSales(event Event) float64 {
	var total float64
	for _, product := range event.Products {
		total += product.QuantitySold.Float() * product.SellPrice
	}
	return total
}
