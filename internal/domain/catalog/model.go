package catalog

// Product is a reusable catalog entry. Products are add/delete only;
// a price change means removing and re-adding.
type Product struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	CostPrice float64 `json:"costPrice"`
	SellPrice float64 `json:"sellPrice"`
}
