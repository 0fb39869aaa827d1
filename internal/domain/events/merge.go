package events

// upsertProduct returns a new product list with the named field of the
// target product replaced. An unknown field on the list itself cannot
// happen here; callers pass FieldQuantityTaken or FieldQuantitySold.
//
// If the event never referenced the product, a new entry is synthesized
// from the catalog template with both quantities at zero before the
// named field is overwritten. A product id absent from the catalog is a
// silent no-op: the list comes back unchanged.
//
// Setting quantitySold is checked against the parsed quantityTaken;
// lowering quantityTaken below an already-recorded quantitySold is
// deliberately not rejected.
func upsertProduct(products []EventProduct, source ProductSource, productID, field string, value RawNumber) ([]EventProduct, error) {
	if field != FieldQuantityTaken && field != FieldQuantitySold {
		return nil, ErrUnknownField
	}

	updated := append([]EventProduct{}, products...)

	for i, product := range updated {
		if product.ID != productID {
			continue
		}
		if err := checkSold(field, value, product.QuantityTaken); err != nil {
			return nil, err
		}
		setQuantity(&updated[i], field, value)
		return updated, nil
	}

	template, ok := source.Product(productID)
	if !ok {
		return products, nil
	}

	fresh := EventProduct{
		ID:            template.ID,
		Name:          template.Name,
		CostPrice:     template.CostPrice,
		SellPrice:     template.SellPrice,
		QuantityTaken: RawFromInt(0),
		QuantitySold:  RawFromInt(0),
	}
	if err := checkSold(field, value, fresh.QuantityTaken); err != nil {
		return nil, err
	}
	setQuantity(&fresh, field, value)

	return append(updated, fresh), nil
}

func checkSold(field string, value, taken RawNumber) error {
	if field != FieldQuantitySold {
		return nil
	}
	sold := value.Int()
	if sold < 0 {
		return ErrNegativeQuantity
	}
	if sold > taken.Int() {
		return ErrSoldExceedsTaken
	}
	return nil
}

func setQuantity(product *EventProduct, field string, value RawNumber) {
	if field == FieldQuantityTaken {
		product.QuantityTaken = value
		return
	}
	product.QuantitySold = value
}
