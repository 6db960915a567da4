package models

// PricedLine is the resolved unit price and display image for a cart line.
type PricedLine struct {
	UnitPrice    float64
	DisplayImage string
}

// ResolvePricing picks price and image for a line: the selected variant
// overrides the product, missing data falls back to zero values. Pure; a
// nil product degrades to a zero price instead of failing.
func ResolvePricing(line *CartLine, product *Product) PricedLine {
	var priced PricedLine
	if product != nil {
		priced.UnitPrice = product.Price
		priced.DisplayImage = product.Image
	}
	if line.SelectedVariant != nil {
		if line.SelectedVariant.Price != nil {
			priced.UnitPrice = *line.SelectedVariant.Price
		}
		if line.SelectedVariant.Image != nil && *line.SelectedVariant.Image != "" {
			priced.DisplayImage = *line.SelectedVariant.Image
		}
	}
	return priced
}
