package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePricingProductFallback(t *testing.T) {
	line := &CartLine{ProductID: 1}
	product := &Product{ID: 1, Price: 10, Image: "p.jpg"}

	priced := ResolvePricing(line, product)
	assert.Equal(t, 10.0, priced.UnitPrice)
	assert.Equal(t, "p.jpg", priced.DisplayImage)
}

func TestResolvePricingVariantOverrides(t *testing.T) {
	line := &CartLine{
		ProductID: 1,
		SelectedVariant: &VariantRef{
			Price: floatPtr(30),
			Image: strPtr("v.jpg"),
		},
	}
	product := &Product{ID: 1, Price: 25, Image: "p.jpg"}

	priced := ResolvePricing(line, product)
	assert.Equal(t, 30.0, priced.UnitPrice)
	assert.Equal(t, "v.jpg", priced.DisplayImage)
}

func TestResolvePricingPartialVariant(t *testing.T) {
	// Variant without a price keeps the product price; empty image string
	// does not override.
	line := &CartLine{
		ProductID:       1,
		SelectedVariant: &VariantRef{Name: strPtr("Large"), Image: strPtr("")},
	}
	product := &Product{ID: 1, Price: 25, Image: "p.jpg"}

	priced := ResolvePricing(line, product)
	assert.Equal(t, 25.0, priced.UnitPrice)
	assert.Equal(t, "p.jpg", priced.DisplayImage)
}

func TestResolvePricingMissingProduct(t *testing.T) {
	line := &CartLine{ProductID: 404}

	priced := ResolvePricing(line, nil)
	assert.Equal(t, 0.0, priced.UnitPrice)
	assert.Equal(t, "", priced.DisplayImage)

	// A variant price still applies even when the product is gone.
	line.SelectedVariant = &VariantRef{Price: floatPtr(12)}
	priced = ResolvePricing(line, nil)
	assert.Equal(t, 12.0, priced.UnitPrice)
}
