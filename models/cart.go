package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	UserID    string     `gorm:"uniqueIndex" json:"user_id"` // One cart per user
	Lines     []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartLine is one entry in a user's cart, identified by product + selected
// options. Two lines of the same cart never share an identity key; the
// add/merge path enforces that rather than a DB constraint, because the
// option fields are unordered structured data.
type CartLine struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	CartID           uint         `gorm:"index" json:"-"`
	ProductID        uint         `gorm:"index" json:"product_id"`
	Quantity         int          `json:"quantity"`
	SelectedColor    *string      `json:"selected_color,omitempty"`
	SelectedSize     *string      `json:"selected_size,omitempty"`
	SelectedVariant  *VariantRef  `gorm:"type:jsonb" json:"selected_variant,omitempty"`
	CustomSelections SelectionMap `gorm:"type:jsonb" json:"custom_selections,omitempty"`
	AddedAt          time.Time    `json:"added_at"`
}

// VariantRef is the client-chosen variant descriptor carried on a line.
// Its price/image override the product's own at checkout.
type VariantRef struct {
	ID    *string  `json:"id,omitempty"`
	Name  *string  `json:"name,omitempty"`
	Image *string  `json:"image,omitempty"`
	Price *float64 `json:"price,omitempty"`
}

func (v VariantRef) Value() (driver.Value, error) {
	return json.Marshal(v)
}

func (v *VariantRef) Scan(src interface{}) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	}
	return errors.New("unsupported source type for VariantRef")
}

func (v *VariantRef) isZero() bool {
	return v == nil || (v.ID == nil && v.Name == nil && v.Image == nil && v.Price == nil)
}

// SelectionMap holds free-form option-name -> choice pairs.
type SelectionMap map[string]string

func (m SelectionMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *SelectionMap) Scan(src interface{}) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, m)
	case string:
		return json.Unmarshal([]byte(data), m)
	}
	return errors.New("unsupported source type for SelectionMap")
}

// Normalize collapses the "absent" spellings of the option fields (missing,
// null, empty object) so identity comparison and storage agree.
func (l *CartLine) Normalize() {
	if l.SelectedVariant.isZero() {
		l.SelectedVariant = nil
	}
	if len(l.CustomSelections) == 0 {
		l.CustomSelections = nil
	}
}

// SameLine reports whether two cart candidates refer to the same selection:
// same product and structurally equal options, with absence matching absence.
// No partial or fuzzy matching.
func SameLine(a, b *CartLine) bool {
	if a.ProductID != b.ProductID {
		return false
	}
	if !strPtrEqual(a.SelectedColor, b.SelectedColor) {
		return false
	}
	if !strPtrEqual(a.SelectedSize, b.SelectedSize) {
		return false
	}
	if !variantEqual(a.SelectedVariant, b.SelectedVariant) {
		return false
	}
	return selectionsEqual(a.CustomSelections, b.CustomSelections)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func variantEqual(a, b *VariantRef) bool {
	if a.isZero() || b.isZero() {
		return a.isZero() && b.isZero()
	}
	return strPtrEqual(a.ID, b.ID) &&
		strPtrEqual(a.Name, b.Name) &&
		strPtrEqual(a.Image, b.Image) &&
		floatPtrEqual(a.Price, b.Price)
}

func selectionsEqual(a, b SelectionMap) bool {
	if len(a) != len(b) {
		return false
	}
	for key, val := range a {
		if other, ok := b[key]; !ok || other != val {
			return false
		}
	}
	return true
}
