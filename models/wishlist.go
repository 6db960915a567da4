package models

import "time"

type Wishlist struct {
	WishlistID uint           `gorm:"primaryKey" json:"wishlist_id"`
	UserID     string         `gorm:"uniqueIndex" json:"user_id"`
	Lines      []WishlistLine `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// WishlistLine carries the same identity fields as a cart line, minus a
// quantity.
type WishlistLine struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	WishlistID       uint         `gorm:"index" json:"-"`
	ProductID        uint         `gorm:"index" json:"product_id"`
	SelectedColor    *string      `json:"selected_color,omitempty"`
	SelectedSize     *string      `json:"selected_size,omitempty"`
	SelectedVariant  *VariantRef  `gorm:"type:jsonb" json:"selected_variant,omitempty"`
	CustomSelections SelectionMap `gorm:"type:jsonb" json:"custom_selections,omitempty"`
	AddedAt          time.Time    `json:"added_at"`
}

// Candidate views the wishlist line as a cart candidate so both ledgers
// share one identity resolver.
func (l *WishlistLine) Candidate() *CartLine {
	return &CartLine{
		ProductID:        l.ProductID,
		SelectedColor:    l.SelectedColor,
		SelectedSize:     l.SelectedSize,
		SelectedVariant:  l.SelectedVariant,
		CustomSelections: l.CustomSelections,
	}
}
