package wishlistControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/niloy8/KNEX-Backend/apperr"
	"github.com/niloy8/KNEX-Backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WishlistLineInput struct {
	ProductID        uint                `json:"product_id"`
	SelectedColor    *string             `json:"selected_color"`
	SelectedSize     *string             `json:"selected_size"`
	SelectedVariant  *models.VariantRef  `json:"selected_variant"`
	CustomSelections models.SelectionMap `json:"custom_selections"`
}

func (in *WishlistLineInput) candidate() *models.CartLine {
	cand := &models.CartLine{
		ProductID:        in.ProductID,
		SelectedColor:    in.SelectedColor,
		SelectedSize:     in.SelectedSize,
		SelectedVariant:  in.SelectedVariant,
		CustomSelections: in.CustomSelections,
	}
	cand.Normalize()
	return cand
}

// Toggle adds the selection to the wishlist if absent, removes it if
// present. Matching uses the same identity resolver as the cart, so a
// toggle hits exactly the line with the identical option set.
func Toggle(db *gorm.DB, userID string, cand *models.CartLine) (added bool, err error) {
	if cand.ProductID == 0 {
		return false, apperr.Validation("product_id", "product_id is required")
	}
	cand.Normalize()

	err = db.Transaction(func(tx *gorm.DB) error {
		wishlist, err := lockWishlist(tx, userID)
		if err != nil {
			return err
		}
		var lines []models.WishlistLine
		if err := tx.Where("wishlist_id = ? AND product_id = ?", wishlist.WishlistID, cand.ProductID).
			Find(&lines).Error; err != nil {
			return err
		}
		for i := range lines {
			if models.SameLine(lines[i].Candidate(), cand) {
				return tx.Delete(&lines[i]).Error
			}
		}
		added = true
		return tx.Create(&models.WishlistLine{
			WishlistID:       wishlist.WishlistID,
			ProductID:        cand.ProductID,
			SelectedColor:    cand.SelectedColor,
			SelectedSize:     cand.SelectedSize,
			SelectedVariant:  cand.SelectedVariant,
			CustomSelections: cand.CustomSelections,
			AddedAt:          time.Now(),
		}).Error
	})
	return added, err
}

// Lines returns the user's wishlist, oldest first.
func Lines(db *gorm.DB, userID string) ([]models.WishlistLine, error) {
	var wishlist models.Wishlist
	if err := db.Where("user_id = ?", userID).First(&wishlist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.WishlistLine{}, nil
		}
		return nil, err
	}
	var lines []models.WishlistLine
	if err := db.Where("wishlist_id = ?", wishlist.WishlistID).Order("id").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func lockWishlist(tx *gorm.DB, userID string) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&wishlist).Error
	if err == nil {
		return &wishlist, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wishlist = models.Wishlist{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&wishlist).Error; err != nil {
		return nil, err
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&wishlist).Error; err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// -------- Handlers --------

func currentUserID(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}

// POST /user/wishlist/toggle
func ToggleWishlistLine(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var input WishlistLineInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		added, err := Toggle(db, userID, input.candidate())
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"added": added})
	}
}

// GET /user/wishlist
func GetWishlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		lines, err := Lines(db, userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, lines)
	}
}
