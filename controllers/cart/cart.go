package cartControllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/niloy8/KNEX-Backend/apperr"
	"github.com/niloy8/KNEX-Backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartLineInput struct {
	ProductID        uint                `json:"product_id"`
	Quantity         int                 `json:"quantity"`
	SelectedColor    *string             `json:"selected_color"`
	SelectedSize     *string             `json:"selected_size"`
	SelectedVariant  *models.VariantRef  `json:"selected_variant"`
	CustomSelections models.SelectionMap `json:"custom_selections"`
}

// Candidate converts the request body into a normalized cart candidate.
func (in *CartLineInput) Candidate() *models.CartLine {
	line := &models.CartLine{
		ProductID:        in.ProductID,
		Quantity:         in.Quantity,
		SelectedColor:    in.SelectedColor,
		SelectedSize:     in.SelectedSize,
		SelectedVariant:  in.SelectedVariant,
		CustomSelections: in.CustomSelections,
	}
	line.Normalize()
	return line
}

// -------- Core Logic --------

// AddLine merges the candidate into an existing line with the same identity
// key, or creates a new line. The user's cart row is locked for the whole
// read-modify-write so two concurrent adds of the same selection cannot
// both miss the match and create duplicate lines.
func AddLine(db *gorm.DB, userID string, cand *models.CartLine) (*models.CartLine, error) {
	if cand.ProductID == 0 {
		return nil, apperr.Validation("product_id", "product_id is required")
	}
	if cand.Quantity == 0 {
		cand.Quantity = 1
	}
	if cand.Quantity < 1 {
		return nil, apperr.Validation("quantity", "quantity must be at least 1")
	}
	cand.Normalize()

	var out *models.CartLine
	err := db.Transaction(func(tx *gorm.DB) error {
		cart, err := lockCart(tx, userID)
		if err != nil {
			return err
		}

		var lines []models.CartLine
		if err := tx.Where("cart_id = ? AND product_id = ?", cart.CartID, cand.ProductID).
			Find(&lines).Error; err != nil {
			return err
		}
		for i := range lines {
			if models.SameLine(&lines[i], cand) {
				lines[i].Quantity += cand.Quantity
				if err := tx.Model(&lines[i]).Update("quantity", lines[i].Quantity).Error; err != nil {
					return err
				}
				out = &lines[i]
				return nil
			}
		}

		cand.CartID = cart.CartID
		cand.AddedAt = time.Now()
		if err := tx.Create(cand).Error; err != nil {
			return err
		}
		out = cand
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetQuantity replaces the quantity of a line owned by the user.
func SetQuantity(db *gorm.DB, userID string, lineID uint, qty int) (*models.CartLine, error) {
	if qty < 1 {
		return nil, apperr.Validation("quantity", "quantity must be at least 1")
	}

	var out models.CartLine
	err := db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("cart line not found")
			}
			return err
		}
		if err := tx.Where("id = ? AND cart_id = ?", lineID, cart.CartID).First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("cart line not found")
			}
			return err
		}
		out.Quantity = qty
		return tx.Model(&out).Update("quantity", qty).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveLine deletes a line addressed by id. The caller expects the line to
// exist, so a miss is NotFound.
func RemoveLine(db *gorm.DB, userID string, lineID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("cart line not found")
			}
			return err
		}
		res := tx.Where("id = ? AND cart_id = ?", lineID, cart.CartID).Delete(&models.CartLine{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("cart line not found")
		}
		return nil
	})
}

// RemoveByIdentity deletes the line matching the candidate's identity key.
// Removing a selection that is not in the cart is not an error.
func RemoveByIdentity(db *gorm.DB, userID string, cand *models.CartLine) error {
	cand.Normalize()
	return db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var lines []models.CartLine
		if err := tx.Where("cart_id = ? AND product_id = ?", cart.CartID, cand.ProductID).
			Find(&lines).Error; err != nil {
			return err
		}
		for i := range lines {
			if models.SameLine(&lines[i], cand) {
				return tx.Delete(&lines[i]).Error
			}
		}
		return nil
	})
}

// Clear deletes every line of the user's cart. Idempotent.
func Clear(db *gorm.DB, userID string) error {
	var cart models.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return db.Where("cart_id = ?", cart.CartID).Delete(&models.CartLine{}).Error
}

// Lines returns the user's current cart lines, oldest first.
func Lines(db *gorm.DB, userID string) ([]models.CartLine, error) {
	var cart models.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.CartLine{}, nil
		}
		return nil, err
	}
	var lines []models.CartLine
	if err := db.Where("cart_id = ?", cart.CartID).Order("id").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

type MergeFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type MergeResult struct {
	Merged []models.CartLine `json:"merged"`
	Failed []MergeFailure    `json:"failed,omitempty"`
}

// MergeFromGuest replays guest-side cart candidates through AddLine in
// array order. Candidates fail independently: a bad candidate is recorded
// and skipped, earlier merges stay committed.
func MergeFromGuest(db *gorm.DB, userID string, cands []*models.CartLine) MergeResult {
	var result MergeResult
	for i, cand := range cands {
		line, err := AddLine(db, userID, cand)
		if err != nil {
			result.Failed = append(result.Failed, MergeFailure{Index: i, Error: err.Error()})
			continue
		}
		result.Merged = append(result.Merged, *line)
	}
	return result
}

// lockCart loads the user's cart FOR UPDATE, creating it on first use. Two
// first-time requests can race on the insert; ON CONFLICT keeps a single
// row and the re-select locks whichever insert won.
func lockCart(tx *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart).Error; err != nil {
		return nil, err
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
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

// POST /user/cart
func AddCartLine(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var input CartLineInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		line, err := AddLine(db, userID, input.Candidate())
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, line)
	}
}

// PUT /user/cart/:line_id
func UpdateCartLineQuantity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		lineID, ok := lineIDParam(c)
		if !ok {
			return
		}
		var input struct {
			Quantity int `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		line, err := SetQuantity(db, userID, lineID, input.Quantity)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, line)
	}
}

// DELETE /user/cart/:line_id
func DeleteCartLine(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		lineID, ok := lineIDParam(c)
		if !ok {
			return
		}
		if err := RemoveLine(db, userID, lineID); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart line deleted"})
	}
}

// POST /user/cart/remove
// Addressed by identity key (product + options) instead of line id, so the
// body mirrors the add payload.
func DeleteCartSelection(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var input CartLineInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if err := RemoveByIdentity(db, userID, input.Candidate()); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart selection removed"})
	}
}

// DELETE /user/cart
func ClearCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		if err := Clear(db, userID); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /user/cart
func GetCart(db *gorm.DB) gin.HandlerFunc {
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

func lineIDParam(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("line_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line_id"})
		return 0, false
	}
	return uint(id64), true
}
