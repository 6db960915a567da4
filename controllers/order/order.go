package orderControllers

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/niloy8/KNEX-Backend/apperr"
	"github.com/niloy8/KNEX-Backend/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// -------- Request Structs --------

type PlaceOrderRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	DeliveryAddress string `json:"delivery_address"`
	DeliveryArea    string `json:"delivery_area"` // "inside" or "outside"
	PaymentMethod   string `json:"payment_method"`
	Notes           string `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

// OrderConfirmation is the minimal projection returned on placement.
type OrderConfirmation struct {
	ID          uint               `json:"id"`
	OrderNumber string             `json:"order_number"`
	Total       float64            `json:"total"`
	Status      models.OrderStatus `json:"status"`
}

// -------- Helpers --------

func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch strings.ToLower(status) {
	case string(models.OrderStatusPending):
		return models.OrderStatusPending, nil
	case string(models.OrderStatusProcessing):
		return models.OrderStatusProcessing, nil
	case string(models.OrderStatusDelivered):
		return models.OrderStatusDelivered, nil
	case string(models.OrderStatusCancelled):
		return models.OrderStatusCancelled, nil
	default:
		return "", apperr.Validation("status", "invalid order status")
	}
}

func mapDeliveryArea(area string) (models.DeliveryArea, error) {
	switch strings.ToLower(area) {
	case string(models.DeliveryAreaInside):
		return models.DeliveryAreaInside, nil
	case string(models.DeliveryAreaOutside):
		return models.DeliveryAreaOutside, nil
	default:
		return "", apperr.Validation("delivery_area", `delivery_area must be "inside" or "outside"`)
	}
}

// deliveryCharge returns the flat charge for an area tier. Both tiers are
// env-overridable constants.
func deliveryCharge(area models.DeliveryArea) float64 {
	name, fallback := "DELIVERY_CHARGE_INSIDE", 80.0
	if area == models.DeliveryAreaOutside {
		name, fallback = "DELIVERY_CHARGE_OUTSIDE", 150.0
	}
	if raw := os.Getenv(name); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return fallback
}

// generateOrderNumber builds a human-readable reference. It looks roughly
// chronological but only uniqueness is guaranteed.
func generateOrderNumber() string {
	return "ORD-" + time.Now().Format("20060102150405") + "-" + uuid.NewString()[:8]
}

func (req *PlaceOrderRequest) validate() (models.DeliveryArea, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return "", apperr.Validation("customer_name", "customer_name is required")
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		return "", apperr.Validation("customer_phone", "customer_phone is required")
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return "", apperr.Validation("delivery_address", "delivery_address is required")
	}
	return mapDeliveryArea(req.DeliveryArea)
}

// -------- Core Logic --------

// PlaceOrder converts the user's cart into a priced, numbered order with
// frozen line-item snapshots. Order + items are persisted and the cart is
// cleared in one transaction: either both happen or neither is visible.
// Stock is not touched here; it moves on the delivery transition.
func PlaceOrder(db *gorm.DB, userID string, req PlaceOrderRequest) (*OrderConfirmation, error) {
	area, err := req.validate()
	if err != nil {
		return nil, err
	}

	var placed models.Order
	txErr := db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.EmptyCart()
		}
		if err != nil {
			return err
		}

		var lines []models.CartLine
		if err := tx.Where("cart_id = ?", cart.CartID).Order("id").Find(&lines).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return apperr.EmptyCart()
		}

		var subtotal float64
		items := make([]models.OrderItem, 0, len(lines))
		for i := range lines {
			line := &lines[i]

			// A deleted or unknown product must not abort checkout; the
			// line degrades to a zero-priced placeholder.
			title := "Unknown Product"
			var product *models.Product
			var loaded models.Product
			if err := tx.First(&loaded, "id = ?", line.ProductID).Error; err == nil {
				product = &loaded
				title = loaded.Title
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			priced := models.ResolvePricing(line, product)
			subtotal += priced.UnitPrice * float64(line.Quantity)
			items = append(items, models.OrderItem{
				ProductID:        line.ProductID,
				Title:            title,
				Price:            priced.UnitPrice,
				Quantity:         line.Quantity,
				Image:            priced.DisplayImage,
				SelectedColor:    line.SelectedColor,
				SelectedSize:     line.SelectedSize,
				SelectedVariant:  line.SelectedVariant,
				CustomSelections: line.CustomSelections,
			})
		}

		charge := deliveryCharge(area)
		placed = models.Order{
			OrderNumber:     generateOrderNumber(),
			UserID:          userID,
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			DeliveryAddress: req.DeliveryAddress,
			DeliveryArea:    area,
			DeliveryCharge:  charge,
			Subtotal:        subtotal,
			Total:           subtotal + charge,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   models.PaymentStatusPending,
			Status:          models.OrderStatusPending,
			Notes:           req.Notes,
			Items:           items,
		}
		if err := tx.Create(&placed).Error; err != nil {
			return err
		}
		return tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartLine{}).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	zap.L().Info("order placed",
		zap.String("order_number", placed.OrderNumber),
		zap.String("user_id", userID),
		zap.Float64("total", placed.Total))
	broadcastOrderEvent("order.placed", &placed)

	return &OrderConfirmation{
		ID:          placed.ID,
		OrderNumber: placed.OrderNumber,
		Total:       placed.Total,
		Status:      placed.Status,
	}, nil
}

// SetStatus applies a fulfillment transition. Stock moves exactly once per
// entry into or exit from "delivered": the guard is the persisted previous
// status, read under a row lock in the same transaction as the write, so
// two admins racing on the same order cannot double-decrement. The final
// update is additionally compare-and-set on the status column.
func SetStatus(db *gorm.DB, orderID uint, newStatus models.OrderStatus, notes *string) (*models.Order, error) {
	var updated models.Order
	txErr := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order not found")
			}
			return err
		}
		var items []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}

		prev := order.Status
		for _, adj := range models.StockAdjustments(prev, newStatus, items) {
			// Relative update; stock has no enforced floor and may go
			// negative (see DESIGN.md).
			if err := tx.Model(&models.Product{}).Where("id = ?", adj.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", adj.Delta)).Error; err != nil {
				return err
			}
		}

		updates := map[string]interface{}{"status": newStatus}
		if newStatus == models.OrderStatusDelivered && prev != models.OrderStatusDelivered {
			updates["payment_status"] = models.PaymentStatusPaid
		}
		if notes != nil {
			updates["notes"] = *notes
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, prev).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("order status changed concurrently")
		}

		if err := tx.First(&updated, "id = ?", order.ID).Error; err != nil {
			return err
		}
		updated.Items = items
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	zap.L().Info("order status updated",
		zap.String("order_number", updated.OrderNumber),
		zap.String("status", string(updated.Status)))
	broadcastOrderEvent("order.status", &updated)
	return &updated, nil
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

// POST /orders/place
func PlaceOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		confirmation, err := PlaceOrder(db, userID, req)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, confirmation)
	}
}

// GET /orders (admin)
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /user/orders
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var orders []models.Order
		if err := db.
			Where("user_id = ?", userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/:orderID
// Accepts a numeric id or an order number.
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("orderID")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}
		var order models.Order
		query := db.Preload("Items")
		if _, err := strconv.ParseUint(id, 10, 64); err == nil {
			query = query.Where("id = ? OR order_number = ?", id, id)
		} else {
			query = query.Where("order_number = ?", id)
		}
		if err := query.First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PUT /orders/:orderID/status (admin)
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID64, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid orderID"})
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		newStatus, err := mapOrderStatus(req.Status)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		order, err := SetStatus(db, uint(orderID64), newStatus, req.Notes)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// DELETE /orders/:orderID (admin)
func DeleteOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID64, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid orderID"})
			return
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("order_id = ?", orderID64).
				Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", orderID64).Delete(&models.Order{}).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete order"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}
