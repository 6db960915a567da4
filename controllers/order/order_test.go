package orderControllers

import (
	"os"
	"sync"
	"testing"

	"github.com/niloy8/KNEX-Backend/apperr"
	cartControllers "github.com/niloy8/KNEX-Backend/controllers/cart"
	"github.com/niloy8/KNEX-Backend/models"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type OrderEngineTestSuite struct {
	suite.Suite
	db *gorm.DB
}

func (s *OrderEngineTestSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		s.T().Skip("TEST_DATABASE_URL not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(s.T(), err)
	require.NoError(s.T(), db.AutoMigrate(
		&models.Product{},
		&models.Variant{},
		&models.Category{},
		&models.Cart{},
		&models.CartLine{},
		&models.Order{},
		&models.OrderItem{},
	))
	s.db = db

	// Pin the delivery tiers so totals are deterministic.
	os.Setenv("DELIVERY_CHARGE_INSIDE", "80")
	os.Setenv("DELIVERY_CHARGE_OUTSIDE", "150")
}

func (s *OrderEngineTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM order_items")
	s.db.Exec("DELETE FROM orders")
	s.db.Exec("DELETE FROM cart_lines")
	s.db.Exec("DELETE FROM carts")
	s.db.Exec("DELETE FROM products")
}

func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func (s *OrderEngineTestSuite) createProduct(title string, price float64, stock int) *models.Product {
	product := &models.Product{Title: title, Price: price, Stock: stock, Image: title + ".jpg"}
	s.Require().NoError(s.db.Create(product).Error)
	return product
}

func (s *OrderEngineTestSuite) productStock(id uint) int {
	var product models.Product
	s.Require().NoError(s.db.First(&product, "id = ?", id).Error)
	return product.Stock
}

func shippingInfo() PlaceOrderRequest {
	return PlaceOrderRequest{
		CustomerName:    "Niloy Rahman",
		CustomerPhone:   "01700000000",
		DeliveryAddress: "12/3 Mirpur Road, Dhaka",
		DeliveryArea:    "inside",
		PaymentMethod:   "cod",
	}
}

// Cart: 2x ProductA ($10, stock 5) and 1x ProductB ($25) with a variant
// price override of $30; inside tier charge 80 => subtotal 50, total 130.
func (s *OrderEngineTestSuite) seedScenarioCart(userID string) (*models.Product, *models.Product) {
	productA := s.createProduct("Product A", 10, 5)
	productB := s.createProduct("Product B", 25, 4)

	_, err := cartControllers.AddLine(s.db, userID, &models.CartLine{
		ProductID: productA.ID,
		Quantity:  2,
	})
	s.Require().NoError(err)
	_, err = cartControllers.AddLine(s.db, userID, &models.CartLine{
		ProductID: productB.ID,
		Quantity:  1,
		SelectedVariant: &models.VariantRef{
			Name:  strPtr("Deluxe"),
			Price: floatPtr(30),
		},
	})
	s.Require().NoError(err)
	return productA, productB
}

func (s *OrderEngineTestSuite) TestPlaceOrderTotalsAndClearsCart() {
	productA, _ := s.seedScenarioCart("user-1")

	confirmation, err := PlaceOrder(s.db, "user-1", shippingInfo())
	s.Require().NoError(err)
	s.NotEmpty(confirmation.OrderNumber)
	s.Equal(models.OrderStatusPending, confirmation.Status)
	s.Equal(130.0, confirmation.Total)

	var order models.Order
	s.Require().NoError(s.db.Preload("Items").First(&order, "id = ?", confirmation.ID).Error)
	s.Equal(50.0, order.Subtotal)
	s.Equal(80.0, order.DeliveryCharge)
	s.Equal(order.Subtotal+order.DeliveryCharge, order.Total)
	s.Equal(models.PaymentStatusPending, order.PaymentStatus)
	s.Len(order.Items, 2)

	// Cart is emptied in the same transaction.
	lines, err := cartControllers.Lines(s.db, "user-1")
	s.Require().NoError(err)
	s.Empty(lines)

	// Placement does not reserve stock.
	s.Equal(5, s.productStock(productA.ID))
}

func (s *OrderEngineTestSuite) TestPlaceOrderSnapshotSurvivesCatalogEdits() {
	productA, _ := s.seedScenarioCart("user-1")

	confirmation, err := PlaceOrder(s.db, "user-1", shippingInfo())
	s.Require().NoError(err)

	// Reprice the catalog after checkout; the order snapshot must not move.
	s.Require().NoError(s.db.Model(&models.Product{}).
		Where("id = ?", productA.ID).Update("price", 999).Error)

	var order models.Order
	s.Require().NoError(s.db.Preload("Items").First(&order, "id = ?", confirmation.ID).Error)
	for _, item := range order.Items {
		if item.ProductID == productA.ID {
			s.Equal(10.0, item.Price)
		}
	}
	s.Equal(130.0, order.Total)
}

func (s *OrderEngineTestSuite) TestPlaceOrderEmptyCart() {
	_, err := PlaceOrder(s.db, "user-1", shippingInfo())
	s.True(apperr.IsKind(err, apperr.KindEmptyCart))

	var count int64
	s.db.Model(&models.Order{}).Count(&count)
	s.Zero(count)
}

func (s *OrderEngineTestSuite) TestPlaceOrderValidation() {
	s.seedScenarioCart("user-1")

	for _, breakIt := range []func(*PlaceOrderRequest){
		func(r *PlaceOrderRequest) { r.CustomerName = " " },
		func(r *PlaceOrderRequest) { r.CustomerPhone = "" },
		func(r *PlaceOrderRequest) { r.DeliveryAddress = "" },
		func(r *PlaceOrderRequest) { r.DeliveryArea = "moon" },
	} {
		req := shippingInfo()
		breakIt(&req)
		_, err := PlaceOrder(s.db, "user-1", req)
		s.True(apperr.IsKind(err, apperr.KindValidation))
	}

	// A rejected placement leaves the cart untouched.
	lines, err := cartControllers.Lines(s.db, "user-1")
	s.Require().NoError(err)
	s.Len(lines, 2)
}

func (s *OrderEngineTestSuite) TestPlaceOrderOutsideTier() {
	s.seedScenarioCart("user-1")

	req := shippingInfo()
	req.DeliveryArea = "outside"
	confirmation, err := PlaceOrder(s.db, "user-1", req)
	s.Require().NoError(err)
	s.Equal(200.0, confirmation.Total) // 50 + 150
}

func (s *OrderEngineTestSuite) TestPlaceOrderUnknownProductDegrades() {
	product := s.createProduct("Ghost", 40, 1)
	_, err := cartControllers.AddLine(s.db, "user-1", &models.CartLine{
		ProductID: product.ID,
		Quantity:  1,
	})
	s.Require().NoError(err)
	s.Require().NoError(s.db.Delete(&models.Product{}, product.ID).Error)

	confirmation, err := PlaceOrder(s.db, "user-1", shippingInfo())
	s.Require().NoError(err)
	s.Equal(80.0, confirmation.Total) // delivery charge only

	var order models.Order
	s.Require().NoError(s.db.Preload("Items").First(&order, "id = ?", confirmation.ID).Error)
	s.Require().Len(order.Items, 1)
	s.Equal("Unknown Product", order.Items[0].Title)
	s.Equal(0.0, order.Items[0].Price)
}

func (s *OrderEngineTestSuite) placeScenarioOrder(userID string) (*models.Product, *models.Product, uint) {
	productA, productB := s.seedScenarioCart(userID)
	confirmation, err := PlaceOrder(s.db, userID, shippingInfo())
	s.Require().NoError(err)
	return productA, productB, confirmation.ID
}

func (s *OrderEngineTestSuite) TestDeliveredDecrementsStockOnce() {
	productA, productB, orderID := s.placeScenarioOrder("user-1")

	order, err := SetStatus(s.db, orderID, models.OrderStatusDelivered, nil)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusDelivered, order.Status)
	s.Equal(models.PaymentStatusPaid, order.PaymentStatus)
	s.Equal(3, s.productStock(productA.ID))
	s.Equal(3, s.productStock(productB.ID))

	// Second delivered call is a stock no-op (duplicate admin click).
	_, err = SetStatus(s.db, orderID, models.OrderStatusDelivered, nil)
	s.Require().NoError(err)
	s.Equal(3, s.productStock(productA.ID))
	s.Equal(3, s.productStock(productB.ID))
}

func (s *OrderEngineTestSuite) TestRoundTripRestoresStock() {
	productA, productB, orderID := s.placeScenarioOrder("user-1")

	_, err := SetStatus(s.db, orderID, models.OrderStatusDelivered, nil)
	s.Require().NoError(err)
	_, err = SetStatus(s.db, orderID, models.OrderStatusCancelled, nil)
	s.Require().NoError(err)

	s.Equal(5, s.productStock(productA.ID))
	s.Equal(4, s.productStock(productB.ID))
}

func (s *OrderEngineTestSuite) TestNonDeliveredTransitionsMoveNoStock() {
	productA, _, orderID := s.placeScenarioOrder("user-1")

	_, err := SetStatus(s.db, orderID, models.OrderStatusProcessing, strPtr("packed"))
	s.Require().NoError(err)
	_, err = SetStatus(s.db, orderID, models.OrderStatusCancelled, nil)
	s.Require().NoError(err)

	s.Equal(5, s.productStock(productA.ID))

	var order models.Order
	s.Require().NoError(s.db.First(&order, "id = ?", orderID).Error)
	s.Equal(models.OrderStatusCancelled, order.Status)
	s.Equal(models.PaymentStatusPending, order.PaymentStatus)
	s.Equal("packed", order.Notes)
}

func (s *OrderEngineTestSuite) TestStockMayGoNegative() {
	product := s.createProduct("Scarce", 10, 1)
	_, err := cartControllers.AddLine(s.db, "user-1", &models.CartLine{
		ProductID: product.ID,
		Quantity:  3,
	})
	s.Require().NoError(err)
	confirmation, err := PlaceOrder(s.db, "user-1", shippingInfo())
	s.Require().NoError(err)

	// No floor is enforced; the counter is best-effort.
	_, err = SetStatus(s.db, confirmation.ID, models.OrderStatusDelivered, nil)
	s.Require().NoError(err)
	s.Equal(-2, s.productStock(product.ID))
}

func (s *OrderEngineTestSuite) TestConcurrentDeliveredDecrementsOnce() {
	productA, _, orderID := s.placeScenarioOrder("user-1")

	const workers = 4
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := SetStatus(s.db, orderID, models.OrderStatusDelivered, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	s.Equal(3, s.productStock(productA.ID))
}

func (s *OrderEngineTestSuite) TestSetStatusUnknownOrder() {
	_, err := SetStatus(s.db, 424242, models.OrderStatusDelivered, nil)
	s.True(apperr.IsKind(err, apperr.KindNotFound))
}

func (s *OrderEngineTestSuite) TestOrderNumbersAreUnique() {
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		s.seedScenarioCart("user-1")
		confirmation, err := PlaceOrder(s.db, "user-1", shippingInfo())
		s.Require().NoError(err)
		s.False(seen[confirmation.OrderNumber])
		seen[confirmation.OrderNumber] = true
	}
}

func TestOrderEngineTestSuite(t *testing.T) {
	suite.Run(t, new(OrderEngineTestSuite))
}
