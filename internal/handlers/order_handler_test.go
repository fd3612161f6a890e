package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danuarta/agromart/internal/models"
)

// paidOrder drives a full checkout and payment for the given cart lines and
// returns the created order id.
func paidOrder(t *testing.T, env *testEnv, buyerToken string, buyerID uint, lines map[uint]uint) uint {
	t.Helper()
	for productID, qty := range lines {
		require.NoError(t, env.DB.Create(&models.CartItem{UserID: buyerID, ProductID: productID, Quantity: qty}).Error)
	}
	checkoutToken, _ := startCheckout(t, env, buyerToken)
	rec := env.doJSON(http.MethodPost, "/v1/payment", map[string]interface{}{
		"checkout_token": checkoutToken,
		"method":         "card",
	}, buyerToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return uint(decodeJSON(t, rec)["order_id"].(float64))
}

func TestMarkDeliveredReleasesPayout(t *testing.T) {
	env := newTestEnv(t)

	farmerToken, farmerID := newFarmer(t, env, 1)
	buyerToken, buyerID := newBuyer(t, env, 1)
	product := seedProduct(t, env, farmerID, "Tomatoes", 10.0, 2)

	orderID := paidOrder(t, env, buyerToken, buyerID, map[uint]uint{product.ID: 2})

	var item models.OrderItem
	require.NoError(t, env.DB.Where("order_id = ?", orderID).First(&item).Error)

	rec := env.doJSON(http.MethodPost, "/v1/farmer/orders/"+itoa(item.ID)+"/delivered", nil, farmerToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, true, decodeJSON(t, rec)["payout_released"])

	var delivered models.OrderItem
	require.NoError(t, env.DB.First(&delivered, item.ID).Error)
	require.Equal(t, models.DeliveryStatusDelivered, delivered.DeliveryStatus)
	require.NotNil(t, delivered.DeliveredAt)

	var payout models.Payout
	require.NoError(t, env.DB.Where("order_id = ?", orderID).First(&payout).Error)
	require.Equal(t, models.PayoutStatusTransferred, payout.Status)
}

func TestMarkDeliveredIdempotent(t *testing.T) {
	env := newTestEnv(t)

	farmerToken, farmerID := newFarmer(t, env, 1)
	buyerToken, buyerID := newBuyer(t, env, 1)
	product := seedProduct(t, env, farmerID, "Tomatoes", 10.0, 2)

	orderID := paidOrder(t, env, buyerToken, buyerID, map[uint]uint{product.ID: 2})

	var item models.OrderItem
	require.NoError(t, env.DB.Where("order_id = ?", orderID).First(&item).Error)

	rec := env.doJSON(http.MethodPost, "/v1/farmer/orders/"+itoa(item.ID)+"/delivered", nil, farmerToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var first models.OrderItem
	require.NoError(t, env.DB.First(&first, item.ID).Error)

	// Second call: still 200, no error, nothing changes.
	rec = env.doJSON(http.MethodPost, "/v1/farmer/orders/"+itoa(item.ID)+"/delivered", nil, farmerToken)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	require.Equal(t, "Item already marked as delivered.", body["message"])

	var second models.OrderItem
	require.NoError(t, env.DB.First(&second, item.ID).Error)
	require.Equal(t, first.DeliveredAt.Unix(), second.DeliveredAt.Unix())

	var payoutCount int64
	env.DB.Model(&models.Payout{}).
		Where("order_id = ? AND status = ?", orderID, models.PayoutStatusTransferred).
		Count(&payoutCount)
	require.EqualValues(t, 1, payoutCount)
}

func TestMarkDeliveredForbiddenForOtherFarmer(t *testing.T) {
	env := newTestEnv(t)

	_, ownerID := newFarmer(t, env, 1)
	otherToken, _ := newFarmer(t, env, 2)
	buyerToken, buyerID := newBuyer(t, env, 1)
	product := seedProduct(t, env, ownerID, "Tomatoes", 10.0, 2)

	orderID := paidOrder(t, env, buyerToken, buyerID, map[uint]uint{product.ID: 1})

	var item models.OrderItem
	require.NoError(t, env.DB.Where("order_id = ?", orderID).First(&item).Error)

	rec := env.doJSON(http.MethodPost, "/v1/farmer/orders/"+itoa(item.ID)+"/delivered", nil, otherToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMarkDeliveredNotFound(t *testing.T) {
	env := newTestEnv(t)

	farmerToken, _ := newFarmer(t, env, 1)

	rec := env.doJSON(http.MethodPost, "/v1/farmer/orders/9999/delivered", nil, farmerToken)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPayoutWaitsForAllFarmerItems(t *testing.T) {
	env := newTestEnv(t)

	farmerToken, farmerID := newFarmer(t, env, 1)
	buyerToken, buyerID := newBuyer(t, env, 1)
	tomatoes := seedProduct(t, env, farmerID, "Tomatoes", 10.0, 5)
	basil := seedProduct(t, env, farmerID, "Basil", 2.0, 5)

	orderID := paidOrder(t, env, buyerToken, buyerID, map[uint]uint{tomatoes.ID: 1, basil.ID: 1})

	var items []models.OrderItem
	require.NoError(t, env.DB.Where("order_id = ?", orderID).Order("id").Find(&items).Error)
	require.Len(t, items, 2)

	// First of two items: payout stays pending.
	rec := env.doJSON(http.MethodPost, "/v1/farmer/orders/"+itoa(items[0].ID)+"/delivered", nil, farmerToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decodeJSON(t, rec)["payout_released"])

	var payout models.Payout
	require.NoError(t, env.DB.Where("order_id = ?", orderID).First(&payout).Error)
	require.Equal(t, models.PayoutStatusPending, payout.Status)

	// Second item completes the farmer's share of the order.
	rec = env.doJSON(http.MethodPost, "/v1/farmer/orders/"+itoa(items[1].ID)+"/delivered", nil, farmerToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeJSON(t, rec)["payout_released"])

	require.NoError(t, env.DB.Where("order_id = ?", orderID).First(&payout).Error)
	require.Equal(t, models.PayoutStatusTransferred, payout.Status)
}

func TestBuyerOrdersGroupsItems(t *testing.T) {
	env := newTestEnv(t)

	_, farmerID := newFarmer(t, env, 1)
	buyerToken, buyerID := newBuyer(t, env, 1)
	tomatoes := seedProduct(t, env, farmerID, "Tomatoes", 10.0, 5)
	basil := seedProduct(t, env, farmerID, "Basil", 2.0, 5)

	paidOrder(t, env, buyerToken, buyerID, map[uint]uint{tomatoes.ID: 1, basil.ID: 2})

	rec := env.doJSON(http.MethodGet, "/v1/orders", nil, buyerToken)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON(t, rec)
	orders := body["orders"].([]interface{})
	require.Len(t, orders, 1)
	order := orders[0].(map[string]interface{})
	require.Len(t, order["items"], 2)
}

func TestFarmerOrdersListsOwnLinesOnly(t *testing.T) {
	env := newTestEnv(t)

	farmer1Token, farmer1ID := newFarmer(t, env, 1)
	_, farmer2ID := newFarmer(t, env, 2)
	buyerToken, buyerID := newBuyer(t, env, 1)
	tomatoes := seedProduct(t, env, farmer1ID, "Tomatoes", 10.0, 5)
	pears := seedProduct(t, env, farmer2ID, "Pears", 4.0, 5)

	paidOrder(t, env, buyerToken, buyerID, map[uint]uint{tomatoes.ID: 1, pears.ID: 1})

	rec := env.doJSON(http.MethodGet, "/v1/farmer/orders", nil, farmer1Token)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON(t, rec)
	items := body["order_items"].([]interface{})
	require.Len(t, items, 1)
	line := items[0].(map[string]interface{})
	require.Equal(t, "Tomatoes", line["product_name"])
	require.Equal(t, "Buyer 1", line["buyer_name"])
}

func TestOrderReceiptQR(t *testing.T) {
	env := newTestEnv(t)

	_, farmerID := newFarmer(t, env, 1)
	buyerToken, buyerID := newBuyer(t, env, 1)
	otherToken, _ := newBuyer(t, env, 2)
	product := seedProduct(t, env, farmerID, "Tomatoes", 10.0, 2)

	orderID := paidOrder(t, env, buyerToken, buyerID, map[uint]uint{product.ID: 1})

	rec := env.doJSON(http.MethodGet, "/v1/orders/"+itoa(orderID)+"/receipt", nil, buyerToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.NotEmpty(t, rec.Body.Bytes())

	// Another buyer cannot pull someone else's receipt.
	rec = env.doJSON(http.MethodGet, "/v1/orders/"+itoa(orderID)+"/receipt", nil, otherToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
