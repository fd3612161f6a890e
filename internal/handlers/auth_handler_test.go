package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danuarta/agromart/internal/helpers"
	"github.com/danuarta/agromart/internal/models"
)

func TestRegisterCreatesSatelliteRows(t *testing.T) {
	env := newTestEnv(t)

	_, farmerID := newFarmer(t, env, 1)
	_, buyerID := newBuyer(t, env, 1)

	var farmer models.Farmer
	require.NoError(t, env.DB.Where("user_id = ?", farmerID).First(&farmer).Error)
	require.Zero(t, farmer.TotalSales)

	var buyer models.Buyer
	require.NoError(t, env.DB.Where("user_id = ?", buyerID).First(&buyer).Error)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	newBuyer(t, env, 1)

	rec := env.doJSON(http.MethodPost, "/v1/register", map[string]interface{}{
		"name":     "Another Buyer",
		"email":    "buyer1@example.com",
		"password": "password123",
		"role":     models.RoleBuyer,
	}, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	body := decodeJSON(t, rec)
	require.Equal(t, helpers.CodeConflict, body["code"])
}

func TestRegisterInvalidRole(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/v1/register", map[string]interface{}{
		"name":     "Nobody",
		"email":    "nobody@example.com",
		"password": "password123",
		"role":     "ADMIN",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, helpers.CodeValidation, decodeJSON(t, rec)["code"])
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	newBuyer(t, env, 1)

	rec := env.doJSON(http.MethodPost, "/v1/login", map[string]interface{}{
		"email":    "buyer1@example.com",
		"password": "wrong-password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, helpers.CodeAuth, decodeJSON(t, rec)["code"])
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodGet, "/v1/profile", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, helpers.CodeAuth, decodeJSON(t, rec)["code"])
}

func TestRoleGate(t *testing.T) {
	env := newTestEnv(t)

	buyerToken, _ := newBuyer(t, env, 1)

	// A buyer may not create products.
	rec := env.doJSON(http.MethodPost, "/v1/products", map[string]interface{}{
		"name":        "Tomatoes",
		"description": "red",
		"price":       2.5,
		"stock":       10,
	}, buyerToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, helpers.CodeForbidden, decodeJSON(t, rec)["code"])
}

func TestUpdateProfileLocation(t *testing.T) {
	env := newTestEnv(t)

	buyerToken, buyerID := newBuyer(t, env, 1)

	rec := env.doJSON(http.MethodPut, "/v1/profile", map[string]interface{}{
		"location": "99 New Lane",
	}, buyerToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, env.DB.First(&user, buyerID).Error)
	require.Equal(t, "99 New Lane", user.Location)
}
