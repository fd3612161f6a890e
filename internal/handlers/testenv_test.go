package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/danuarta/agromart/config"
	"github.com/danuarta/agromart/internal/models"
	"github.com/danuarta/agromart/internal/server"
)

type testEnv struct {
	T  *testing.T
	R  *gin.Engine
	DB *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// The in-memory database lives on a single connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateModels(db))

	r := gin.New()
	server.SetupRoutes(r, db)

	return &testEnv{T: t, R: r, DB: db}
}

func (env *testEnv) doJSON(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.R.ServeHTTP(rec, req)
	return rec
}

func itoa(id uint) string {
	return fmt.Sprintf("%d", id)
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// registerAndLogin creates a user through the public endpoints and returns
// its token and user id.
func registerAndLogin(t *testing.T, env *testEnv, name, email, role, location string) (string, uint) {
	t.Helper()

	rec := env.doJSON(http.MethodPost, "/v1/register", map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": "password123",
		"location": location,
		"role":     role,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.doJSON(http.MethodPost, "/v1/login", map[string]interface{}{
		"email":    email,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	return resp.Token, resp.User.ID
}

func newFarmer(t *testing.T, env *testEnv, n int) (string, uint) {
	t.Helper()
	return registerAndLogin(t, env,
		fmt.Sprintf("Farmer %d", n),
		fmt.Sprintf("farmer%d@example.com", n),
		models.RoleFarmer, "Green Valley")
}

func newBuyer(t *testing.T, env *testEnv, n int) (string, uint) {
	t.Helper()
	return registerAndLogin(t, env,
		fmt.Sprintf("Buyer %d", n),
		fmt.Sprintf("buyer%d@example.com", n),
		models.RoleBuyer, "12 Market Street")
}

func seedProduct(t *testing.T, env *testEnv, farmerID uint, name string, price float64, stock uint) models.Product {
	t.Helper()
	product := models.Product{
		FarmerID:      farmerID,
		Name:          name,
		Description:   "fresh from the farm",
		Price:         price,
		StockQuantity: stock,
		IsAvailable:   true,
	}
	require.NoError(t, env.DB.Create(&product).Error)
	return product
}
