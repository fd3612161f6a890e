package helpers

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CheckoutClaims stages a priced checkout between the checkout and payment
// steps. The token is held by the client, so no server-side session state
// survives between the two requests.
type CheckoutClaims struct {
	UserID      uint    `json:"user_id"`
	CheckoutID  uint    `json:"checkout_id"`
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"delivery_fee"`
	GrandTotal  float64 `json:"grand_total"`
	jwt.RegisteredClaims
}

func GenerateCheckoutToken(secret []byte, claims CheckoutClaims) (string, error) {
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(30 * time.Minute))
	claims.IssuedAt = jwt.NewNumericDate(time.Now())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(secret)
}

func ParseCheckoutToken(secret []byte, tokenString string) (*CheckoutClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CheckoutClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CheckoutClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid checkout token")
	}
	return claims, nil
}
