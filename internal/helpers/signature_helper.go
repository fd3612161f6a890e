package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateReceiptSignature signs an order receipt so a farmer can verify a
// buyer's pickup QR without trusting the encoded fields.
func GenerateReceiptSignature(orderID uint, transactionID string, userID uint, secretKey string) string {
	data := fmt.Sprintf("%d:%s:%d", orderID, transactionID, userID)
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func BuildReceiptData(orderID uint, transactionID string, userID uint, secretKey string) string {
	signature := GenerateReceiptSignature(orderID, transactionID, userID, secretKey)
	return fmt.Sprintf("order:%d;txn:%s;signature:%s", orderID, transactionID, signature)
}

func ValidateReceiptSignature(orderID uint, transactionID string, userID uint, secretKey, signature string) bool {
	expected := GenerateReceiptSignature(orderID, transactionID, userID, secretKey)
	return hmac.Equal([]byte(expected), []byte(signature))
}
