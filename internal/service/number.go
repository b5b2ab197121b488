package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomSuffix(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(numberAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random suffix: %w", err)
		}
		b[i] = numberAlphabet[idx.Int64()]
	}
	return string(b), nil
}

// GenerateOrderNumber returns a human-readable order number, e.g.
// ORD-20250129-A3K9. Uniqueness is enforced by the database; callers retry
// on collision.
func GenerateOrderNumber(now time.Time) (string, error) {
	suffix, err := randomSuffix(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix), nil
}

// GenerateTrackingNumber returns a tracking number assigned when an order
// ships, e.g. TRK-20250129-153045-X7QP2M.
func GenerateTrackingNumber(now time.Time) (string, error) {
	suffix, err := randomSuffix(6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TRK-%s-%s", now.Format("20060102-150405"), suffix), nil
}
