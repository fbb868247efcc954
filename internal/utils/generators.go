package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOrderID builds a human-legible order id: the ORD prefix plus a
// random ten-digit suffix. Collisions across realistic submission volumes
// are vanishingly unlikely.
func GenerateOrderID() string {
	randomNum, err := rand.Int(rand.Reader, big.NewInt(10_000_000_000))
	if err != nil {
		// crypto/rand should not fail; fall back to a timestamp suffix
		// so id generation itself can never sink a submission.
		return fmt.Sprintf("ORD-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("ORD-%010d", randomNum.Int64())
}
