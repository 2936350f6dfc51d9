package service

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// generateSaleNumber builds a human-readable receipt number of the
// form SALE-YYYYMMDD-HHMMSS-RRR. The random suffix disambiguates sales
// recorded within the same second.
func generateSaleNumber(now time.Time) string {
	return fmt.Sprintf("SALE-%s-%s-%03d",
		now.Format("20060102"),
		now.Format("150405"),
		rand.IntN(1000),
	)
}
