package util

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateReceiptNumber builds a time-derived receipt number, e.g.
// RCP-20260901-153012-4821. Unique enough in practice for a single till;
// the sales table's unique index catches the rare collision.
func GenerateReceiptNumber(prefix string, t time.Time) string {
	if prefix == "" {
		prefix = "RCP"
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, t.Format("20060102-150405"), rand.Intn(10000))
}
