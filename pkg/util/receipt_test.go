package util

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReceiptNumber(t *testing.T) {
	at := time.Date(2026, 9, 1, 15, 30, 12, 0, time.UTC)

	got := GenerateReceiptNumber("BRN", at)
	assert.True(t, strings.HasPrefix(got, "BRN-20260901-153012-"), got)
	assert.Len(t, got, len("BRN-20260901-153012-0000"))
}

func TestGenerateReceiptNumber_DefaultPrefix(t *testing.T) {
	got := GenerateReceiptNumber("", time.Now())
	assert.True(t, strings.HasPrefix(got, "RCP-"), got)
}
