package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSlotNumber(t *testing.T) {
	assert.Equal(t, "A-001", FormatSlotNumber("A", 1))
	assert.Equal(t, "A-042", FormatSlotNumber("A", 42))
	assert.Equal(t, "B-100", FormatSlotNumber("B", 100))
	assert.Equal(t, "VIP-007", FormatSlotNumber("VIP", 7))
	// 超過三位數不截斷
	assert.Equal(t, "A-1000", FormatSlotNumber("A", 1000))
}
