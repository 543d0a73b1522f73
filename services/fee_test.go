package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateParkingFee(t *testing.T) {
	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		exit        time.Time
		hourlyRate  float64
		wantMinutes int
		wantFee     float64
	}{
		{"45 分鐘不足一小時以一小時計", entry.Add(45 * time.Minute), 50, 45, 50},
		{"剛好一小時", entry.Add(60 * time.Minute), 50, 60, 50},
		{"61 分鐘進位到兩小時", entry.Add(61 * time.Minute), 50, 61, 100},
		{"零分鐘仍收一小時", entry, 50, 0, 50},
		{"兩小時整", entry.Add(120 * time.Minute), 50, 120, 100},
		{"不同費率", entry.Add(90 * time.Minute), 80, 90, 160},
		{"秒數無條件捨去", entry.Add(59*time.Minute + 59*time.Second), 50, 59, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minutes, fee, err := CalculateParkingFee(entry, tt.exit, tt.hourlyRate)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantMinutes, minutes)
			assert.Equal(t, tt.wantFee, fee)
		})
	}
}

func TestBillableHours(t *testing.T) {
	assert.Equal(t, 1, BillableHours(0))
	assert.Equal(t, 1, BillableHours(45))
	assert.Equal(t, 1, BillableHours(60))
	assert.Equal(t, 2, BillableHours(61))
	assert.Equal(t, 2, BillableHours(120))
	assert.Equal(t, 3, BillableHours(121))
}

func TestCalculateParkingFeeIdempotent(t *testing.T) {
	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	exit := entry.Add(135 * time.Minute)

	minutes1, fee1, err1 := CalculateParkingFee(entry, exit, 50)
	minutes2, fee2, err2 := CalculateParkingFee(entry, exit, 50)

	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, minutes1, minutes2)
	assert.Equal(t, fee1, fee2)
}

func TestCalculateParkingFeeExitBeforeEntry(t *testing.T) {
	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	exit := entry.Add(-1 * time.Minute)

	_, _, err := CalculateParkingFee(entry, exit, 50)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be earlier than entry_time")
}

func TestCalculateParkingFeeInvalidRate(t *testing.T) {
	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	exit := entry.Add(30 * time.Minute)

	_, _, err := CalculateParkingFee(entry, exit, 0)
	assert.Error(t, err)

	_, _, err = CalculateParkingFee(entry, exit, -10)
	assert.Error(t, err)
}
