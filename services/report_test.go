package services

import (
	"strings"
	"testing"
	"time"

	"parkms/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortColumn(t *testing.T) {
	// 允許名單內的欄位原樣回傳
	assert.Equal(t, "entry_time", ValidateSortColumn("entry_time"))
	assert.Equal(t, "vehicle_registration", ValidateSortColumn("vehicle_registration"))
	assert.Equal(t, "slot_number", ValidateSortColumn("slot_number"))
	assert.Equal(t, "owner_name", ValidateSortColumn("owner_name"))

	// 名單外的一律退回預設值
	assert.Equal(t, "entry_time", ValidateSortColumn("fee_amount"))
	assert.Equal(t, "entry_time", ValidateSortColumn("id; DROP TABLE parking_records"))
	assert.Equal(t, "entry_time", ValidateSortColumn(""))
}

func TestValidateSortOrder(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder("ASC"))
	assert.Equal(t, "ASC", ValidateSortOrder("asc"))
	assert.Equal(t, "DESC", ValidateSortOrder("DESC"))
	assert.Equal(t, "DESC", ValidateSortOrder("desc"))
	assert.Equal(t, "DESC", ValidateSortOrder(""))
	assert.Equal(t, "DESC", ValidateSortOrder("sideways"))
}

func TestRevenueReportRejectsInvalidPeriod(t *testing.T) {
	_, _, err := RevenueReport("yearly", "", "")
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, _, err = RevenueReport("", "", "")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestRevenueReportCustomRequiresDateRange(t *testing.T) {
	_, _, err := RevenueReport("custom", "", "")
	assert.ErrorIs(t, err, ErrMissingDateRange)

	_, _, err = RevenueReport("custom", "2025-06-01", "")
	assert.ErrorIs(t, err, ErrMissingDateRange)

	_, _, err = RevenueReport("custom", "", "2025-06-30")
	assert.ErrorIs(t, err, ErrMissingDateRange)
}

func TestQuoteCSVField(t *testing.T) {
	assert.Equal(t, `"ABC-123"`, quoteCSVField("ABC-123"))
	assert.Equal(t, `""`, quoteCSVField(""))
	// 內嵌引號加倍
	assert.Equal(t, `"John ""JJ"" Wang"`, quoteCSVField(`John "JJ" Wang`))
	// 含逗號的值靠引號包住即可
	assert.Equal(t, `"Wang, John"`, quoteCSVField("Wang, John"))
}

func TestRenderRecordsCSV(t *testing.T) {
	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	exit := entry.Add(90 * time.Minute)
	duration := 90
	fee := 100.0

	records := []models.RecordWithSlot{
		{
			ParkingRecord: models.ParkingRecord{
				ID:                  1,
				VehicleRegistration: "ABC-123",
				OwnerName:           `John "JJ" Wang`,
				ContactNumber:       "0912345678",
				VehicleType:         "Car",
				EntryTime:           entry,
				ExitTime:            &exit,
				DurationMinutes:     &duration,
				FeeAmount:           &fee,
				PaymentStatus:       "Paid",
			},
			SlotNumber: "A-001",
		},
		{
			ParkingRecord: models.ParkingRecord{
				ID:                  2,
				VehicleRegistration: "XYZ-999",
				VehicleType:         "Bike",
				EntryTime:           entry,
				PaymentStatus:       "Unpaid",
			},
			SlotNumber: "B-002",
		},
	}

	csv := RenderRecordsCSV(records)
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")

	assert.Len(t, lines, 3)
	assert.Equal(t,
		"id,vehicle_registration,slot_number,owner_name,contact_number,vehicle_type,entry_time,exit_time,parking_duration_minutes,fee_amount,payment_status",
		lines[0])
	// 字串欄位有引號、內嵌引號加倍，數值欄位不加引號
	assert.Equal(t,
		`1,"ABC-123","A-001","John ""JJ"" Wang","0912345678","Car","2025-06-01 10:00:00","2025-06-01 11:30:00",90,100.00,"Paid"`,
		lines[1])
	// 尚未離場的紀錄：離場時間、時長與費用為空
	assert.Equal(t,
		`2,"XYZ-999","B-002","","","Bike","2025-06-01 10:00:00","",,,"Unpaid"`,
		lines[2])
}

func TestRenderRevenueCSV(t *testing.T) {
	rows := []RevenueRow{
		{Period: "2025-06-01", Transactions: 3, TotalRevenue: 250, AverageFee: 83.333333},
		{Period: "2025-06-02", Transactions: 1, TotalRevenue: 50, AverageFee: 50},
	}

	csv := RenderRevenueCSV(rows)
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")

	assert.Len(t, lines, 3)
	assert.Equal(t, "period,transactions,total_revenue,average_fee", lines[0])
	assert.Equal(t, `"2025-06-01",3,250.00,83.33`, lines[1])
	assert.Equal(t, `"2025-06-02",1,50.00,50.00`, lines[2])
}
