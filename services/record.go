package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"parkms/database"
	"parkms/models"

	"gorm.io/gorm"
)

// ErrVehicleAlreadyParked 同車牌已有未結束的停車紀錄
var ErrVehicleAlreadyParked = errors.New("vehicle is already parked")

// ErrNoActiveRecord 查無未結束的停車紀錄
var ErrNoActiveRecord = errors.New("no active parking record found")

// OverstayThreshold 停車超時告警門檻
const OverstayThreshold = 8 * time.Hour

// EntryResult 進場結果
type EntryResult struct {
	Record       models.ParkingRecord
	SlotAssigned string
}

// ExitResult 離場結果
type ExitResult struct {
	Record          models.ParkingRecord
	SlotFreed       string
	DurationMinutes int
	FeeAmount       float64
}

// VehicleEntry 車輛進場：檢查是否已在場內、分配車位並建立停車紀錄。
// 車位狀態更新與紀錄寫入在同一個事務內，任一失敗即回滾。
func VehicleEntry(vehicleRegistration, ownerName, contactNumber, vehicleType string) (*EntryResult, error) {
	if vehicleType == "" {
		vehicleType = "Car"
	}

	// 檢查是否已在場內
	var existing models.ParkingRecord
	err := database.DB.Where("vehicle_registration = ? AND exit_time IS NULL", vehicleRegistration).
		First(&existing).Error
	if err == nil {
		log.Printf("Vehicle %s is already parked (record %d)", vehicleRegistration, existing.ID)
		return nil, ErrVehicleAlreadyParked
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing record for %s: %w", vehicleRegistration, err)
	}

	var result EntryResult
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// 事務內再確認一次，縮小併發進場的競爭窗口
		var open models.ParkingRecord
		if err := tx.Where("vehicle_registration = ? AND exit_time IS NULL", vehicleRegistration).
			First(&open).Error; err == nil {
			return ErrVehicleAlreadyParked
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to re-check open record: %w", err)
		}

		slot, err := AllocateSlot(tx, "")
		if err != nil {
			return err
		}

		record := models.ParkingRecord{
			VehicleRegistration: vehicleRegistration,
			SlotID:              slot.ID,
			OwnerName:           ownerName,
			ContactNumber:       contactNumber,
			VehicleType:         vehicleType,
			EntryTime:           time.Now(),
			PaymentStatus:       "Unpaid",
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create parking record: %w", err)
		}

		result.Record = record
		result.SlotAssigned = slot.SlotNumber
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Vehicle %s entered, assigned slot %s (record %d)",
		vehicleRegistration, result.SlotAssigned, result.Record.ID)
	return &result, nil
}

// VehicleExit 車輛離場：以車牌或車位編號找出未結束的紀錄（車牌優先），
// 計算費用並在同一個事務內更新紀錄與釋放車位。
func VehicleExit(vehicleRegistration, slotNumber string) (*ExitResult, error) {
	query := database.DB.Model(&models.ParkingRecord{}).
		Select("parking_records.*, parking_slots.slot_number").
		Joins("JOIN parking_slots ON parking_records.slot_id = parking_slots.id").
		Where("parking_records.exit_time IS NULL")

	if vehicleRegistration != "" {
		query = query.Where("parking_records.vehicle_registration = ?", vehicleRegistration)
	} else if slotNumber != "" {
		query = query.Where("parking_slots.slot_number = ?", slotNumber)
	} else {
		return nil, fmt.Errorf("vehicle registration or slot number is required")
	}

	var record models.RecordWithSlot
	if err := query.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveRecord
		}
		return nil, fmt.Errorf("failed to find active parking record: %w", err)
	}

	exitTime := time.Now()
	hourlyRate := GetHourlyRate(database.DB)
	durationMinutes, feeAmount, err := CalculateParkingFee(record.EntryTime, exitTime, hourlyRate)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate parking fee: %w", err)
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// 出場欄位一次寫入：exit_time、停車分鐘數、費用、付款狀態
		updates := map[string]interface{}{
			"exit_time":                exitTime,
			"parking_duration_minutes": durationMinutes,
			"fee_amount":               feeAmount,
			"payment_status":           "Paid",
		}
		result := tx.Model(&models.ParkingRecord{}).
			Where("id = ? AND exit_time IS NULL", record.ID).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to close parking record %d: %w", record.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			// 另一個請求已先結束這筆紀錄
			return ErrNoActiveRecord
		}

		if err := tx.Model(&models.ParkingSlot{}).
			Where("id = ?", record.SlotID).
			Update("status", "Free").Error; err != nil {
			return fmt.Errorf("failed to free slot %d: %w", record.SlotID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	record.ExitTime = &exitTime
	record.DurationMinutes = &durationMinutes
	record.FeeAmount = &feeAmount
	record.PaymentStatus = "Paid"

	log.Printf("Vehicle %s exited, freed slot %s, duration %d minutes, fee %.2f",
		record.VehicleRegistration, record.SlotNumber, durationMinutes, feeAmount)
	return &ExitResult{
		Record:          record.ParkingRecord,
		SlotFreed:       record.SlotNumber,
		DurationMinutes: durationMinutes,
		FeeAmount:       feeAmount,
	}, nil
}

// GetCurrentVehicles 查詢目前在場車輛，依進場時間新到舊排序
func GetCurrentVehicles() ([]models.RecordWithSlot, error) {
	var records []models.RecordWithSlot
	if err := database.DB.Model(&models.ParkingRecord{}).
		Select("parking_records.*, parking_slots.slot_number").
		Joins("JOIN parking_slots ON parking_records.slot_id = parking_slots.id").
		Where("parking_records.exit_time IS NULL").
		Order("parking_records.entry_time DESC").
		Find(&records).Error; err != nil {
		log.Printf("Failed to query current vehicles: %v", err)
		return nil, fmt.Errorf("failed to query current vehicles: %w", err)
	}

	log.Printf("Successfully retrieved %d current vehicles", len(records))
	return records, nil
}

// GetParkingHistory 查詢停車歷史，支援車牌與進場日期區間過濾
func GetParkingHistory(vehicleRegistration, dateFrom, dateTo string, limit int) ([]models.RecordWithSlot, error) {
	if limit <= 0 {
		limit = 100
	}

	query := database.DB.Model(&models.ParkingRecord{}).
		Select("parking_records.*, parking_slots.slot_number").
		Joins("JOIN parking_slots ON parking_records.slot_id = parking_slots.id")

	if vehicleRegistration != "" {
		query = query.Where("parking_records.vehicle_registration = ?", vehicleRegistration)
	}
	if dateFrom != "" {
		query = query.Where("DATE(parking_records.entry_time) >= ?", dateFrom)
	}
	if dateTo != "" {
		query = query.Where("DATE(parking_records.entry_time) <= ?", dateTo)
	}

	var records []models.RecordWithSlot
	if err := query.Order("parking_records.entry_time DESC").Limit(limit).Find(&records).Error; err != nil {
		log.Printf("Failed to query parking history: %v", err)
		return nil, fmt.Errorf("failed to query parking history: %w", err)
	}

	return records, nil
}

// ExitVehicleDetails 離場繳費資訊中的車輛欄位
type ExitVehicleDetails struct {
	VehicleRegistration string `json:"vehicle_registration"`
	OwnerName           string `json:"owner_name"`
	ContactNumber       string `json:"contact_number"`
}

// ExitParkingDetails 離場繳費資訊中的停車欄位
type ExitParkingDetails struct {
	SlotNumber      string    `json:"slot_number"`
	EntryTime       time.Time `json:"entry_time"`
	CurrentTime     time.Time `json:"current_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

// ExitPaymentDetails 離場繳費資訊中的費用欄位
type ExitPaymentDetails struct {
	HourlyRate  float64 `json:"hourly_rate"`
	HoursParked int     `json:"hours_parked"`
	FeeAmount   float64 `json:"fee_amount"`
	Currency    string  `json:"currency"`
}

// ExitDetails 離場前的繳費資訊
type ExitDetails struct {
	VehicleDetails ExitVehicleDetails `json:"vehicle_details"`
	ParkingDetails ExitParkingDetails `json:"parking_details"`
	PaymentDetails ExitPaymentDetails `json:"payment_details"`
	Instructions   string             `json:"instructions"`
}

// GetExitDetails 以現在時間試算某車牌的離場繳費資訊。
// 試算結果不落庫，實際費用在離場操作時以相同公式重算。
func GetExitDetails(vehicleRegistration string) (*ExitDetails, error) {
	record, err := GetOpenRecordByRegistration(vehicleRegistration)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNoActiveRecord
	}

	now := time.Now()
	hourlyRate := GetHourlyRate(database.DB)
	durationMinutes, feeAmount, err := CalculateParkingFee(record.EntryTime, now, hourlyRate)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate exit fee: %w", err)
	}

	return &ExitDetails{
		VehicleDetails: ExitVehicleDetails{
			VehicleRegistration: record.VehicleRegistration,
			OwnerName:           record.OwnerName,
			ContactNumber:       record.ContactNumber,
		},
		ParkingDetails: ExitParkingDetails{
			SlotNumber:      record.SlotNumber,
			EntryTime:       record.EntryTime,
			CurrentTime:     now,
			DurationMinutes: durationMinutes,
		},
		PaymentDetails: ExitPaymentDetails{
			HourlyRate:  hourlyRate,
			HoursParked: BillableHours(durationMinutes),
			FeeAmount:   feeAmount,
			Currency:    "INR",
		},
		Instructions: "Proceed to exit gate for payment and vehicle release",
	}, nil
}

// GetOpenRecordByRegistration 查詢某車牌未結束的停車紀錄，不存在時回傳 nil
func GetOpenRecordByRegistration(vehicleRegistration string) (*models.RecordWithSlot, error) {
	var record models.RecordWithSlot
	err := database.DB.Model(&models.ParkingRecord{}).
		Select("parking_records.*, parking_slots.slot_number").
		Joins("JOIN parking_slots ON parking_records.slot_id = parking_slots.id").
		Where("parking_records.vehicle_registration = ? AND parking_records.exit_time IS NULL", vehicleRegistration).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query open record for %s: %w", vehicleRegistration, err)
	}
	return &record, nil
}

// CheckOverstayedVehicles 掃描在場超過門檻時間的車輛並記錄告警，由定時任務呼叫
func CheckOverstayedVehicles() error {
	cutoff := time.Now().Add(-OverstayThreshold)

	var records []models.RecordWithSlot
	if err := database.DB.Model(&models.ParkingRecord{}).
		Select("parking_records.*, parking_slots.slot_number").
		Joins("JOIN parking_slots ON parking_records.slot_id = parking_slots.id").
		Where("parking_records.exit_time IS NULL AND parking_records.entry_time < ?", cutoff).
		Find(&records).Error; err != nil {
		log.Printf("Failed to scan for overstayed vehicles: %v", err)
		return fmt.Errorf("failed to scan for overstayed vehicles: %w", err)
	}

	for _, record := range records {
		log.Printf("Overstay alert: vehicle %s in slot %s since %s",
			record.VehicleRegistration, record.SlotNumber, record.EntryTime.Format("2006-01-02 15:04:05"))
	}
	return nil
}
