package services

import (
	"errors"
	"fmt"
	"log"

	"parkms/database"
	"parkms/models"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ErrNoSlotAvailable 沒有可分配的空車位
var ErrNoSlotAvailable = errors.New("no parking slot available")

// ErrSlotOccupied 車位仍有未結束的停車紀錄
var ErrSlotOccupied = errors.New("slot has an active parking record")

// AllocateSlot 在事務內分配一個空車位：取編號最小的 Free 車位，
// 並以條件更新將狀態轉為 Occupied。兩個併發進場可能讀到同一個車位，
// 因此以 affected rows 判定搶佔結果，搶不到視為沒有空位。
func AllocateSlot(tx *gorm.DB, vehicleType string) (*models.ParkingSlot, error) {
	query := tx.Where("status = ?", "Free")
	if vehicleType != "" {
		query = query.Where("slot_type = ?", vehicleType)
	}

	var slot models.ParkingSlot
	if err := query.Order("slot_number").First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSlotAvailable
		}
		return nil, fmt.Errorf("failed to query free slot: %w", err)
	}

	// 條件更新：只有仍為 Free 時才轉為 Occupied
	result := tx.Model(&models.ParkingSlot{}).
		Where("id = ? AND status = ?", slot.ID, "Free").
		Update("status", "Occupied")
	if result.Error != nil {
		return nil, fmt.Errorf("failed to occupy slot %s: %w", slot.SlotNumber, result.Error)
	}
	if result.RowsAffected == 0 {
		log.Printf("Slot %s was taken by a concurrent entry", slot.SlotNumber)
		return nil, ErrNoSlotAvailable
	}

	slot.Status = "Occupied"
	return &slot, nil
}

// GetAllSlots 查詢所有車位，附帶當前停放中的紀錄
func GetAllSlots() ([]models.ParkingSlotResponse, error) {
	var slots []models.ParkingSlot
	if err := database.DB.Order("slot_number").Find(&slots).Error; err != nil {
		log.Printf("Failed to query parking slots: %v", err)
		return nil, fmt.Errorf("failed to query parking slots: %w", err)
	}

	var openRecords []models.ParkingRecord
	if err := database.DB.Where("exit_time IS NULL").Find(&openRecords).Error; err != nil {
		log.Printf("Failed to query open parking records: %v", err)
		return nil, fmt.Errorf("failed to query open parking records: %w", err)
	}

	occupiedMap := make(map[int]*models.ParkingRecord, len(openRecords))
	for i := range openRecords {
		occupiedMap[openRecords[i].SlotID] = &openRecords[i]
	}

	responses := make([]models.ParkingSlotResponse, len(slots))
	for i := range slots {
		responses[i] = slots[i].ToResponse(occupiedMap[slots[i].ID])
	}

	log.Printf("Successfully retrieved %d parking slots", len(slots))
	return responses, nil
}

// UpdateSlot 更新車位狀態或類型。車位仍有未結束紀錄時不允許改狀態，
// 必須先辦理離場。
func UpdateSlot(id int, status, slotType string) (*models.ParkingSlot, error) {
	var slot models.ParkingSlot
	if err := database.DB.First(&slot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find slot %d: %w", id, err)
	}

	if status != "" && status != "Occupied" {
		var count int64
		if err := database.DB.Model(&models.ParkingRecord{}).
			Where("slot_id = ? AND exit_time IS NULL", id).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check open records for slot %d: %w", id, err)
		}
		if count > 0 {
			return nil, ErrSlotOccupied
		}
	}

	updates := make(map[string]interface{})
	if status != "" {
		updates["status"] = status
	}
	if slotType != "" {
		updates["slot_type"] = slotType
	}

	if err := database.DB.Model(&slot).Updates(updates).Error; err != nil {
		log.Printf("Failed to update slot %d: %v", id, err)
		return nil, fmt.Errorf("failed to update slot %d: %w", id, err)
	}

	log.Printf("Successfully updated slot %d: %v", id, updates)
	return &slot, nil
}

// BulkCreateResult 批次建立車位的結果
type BulkCreateResult struct {
	Created []models.ParkingSlot `json:"slots_created"`
	Errors  []string             `json:"errors"`
}

// BulkCreateSlots 依 {prefix}-{三位數序號} 產生車位編號並逐筆建立。
// 單筆撞號（duplicate key）只記錄錯誤，不中斷其餘車位的建立。
func BulkCreateSlots(count int, prefix string, startNumber int, slotType string) (*BulkCreateResult, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be greater than 0")
	}

	result := &BulkCreateResult{
		Created: make([]models.ParkingSlot, 0, count),
		Errors:  make([]string, 0),
	}

	for i := 0; i < count; i++ {
		slotNumber := FormatSlotNumber(prefix, startNumber+i)
		slot := models.ParkingSlot{
			SlotNumber: slotNumber,
			SlotType:   slotType,
			Status:     "Free",
		}

		if err := database.DB.Create(&slot).Error; err != nil {
			var mysqlErr *mysql.MySQLError
			if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
				result.Errors = append(result.Errors, fmt.Sprintf("Slot %s already exists", slotNumber))
			} else {
				log.Printf("Failed to create slot %s: %v", slotNumber, err)
				result.Errors = append(result.Errors, fmt.Sprintf("Error creating slot %s: %v", slotNumber, err))
			}
			continue
		}

		result.Created = append(result.Created, slot)
	}

	log.Printf("Bulk slot creation finished: %d created, %d errors", len(result.Created), len(result.Errors))
	return result, nil
}

// FormatSlotNumber 產生車位編號，例如 prefix=A, number=7 → A-007
func FormatSlotNumber(prefix string, number int) string {
	return fmt.Sprintf("%s-%03d", prefix, number)
}

// ReconcileSlotStatus 修復車位狀態與停車紀錄不一致的情況：
// Occupied 但沒有未結束紀錄的車位改回 Free。由定時任務呼叫。
func ReconcileSlotStatus() error {
	result := database.DB.Model(&models.ParkingSlot{}).
		Where("status = ? AND id NOT IN (?)", "Occupied",
			database.DB.Model(&models.ParkingRecord{}).Select("slot_id").Where("exit_time IS NULL")).
		Update("status", "Free")
	if result.Error != nil {
		log.Printf("Failed to reconcile slot status: %v", result.Error)
		return fmt.Errorf("failed to reconcile slot status: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		log.Printf("Reconciled %d slots stuck in Occupied without an open record", result.RowsAffected)
	}
	return nil
}
