package services

import (
	"fmt"
	"log"
	"time"

	"parkms/database"
	"parkms/models"
)

// DashboardStatistics 管理端儀表板統計數字
type DashboardStatistics struct {
	TotalSlots      int64   `json:"total_slots"`
	OccupiedSlots   int64   `json:"occupied_slots"`
	FreeSlots       int64   `json:"free_slots"`
	TodayRevenue    float64 `json:"today_revenue"`
	CurrentVehicles int64   `json:"current_vehicles"`
}

// SlotStatusCount 車位狀態分佈
type SlotStatusCount struct {
	Status string `json:"status" gorm:"column:status"`
	Count  int64  `json:"count" gorm:"column:count"`
}

// AdminDashboard 管理端儀表板
type AdminDashboard struct {
	Statistics       DashboardStatistics            `json:"statistics"`
	SlotStatus       []SlotStatusCount              `json:"slot_status"`
	RecentActivities []models.ParkingRecordResponse `json:"recent_activities"`
	Alerts           *string                        `json:"alerts"`
}

// GetAdminDashboard 彙總管理端儀表板：車位佔用、今日營收、近期活動
func GetAdminDashboard() (*AdminDashboard, error) {
	var stats DashboardStatistics

	if err := database.DB.Model(&models.ParkingSlot{}).Count(&stats.TotalSlots).Error; err != nil {
		return nil, fmt.Errorf("failed to count slots: %w", err)
	}
	if err := database.DB.Model(&models.ParkingSlot{}).
		Where("status = ?", "Occupied").Count(&stats.OccupiedSlots).Error; err != nil {
		return nil, fmt.Errorf("failed to count occupied slots: %w", err)
	}
	stats.FreeSlots = stats.TotalSlots - stats.OccupiedSlots

	today := time.Now().Format("2006-01-02")
	if err := database.DB.Model(&models.ParkingRecord{}).
		Where("DATE(exit_time) = ? AND payment_status = ?", today, "Paid").
		Select("COALESCE(SUM(fee_amount), 0)").Scan(&stats.TodayRevenue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum today's revenue: %w", err)
	}

	if err := database.DB.Model(&models.ParkingRecord{}).
		Where("exit_time IS NULL").Count(&stats.CurrentVehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to count current vehicles: %w", err)
	}

	var recent []models.RecordWithSlot
	if err := database.DB.Model(&models.ParkingRecord{}).
		Select("parking_records.*, parking_slots.slot_number").
		Joins("JOIN parking_slots ON parking_records.slot_id = parking_slots.id").
		Order("parking_records.created_at DESC").
		Limit(10).
		Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("failed to query recent activities: %w", err)
	}
	activities := make([]models.ParkingRecordResponse, len(recent))
	for i := range recent {
		activities[i] = recent[i].ToResponse()
	}

	var slotStatus []SlotStatusCount
	if err := database.DB.Model(&models.ParkingSlot{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&slotStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to group slot status: %w", err)
	}

	dashboard := &AdminDashboard{
		Statistics:       stats,
		SlotStatus:       slotStatus,
		RecentActivities: activities,
	}
	if stats.TotalSlots > 0 && stats.FreeSlots == 0 {
		alert := "Parking Full!"
		dashboard.Alerts = &alert
	}

	log.Printf("Admin dashboard built: %d/%d slots occupied, %d vehicles inside",
		stats.OccupiedSlots, stats.TotalSlots, stats.CurrentVehicles)
	return dashboard, nil
}

// UserDashboard 用戶端儀表板
type UserDashboard struct {
	User           models.UserResponse            `json:"user"`
	ParkingStatus  string                         `json:"parking_status"`
	CurrentParking *models.ParkingRecordResponse  `json:"current_parking"`
	ElapsedMinutes int                            `json:"elapsed_minutes"`
	EstimatedFee   float64                        `json:"estimated_fee"`
	RecentHistory  []models.ParkingRecordResponse `json:"recent_history"`
	Alerts         *string                        `json:"alerts"`
}

// GetUserDashboard 用戶儀表板：當前停車狀態、以現在時間試算的費用與近期紀錄。
// 試算結果不落庫，離場時以相同公式重算。
func GetUserDashboard(userID int) (*UserDashboard, error) {
	user, err := GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	dashboard := &UserDashboard{
		User:          user.ToResponse(),
		ParkingStatus: "Not Parked",
	}

	current, err := GetOpenRecordByRegistration(user.VehicleRegistration)
	if err != nil {
		return nil, err
	}
	if current != nil {
		dashboard.ParkingStatus = "Parked"
		resp := current.ToResponse()
		dashboard.CurrentParking = &resp

		now := time.Now()
		hourlyRate := GetHourlyRate(database.DB)
		elapsedMinutes, estimatedFee, err := CalculateParkingFee(current.EntryTime, now, hourlyRate)
		if err != nil {
			return nil, fmt.Errorf("failed to estimate parking fee: %w", err)
		}
		dashboard.ElapsedMinutes = elapsedMinutes
		dashboard.EstimatedFee = estimatedFee

		if now.Sub(current.EntryTime) > OverstayThreshold {
			alert := "Parking time exceeded 8 hours"
			dashboard.Alerts = &alert
		}
	}

	var recent []models.RecordWithSlot
	if err := database.DB.Model(&models.ParkingRecord{}).
		Select("parking_records.*, parking_slots.slot_number").
		Joins("JOIN parking_slots ON parking_records.slot_id = parking_slots.id").
		Where("parking_records.vehicle_registration = ?", user.VehicleRegistration).
		Order("parking_records.entry_time DESC").
		Limit(5).
		Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("failed to query recent history: %w", err)
	}
	history := make([]models.ParkingRecordResponse, len(recent))
	for i := range recent {
		history[i] = recent[i].ToResponse()
	}
	dashboard.RecentHistory = history

	return dashboard, nil
}

// GetUserHistory 用戶停車歷史（分頁）
func GetUserHistory(vehicleRegistration string, limit, offset int) ([]models.RecordWithSlot, int64, error) {
	if limit <= 0 {
		limit = 20
	}

	var total int64
	if err := database.DB.Model(&models.ParkingRecord{}).
		Where("vehicle_registration = ?", vehicleRegistration).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count user history: %w", err)
	}

	var records []models.RecordWithSlot
	if err := database.DB.Model(&models.ParkingRecord{}).
		Select("parking_records.*, parking_slots.slot_number").
		Joins("JOIN parking_slots ON parking_records.slot_id = parking_slots.id").
		Where("parking_records.vehicle_registration = ?", vehicleRegistration).
		Order("parking_records.entry_time DESC").
		Limit(limit).Offset(offset).
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query user history: %w", err)
	}

	return records, total, nil
}

// CountFreeSlots 計算目前空車位數
func CountFreeSlots() (int64, error) {
	var count int64
	if err := database.DB.Model(&models.ParkingSlot{}).
		Where("status = ?", "Free").Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count free slots: %w", err)
	}
	return count, nil
}
