package services

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"parkms/database"
	"parkms/models"

	"gorm.io/gorm"
)

// DefaultHourlyRate 找不到 hourly_rate 設定時的後備費率
const DefaultHourlyRate = 50.0

// CalculateParkingFee 根據進場與出場時間計算停車費用。
// 停車分鐘數無條件捨去；計費小時數 = max(1, ceil(分鐘/60))，不足一小時以一小時計。
func CalculateParkingFee(entryTime, exitTime time.Time, hourlyRate float64) (int, float64, error) {
	if exitTime.Before(entryTime) {
		log.Printf("exit_time %v is before entry_time %v", exitTime, entryTime)
		return 0, 0, fmt.Errorf("exit_time %v cannot be earlier than entry_time %v", exitTime, entryTime)
	}

	if hourlyRate <= 0 {
		return 0, 0, fmt.Errorf("invalid hourly_rate: %.2f", hourlyRate)
	}

	durationMinutes := int(exitTime.Sub(entryTime).Minutes())
	feeAmount := float64(BillableHours(durationMinutes)) * hourlyRate
	return durationMinutes, feeAmount, nil
}

// BillableHours 計費小時數 = max(1, ceil(分鐘/60))，不足一小時以一小時計
func BillableHours(durationMinutes int) int {
	return int(math.Max(1, math.Ceil(float64(durationMinutes)/60.0)))
}

// GetHourlyRate 從 system_settings 讀取每小時費率，無效或不存在時使用預設值
func GetHourlyRate(db *gorm.DB) float64 {
	if db == nil {
		db = database.DB
	}

	var setting models.SystemSetting
	if err := db.Where("setting_key = ?", "hourly_rate").First(&setting).Error; err != nil {
		log.Printf("hourly_rate setting not found, using default %.2f: %v", DefaultHourlyRate, err)
		return DefaultHourlyRate
	}

	rate, err := strconv.ParseFloat(setting.SettingValue, 64)
	if err != nil || rate <= 0 {
		log.Printf("Invalid hourly_rate setting %q, using default %.2f", setting.SettingValue, DefaultHourlyRate)
		return DefaultHourlyRate
	}
	return rate
}
