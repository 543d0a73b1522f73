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

// SettingValue 設定值回應結構
type SettingValue struct {
	Value       string `json:"value"`
	Description string `json:"description"`
	ID          int    `json:"id"`
}

// SettingUpdateResult 批次更新設定的結果
type SettingUpdateResult struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Status string `json:"status"`
}

// SettingUpdateError 批次更新設定的單筆錯誤
type SettingUpdateError struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// GetAllSettings 查詢所有系統設定，回傳 key → 值 的映射
func GetAllSettings() (map[string]SettingValue, error) {
	var settings []models.SystemSetting
	if err := database.DB.Order("setting_key").Find(&settings).Error; err != nil {
		log.Printf("Failed to query system settings: %v", err)
		return nil, fmt.Errorf("failed to query system settings: %w", err)
	}

	result := make(map[string]SettingValue, len(settings))
	for _, setting := range settings {
		result[setting.SettingKey] = SettingValue{
			Value:       setting.SettingValue,
			Description: setting.Description,
			ID:          setting.ID,
		}
	}
	return result, nil
}

// GetSetting 依 key 查詢單筆設定
func GetSetting(key string) (*models.SystemSetting, error) {
	var setting models.SystemSetting
	if err := database.DB.Where("setting_key = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// UpsertSetting 依 key 更新設定值，不存在時插入
func UpsertSetting(key, value, description string) error {
	result := database.DB.Model(&models.SystemSetting{}).
		Where("setting_key = ?", key).
		Update("setting_value", value)
	if result.Error != nil {
		return fmt.Errorf("failed to update setting %s: %w", key, result.Error)
	}

	if result.RowsAffected == 0 {
		setting := models.SystemSetting{
			SettingKey:   key,
			SettingValue: value,
			Description:  description,
		}
		if err := database.DB.Create(&setting).Error; err != nil {
			return fmt.Errorf("failed to insert setting %s: %w", key, err)
		}
	}
	return nil
}

// UpdateSettings 批次更新設定。單筆失敗只記錄錯誤，不中斷其餘更新。
func UpdateSettings(updates map[string]string) ([]SettingUpdateResult, []SettingUpdateError) {
	results := make([]SettingUpdateResult, 0, len(updates))
	errs := make([]SettingUpdateError, 0)

	for key, value := range updates {
		if err := UpsertSetting(key, value, ""); err != nil {
			log.Printf("Failed to update setting %s: %v", key, err)
			errs = append(errs, SettingUpdateError{Key: key, Error: err.Error()})
			continue
		}
		results = append(results, SettingUpdateResult{Key: key, Value: value, Status: "updated"})
	}

	return results, errs
}

// SetHourlyRate 更新每小時費率，必須大於 0
func SetHourlyRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("hourly rate must be greater than 0")
	}
	return UpsertSetting("hourly_rate", fmt.Sprintf("%g", rate), "Parking fee per hour in local currency")
}

// EnsureDefaultSettings 確保預設設定存在，不覆蓋已被修改的值
func EnsureDefaultSettings() error {
	defaults := []models.SystemSetting{
		{SettingKey: "hourly_rate", SettingValue: "50", Description: "Parking fee per hour in local currency"},
		{SettingKey: "system_name", SettingValue: "Vehicle Parking Management System", Description: "Display name of the system"},
	}

	for _, setting := range defaults {
		var existing models.SystemSetting
		err := database.DB.Where("setting_key = ?", setting.SettingKey).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check setting %s: %w", setting.SettingKey, err)
		}
		if err := database.DB.Create(&setting).Error; err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", setting.SettingKey, err)
		}
		log.Printf("Seeded default setting %s=%s", setting.SettingKey, setting.SettingValue)
	}
	return nil
}

// SystemInfo 系統資訊
type SystemInfo struct {
	Name       string            `json:"name"`
	Version    string            `json:"version"`
	Database   map[string]int64  `json:"database"`
	Settings   map[string]string `json:"settings"`
	ServerTime string            `json:"server_time"`
}

// GetSystemInfo 查詢系統資訊與各表統計
func GetSystemInfo() (*SystemInfo, error) {
	counts := map[string]int64{}
	tables := map[string]interface{}{
		"total_slots":   &models.ParkingSlot{},
		"total_records": &models.ParkingRecord{},
		"total_users":   &models.User{},
		"total_admins":  &models.Admin{},
	}
	for name, model := range tables {
		var count int64
		if err := database.DB.Model(model).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", name, err)
		}
		counts[name] = count
	}

	var settings []models.SystemSetting
	if err := database.DB.Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	settingsMap := make(map[string]string, len(settings))
	for _, setting := range settings {
		settingsMap[setting.SettingKey] = setting.SettingValue
	}

	name := settingsMap["system_name"]
	if name == "" {
		name = "Vehicle Parking Management System"
	}

	return &SystemInfo{
		Name:       name,
		Version:    "1.0.0",
		Database:   counts,
		Settings:   settingsMap,
		ServerTime: time.Now().Format(time.RFC3339),
	}, nil
}

// BackupData 全量備份文件，帶 metadata 標頭
type BackupData struct {
	Metadata BackupMetadata         `json:"metadata"`
	Data     map[string]interface{} `json:"data"`
}

type BackupMetadata struct {
	GeneratedAt string   `json:"generated_at"`
	System      string   `json:"system"`
	Version     string   `json:"version"`
	Tables      []string `json:"tables"`
}

// CreateBackup 匯出五張表的全量資料。管理員不含密碼哈希。
func CreateBackup() (*BackupData, error) {
	var slots []models.ParkingSlot
	if err := database.DB.Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("failed to dump parking_slots: %w", err)
	}

	var records []models.ParkingRecord
	if err := database.DB.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to dump parking_records: %w", err)
	}

	var users []models.User
	if err := database.DB.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to dump users: %w", err)
	}

	var admins []models.Admin
	if err := database.DB.Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("failed to dump admins: %w", err)
	}
	adminResponses := make([]models.AdminResponse, len(admins))
	for i := range admins {
		adminResponses[i] = admins[i].ToResponse()
	}

	var settings []models.SystemSetting
	if err := database.DB.Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to dump system_settings: %w", err)
	}

	return &BackupData{
		Metadata: BackupMetadata{
			GeneratedAt: time.Now().Format(time.RFC3339),
			System:      "Vehicle Parking Management System",
			Version:     "1.0.0",
			Tables:      []string{"parking_slots", "parking_records", "users", "admins", "system_settings"},
		},
		Data: map[string]interface{}{
			"parking_slots":   slots,
			"parking_records": records,
			"users":           users,
			"admins":          adminResponses,
			"system_settings": settings,
		},
	}, nil
}
