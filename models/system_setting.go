package models

import "time"

type SystemSetting struct {
	ID           int       `json:"id" gorm:"primaryKey;autoIncrement;type:INT"`
	SettingKey   string    `json:"setting_key" gorm:"type:varchar(50);uniqueIndex;not null"`
	SettingValue string    `json:"setting_value" gorm:"type:varchar(255)"`
	Description  string    `json:"description" gorm:"type:varchar(255)"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}
