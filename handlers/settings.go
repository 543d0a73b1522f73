package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"parkms/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetSettings 查詢所有系統設定
func GetSettings(c *gin.Context) {
	settings, err := services.GetAllSettings()
	if err != nil {
		log.Printf("Get settings error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", settings)
}

// UpdateSettings 批次更新設定，單筆失敗不影響其餘更新
func UpdateSettings(c *gin.Context) {
	var updates map[string]string
	if err := c.ShouldBindJSON(&updates); err != nil || len(updates) == 0 {
		ErrorResponse(c, http.StatusBadRequest, "請提供設定資料",
			"Settings data is required", "ERR_INVALID_INPUT")
		return
	}

	results, errs := services.UpdateSettings(updates)

	SuccessResponse(c, http.StatusOK, "設定更新完成", gin.H{
		"results": results,
		"errors":  errs,
	})
}

// GetSetting 依 key 查詢單筆設定
func GetSetting(c *gin.Context) {
	key := c.Param("key")

	setting, err := services.GetSetting(key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ErrorResponse(c, http.StatusNotFound, "設定不存在",
				"Setting not found", "ERR_SETTING_NOT_FOUND")
			return
		}
		log.Printf("Get setting error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", setting)
}

// HourlyRateInput 每小時費率輸入
type HourlyRateInput struct {
	HourlyRate float64 `json:"hourly_rate" binding:"required,gt=0"`
}

// UpdateHourlyRate 更新每小時費率，必須大於 0
func UpdateHourlyRate(c *gin.Context) {
	var input HourlyRateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "請提供有效的每小時費率",
			"Valid hourly rate is required", "ERR_INVALID_INPUT")
		return
	}

	if err := services.SetHourlyRate(input.HourlyRate); err != nil {
		log.Printf("Update hourly rate error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "每小時費率更新成功", gin.H{
		"hourly_rate": input.HourlyRate,
	})
}

// GetSystemInfo 查詢系統資訊與各表統計
func GetSystemInfo(c *gin.Context) {
	info, err := services.GetSystemInfo()
	if err != nil {
		log.Printf("Get system info error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", gin.H{
		"system_info": info,
	})
}

// DownloadBackup 下載五張表的全量 JSON 備份
func DownloadBackup(c *gin.Context) {
	backup, err := services.CreateBackup()
	if err != nil {
		log.Printf("Backup error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	filename := fmt.Sprintf("parking-backup-%s.json", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.JSON(http.StatusOK, backup)
}
