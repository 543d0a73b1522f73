// handlers/parking.go
package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"parkms/models"
	"parkms/services"

	"github.com/gin-gonic/gin"
)

// GetSlots 查詢所有車位，附帶當前停放中的車輛
func GetSlots(c *gin.Context) {
	slots, err := services.GetAllSlots()
	if err != nil {
		log.Printf("Get slots error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", slots)
}

// EntryInput 車輛進場輸入
type EntryInput struct {
	VehicleRegistration string `json:"vehicle_registration" binding:"required,max=20"`
	OwnerName           string `json:"owner_name"`
	ContactNumber       string `json:"contact_number"`
	VehicleType         string `json:"vehicle_type" binding:"omitempty,oneof=Car Bike SUV Truck"`
}

// VehicleEntry 車輛進場：分配車位並建立停車紀錄
func VehicleEntry(c *gin.Context) {
	var input EntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid entry input: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "請提供車牌號碼",
			"Vehicle registration number is required", "ERR_INVALID_INPUT")
		return
	}

	result, err := services.VehicleEntry(input.VehicleRegistration, input.OwnerName,
		input.ContactNumber, input.VehicleType)
	if err != nil {
		if errors.Is(err, services.ErrVehicleAlreadyParked) {
			// 附上現有紀錄方便前端顯示
			existing, lookupErr := services.GetOpenRecordByRegistration(input.VehicleRegistration)
			details := interface{}(nil)
			if lookupErr == nil && existing != nil {
				details = existing.ToResponse()
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  false,
				"message": "車輛已在場內",
				"error":   "Vehicle is already parked",
				"code":    "ERR_ALREADY_PARKED",
				"details": details,
			})
			return
		}
		if errors.Is(err, services.ErrNoSlotAvailable) {
			ErrorResponse(c, http.StatusBadRequest, "目前沒有空車位",
				"No parking slots available", "ERR_NO_SLOT_AVAILABLE")
			return
		}
		log.Printf("Vehicle entry error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "車輛進場登記成功", gin.H{
		"record":        result.Record.ToResponse(result.SlotAssigned),
		"slot_assigned": result.SlotAssigned,
	})
}

// ExitInput 車輛離場輸入，車牌與車位編號至少擇一，車牌優先
type ExitInput struct {
	VehicleRegistration string `json:"vehicle_registration"`
	SlotNumber          string `json:"slot_number"`
}

// VehicleExit 車輛離場：計算費用、結束紀錄並釋放車位
func VehicleExit(c *gin.Context) {
	var input ExitInput
	if err := c.ShouldBindJSON(&input); err != nil || (input.VehicleRegistration == "" && input.SlotNumber == "") {
		ErrorResponse(c, http.StatusBadRequest, "請提供車牌號碼或車位編號",
			"Vehicle registration or slot number is required", "ERR_INVALID_INPUT")
		return
	}

	result, err := services.VehicleExit(input.VehicleRegistration, input.SlotNumber)
	if err != nil {
		if errors.Is(err, services.ErrNoActiveRecord) {
			ErrorResponse(c, http.StatusNotFound, "查無未結束的停車紀錄",
				"No active parking record found", "ERR_NO_ACTIVE_RECORD")
			return
		}
		log.Printf("Vehicle exit error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "車輛離場處理成功", gin.H{
		"record":           result.Record.ToResponse(result.SlotFreed),
		"duration_minutes": result.DurationMinutes,
		"fee_amount":       result.FeeAmount,
		"slot_freed":       result.SlotFreed,
	})
}

// GetCurrentVehicles 查詢目前在場車輛
func GetCurrentVehicles(c *gin.Context) {
	records, err := services.GetCurrentVehicles()
	if err != nil {
		log.Printf("Get current vehicles error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	responses := make([]models.ParkingRecordResponse, len(records))
	for i := range records {
		responses[i] = records[i].ToResponse()
	}
	SuccessResponse(c, http.StatusOK, "查詢成功", responses)
}

// GetParkingHistory 查詢停車歷史
func GetParkingHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	records, err := services.GetParkingHistory(
		c.Query("vehicle_registration"),
		c.Query("date_from"),
		c.Query("date_to"),
		limit,
	)
	if err != nil {
		log.Printf("Get parking history error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	responses := make([]models.ParkingRecordResponse, len(records))
	for i := range records {
		responses[i] = records[i].ToResponse()
	}
	SuccessResponse(c, http.StatusOK, "查詢成功", responses)
}
