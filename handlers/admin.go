package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"parkms/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetAdminDashboard 管理端儀表板
func GetAdminDashboard(c *gin.Context) {
	dashboard, err := services.GetAdminDashboard()
	if err != nil {
		log.Printf("Admin dashboard error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", dashboard)
}

// UpdateSlotInput 更新車位輸入
type UpdateSlotInput struct {
	Status   string `json:"status" binding:"omitempty,oneof=Free Occupied Reserved Maintenance"`
	SlotType string `json:"slot_type" binding:"omitempty,oneof=Car Bike SUV Truck Handicapped"`
}

// UpdateSlot 更新車位狀態或類型
func UpdateSlot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的車位 ID",
			err.Error(), "ERR_INVALID_ID")
		return
	}

	var input UpdateSlotInput
	if err := c.ShouldBindJSON(&input); err != nil || (input.Status == "" && input.SlotType == "") {
		ErrorResponse(c, http.StatusBadRequest, "請提供車位狀態或類型",
			"Status or slot type is required", "ERR_INVALID_INPUT")
		return
	}

	slot, err := services.UpdateSlot(id, input.Status, input.SlotType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ErrorResponse(c, http.StatusNotFound, "車位不存在",
				"Slot not found", "ERR_SLOT_NOT_FOUND")
			return
		}
		if errors.Is(err, services.ErrSlotOccupied) {
			ErrorResponse(c, http.StatusBadRequest, "車位使用中，請先辦理離場",
				"Cannot change status of occupied slot. Process vehicle exit first.", "ERR_SLOT_OCCUPIED")
			return
		}
		log.Printf("Update slot error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "車位更新成功", slot)
}

// BulkCreateSlotsInput 批次建立車位輸入
type BulkCreateSlotsInput struct {
	Count       int    `json:"count" binding:"required,gt=0"`
	Prefix      string `json:"prefix"`
	StartNumber int    `json:"start_number"`
	SlotType    string `json:"slot_type" binding:"omitempty,oneof=Car Bike SUV Truck Handicapped"`
}

// BulkCreateSlots 批次建立車位，單筆失敗不中斷其餘建立
func BulkCreateSlots(c *gin.Context) {
	var input BulkCreateSlotsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "請提供有效的車位數量",
			"Valid count is required", "ERR_INVALID_INPUT")
		return
	}

	if input.Prefix == "" {
		input.Prefix = "A"
	}
	if input.StartNumber <= 0 {
		input.StartNumber = 1
	}
	if input.SlotType == "" {
		input.SlotType = "Car"
	}

	result, err := services.BulkCreateSlots(input.Count, input.Prefix, input.StartNumber, input.SlotType)
	if err != nil {
		log.Printf("Bulk create slots error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK,
		fmt.Sprintf("成功建立 %d 個車位", len(result.Created)), result)
}

// GetAdmins 查詢所有管理員
func GetAdmins(c *gin.Context) {
	admins, err := services.GetAllAdmins()
	if err != nil {
		log.Printf("Get admins error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	responses := make([]interface{}, len(admins))
	for i := range admins {
		responses[i] = admins[i].ToResponse()
	}
	SuccessResponse(c, http.StatusOK, "查詢成功", responses)
}

// ChangePasswordInput 修改密碼輸入
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// ChangeAdminPassword 修改當前管理員的密碼
func ChangeAdminPassword(c *gin.Context) {
	adminID, exists := c.Get("id")
	if !exists {
		ErrorResponse(c, http.StatusUnauthorized, "未授權",
			"id not found in token", "ERR_NO_ID")
		return
	}
	adminIDInt, ok := adminID.(int)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "未授權",
			"invalid id type", "ERR_INVALID_ID")
		return
	}

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "請提供當前密碼與至少六碼的新密碼",
			"Current and new password are required; new password must be at least 6 characters", "ERR_INVALID_INPUT")
		return
	}

	if err := services.ChangeAdminPassword(adminIDInt, input.CurrentPassword, input.NewPassword); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ErrorResponse(c, http.StatusNotFound, "管理員不存在",
				"Admin not found", "ERR_ADMIN_NOT_FOUND")
			return
		}
		if errors.Is(err, services.ErrInvalidCredentials) {
			ErrorResponse(c, http.StatusUnauthorized, "當前密碼錯誤",
				"Current password is incorrect", "ERR_INVALID_CREDENTIALS")
			return
		}
		log.Printf("Change admin password error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "密碼修改成功", nil)
}
