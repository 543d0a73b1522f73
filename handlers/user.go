package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"parkms/models"
	"parkms/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// currentUserID 從 token 上下文取出用戶 ID
func currentUserID(c *gin.Context) (int, bool) {
	id, exists := c.Get("id")
	if !exists {
		ErrorResponse(c, http.StatusUnauthorized, "未授權",
			"id not found in token", "ERR_NO_ID")
		return 0, false
	}
	idInt, ok := id.(int)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "未授權",
			"invalid id type", "ERR_INVALID_ID")
		return 0, false
	}
	return idInt, true
}

// GetUserDashboard 用戶儀表板：當前停車狀態與費用試算
func GetUserDashboard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	dashboard, err := services.GetUserDashboard(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ErrorResponse(c, http.StatusNotFound, "用戶不存在",
				"User not found", "ERR_USER_NOT_FOUND")
			return
		}
		log.Printf("User dashboard error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", dashboard)
}

// GetUserHistory 用戶停車歷史（分頁）
func GetUserHistory(c *gin.Context) {
	vehicleRegistration := c.GetString("vehicle_registration")
	if vehicleRegistration == "" {
		ErrorResponse(c, http.StatusUnauthorized, "未授權",
			"vehicle_registration not found in token", "ERR_NO_REGISTRATION")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	records, total, err := services.GetUserHistory(vehicleRegistration, limit, offset)
	if err != nil {
		log.Printf("User history error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	responses := make([]models.ParkingRecordResponse, len(records))
	for i := range records {
		responses[i] = records[i].ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", gin.H{
		"history": responses,
		"pagination": gin.H{
			"total":    total,
			"limit":    limit,
			"offset":   offset,
			"has_more": int64(offset+len(records)) < total,
		},
	})
}

// GetExitDetails 離場前的繳費資訊：車輛、車位、即時時長與試算費用
func GetExitDetails(c *gin.Context) {
	vehicleRegistration := c.GetString("vehicle_registration")
	if vehicleRegistration == "" {
		ErrorResponse(c, http.StatusUnauthorized, "未授權",
			"vehicle_registration not found in token", "ERR_NO_REGISTRATION")
		return
	}

	details, err := services.GetExitDetails(vehicleRegistration)
	if err != nil {
		if errors.Is(err, services.ErrNoActiveRecord) {
			ErrorResponse(c, http.StatusNotFound, "車輛目前不在場內",
				"No active parking record found", "ERR_NO_ACTIVE_RECORD")
			return
		}
		log.Printf("Exit details error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", details)
}

// UpdateProfileInput 更新個人資料輸入
type UpdateProfileInput struct {
	OwnerName     string `json:"owner_name"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
	Password      string `json:"password" binding:"omitempty,min=6"`
}

// UpdateUserProfile 更新個人資料
func UpdateUserProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料",
			"Password must be at least 6 characters", "ERR_INVALID_INPUT")
		return
	}

	user, err := services.UpdateUserProfile(userID, input.OwnerName, input.ContactNumber,
		input.Email, input.Password)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ErrorResponse(c, http.StatusNotFound, "用戶不存在",
				"User not found", "ERR_USER_NOT_FOUND")
			return
		}
		if err.Error() == "no fields to update" {
			ErrorResponse(c, http.StatusBadRequest, "沒有可更新的欄位",
				"No fields to update", "ERR_NO_FIELDS")
			return
		}
		log.Printf("Update user profile error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "個人資料更新成功", user.ToResponse())
}

// EntryRequestInput 進場申請輸入
type EntryRequestInput struct {
	VehicleType string `json:"vehicle_type" binding:"omitempty,oneof=Car Bike SUV Truck"`
}

// SubmitEntryRequest 用戶端進場申請：檢查是否已在場內與剩餘車位，
// 不做任何資料異動，實際分配由管理端進場完成。
func SubmitEntryRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	// 請求主體可省略，預設車型為 Car
	var input EntryRequestInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料",
			err.Error(), "ERR_INVALID_INPUT")
		return
	}
	if input.VehicleType == "" {
		input.VehicleType = "Car"
	}

	user, err := services.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ErrorResponse(c, http.StatusNotFound, "用戶不存在",
				"User not found", "ERR_USER_NOT_FOUND")
			return
		}
		log.Printf("Entry request error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	existing, err := services.GetOpenRecordByRegistration(user.VehicleRegistration)
	if err != nil {
		log.Printf("Entry request error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}
	if existing != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "車輛已在場內",
			"error":   "Vehicle is already parked",
			"code":    "ERR_ALREADY_PARKED",
			"details": existing.ToResponse(),
		})
		return
	}

	available, err := services.CountFreeSlots()
	if err != nil {
		log.Printf("Entry request error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}
	if available == 0 {
		ErrorResponse(c, http.StatusBadRequest, "目前沒有空車位，請稍後再試",
			"No parking slots available", "ERR_NO_SLOT_AVAILABLE")
		return
	}

	ownerName := user.OwnerName
	if ownerName == "" {
		ownerName = "Not specified"
	}
	contactNumber := user.ContactNumber
	if contactNumber == "" {
		contactNumber = "Not specified"
	}

	SuccessResponse(c, http.StatusOK, "進場申請已送出，請至入口由管理員分配車位", gin.H{
		"request_details": gin.H{
			"vehicle_registration": user.VehicleRegistration,
			"owner_name":           ownerName,
			"contact_number":       contactNumber,
			"vehicle_type":         input.VehicleType,
			"available_slots":      available,
		},
	})
}
