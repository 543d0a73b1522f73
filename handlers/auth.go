package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"parkms/models"
	"parkms/services"
	"parkms/utils"

	"github.com/gin-gonic/gin"
)

// AdminLoginInput 管理員登入輸入
type AdminLoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin 管理員登入並簽發 token
func AdminLogin(c *gin.Context) {
	var input AdminLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid admin login input: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "請提供帳號與密碼",
			"Username and password are required", "ERR_INVALID_INPUT")
		return
	}

	admin, err := services.AdminLogin(input.Username, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			ErrorResponse(c, http.StatusUnauthorized, "帳號或密碼錯誤",
				"Invalid credentials", "ERR_INVALID_CREDENTIALS")
			return
		}
		log.Printf("Admin login error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	token, err := utils.GenerateAdminToken(admin.ID, admin.Username)
	if err != nil {
		log.Printf("Failed to generate admin token: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "登入成功", gin.H{
		"token": token,
		"user":  admin.ToResponse(),
	})
}

// UserRegisterInput 用戶註冊輸入。註冊必須設定密碼，不提供免密碼通道。
type UserRegisterInput struct {
	VehicleRegistration string `json:"vehicle_registration" binding:"required,max=20"`
	Password            string `json:"password" binding:"required,min=6"`
	OwnerName           string `json:"owner_name"`
	ContactNumber       string `json:"contact_number"`
	Email               string `json:"email"`
}

// UserRegister 註冊一般用戶並簽發 token
func UserRegister(c *gin.Context) {
	var input UserRegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid user register input: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "請提供車牌號碼與至少六碼的密碼",
			"Vehicle registration and a password of at least 6 characters are required", "ERR_INVALID_INPUT")
		return
	}

	user := models.User{
		VehicleRegistration: input.VehicleRegistration,
		OwnerName:           input.OwnerName,
		ContactNumber:       input.ContactNumber,
		Email:               input.Email,
	}
	if err := services.RegisterUser(&user, input.Password); err != nil {
		if errors.Is(err, services.ErrRegistrationExists) {
			ErrorResponse(c, http.StatusBadRequest, "此車牌已註冊",
				"Vehicle registration is already registered", "ERR_DUPLICATE_REGISTRATION")
			return
		}
		log.Printf("User register error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	token, err := utils.GenerateUserToken(user.ID, user.VehicleRegistration)
	if err != nil {
		log.Printf("Failed to generate user token: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "註冊成功", gin.H{
		"token": token,
		"user":  user.ToResponse(),
	})
}

// UserLoginInput 用戶登入輸入
type UserLoginInput struct {
	VehicleRegistration string `json:"vehicle_registration" binding:"required"`
	Password            string `json:"password" binding:"required"`
}

// UserLogin 一般用戶登入並簽發 token
func UserLogin(c *gin.Context) {
	var input UserLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid user login input: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "請提供車牌號碼與密碼",
			"Vehicle registration and password are required", "ERR_INVALID_INPUT")
		return
	}

	user, err := services.UserLogin(input.VehicleRegistration, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			ErrorResponse(c, http.StatusUnauthorized, "車牌號碼或密碼錯誤",
				"Invalid credentials", "ERR_INVALID_CREDENTIALS")
			return
		}
		log.Printf("User login error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	token, err := utils.GenerateUserToken(user.ID, user.VehicleRegistration)
	if err != nil {
		log.Printf("Failed to generate user token: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "登入成功", gin.H{
		"token": token,
		"user":  user.ToResponse(),
	})
}

// VerifyToken 驗證 token 並回傳 claims
func VerifyToken(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		ErrorResponse(c, http.StatusUnauthorized, "缺少 token",
			"No token provided", "ERR_NO_AUTH_HEADER")
		return
	}

	claims, err := utils.ParseToken(parts[1])
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "無效的 token",
			"Invalid token", "ERR_INVALID_TOKEN")
		return
	}

	SuccessResponse(c, http.StatusOK, "token 有效", gin.H{
		"valid": true,
		"user":  claims,
	})
}
