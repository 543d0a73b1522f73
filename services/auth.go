package services

import (
	"errors"
	"fmt"
	"log"

	"parkms/database"
	"parkms/models"
	"parkms/utils"

	"gorm.io/gorm"
)

// ErrInvalidCredentials 帳號或密碼錯誤
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrRegistrationExists 車牌已註冊過
var ErrRegistrationExists = errors.New("vehicle registration is already registered")

// AdminLogin 管理員登入
func AdminLogin(username, password string) (*models.Admin, error) {
	var admin models.Admin
	if err := database.DB.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Admin %s not found", username)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to query admin %s: %w", username, err)
	}

	if !utils.CheckPasswordHash(password, admin.PasswordHash) {
		log.Printf("Invalid password for admin %s", username)
		return nil, ErrInvalidCredentials
	}

	log.Printf("Admin %s logged in successfully", username)
	return &admin, nil
}

// RegisterUser 註冊一般用戶。以車牌作為識別，必須設定密碼，
// 不提供免密碼的首次登入。
func RegisterUser(user *models.User, password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	var existing models.User
	if err := database.DB.Where("vehicle_registration = ?", user.VehicleRegistration).
		First(&existing).Error; err == nil {
		return ErrRegistrationExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for duplicate registration: %w", err)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hashedPassword

	if user.OwnerName == "" {
		user.OwnerName = "Guest User"
	}

	if err := database.DB.Create(user).Error; err != nil {
		log.Printf("Failed to register user %s: %v", user.VehicleRegistration, err)
		return fmt.Errorf("failed to register user: %w", err)
	}

	log.Printf("Successfully registered user %s (ID %d)", user.VehicleRegistration, user.ID)
	return nil
}

// UserLogin 一般用戶登入
func UserLogin(vehicleRegistration, password string) (*models.User, error) {
	var user models.User
	if err := database.DB.Where("vehicle_registration = ?", vehicleRegistration).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("User with registration %s not found", vehicleRegistration)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to query user %s: %w", vehicleRegistration, err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		log.Printf("Invalid password for user %s", vehicleRegistration)
		return nil, ErrInvalidCredentials
	}

	log.Printf("User %s logged in successfully", vehicleRegistration)
	return &user, nil
}

// GetUserByID 查詢用戶，不存在時回傳 gorm.ErrRecordNotFound
func GetUserByID(id int) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserProfile 更新用戶資料，僅允許姓名、電話、信箱與密碼
func UpdateUserProfile(id int, ownerName, contactNumber, email, password string) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if ownerName != "" {
		updates["owner_name"] = ownerName
	}
	if contactNumber != "" {
		updates["contact_number"] = contactNumber
	}
	if email != "" {
		updates["email"] = email
	}
	if password != "" {
		if len(password) < 6 {
			return nil, fmt.Errorf("password must be at least 6 characters")
		}
		hashedPassword, err := utils.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updates["password_hash"] = hashedPassword
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to update user %d: %v", id, err)
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}

	log.Printf("Successfully updated profile for user %d", id)
	return &user, nil
}

// GetAllAdmins 查詢所有管理員
func GetAllAdmins() ([]models.Admin, error) {
	var admins []models.Admin
	if err := database.DB.Find(&admins).Error; err != nil {
		log.Printf("Failed to query admins: %v", err)
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	return admins, nil
}

// ChangeAdminPassword 修改管理員密碼，需驗證當前密碼
func ChangeAdminPassword(adminID int, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("new password must be at least 6 characters")
	}

	var admin models.Admin
	if err := database.DB.First(&admin, adminID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gorm.ErrRecordNotFound
		}
		return fmt.Errorf("failed to find admin %d: %w", adminID, err)
	}

	if !utils.CheckPasswordHash(currentPassword, admin.PasswordHash) {
		return ErrInvalidCredentials
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := database.DB.Model(&admin).Update("password_hash", hashedPassword).Error; err != nil {
		log.Printf("Failed to change password for admin %d: %v", adminID, err)
		return fmt.Errorf("failed to change password for admin %d: %w", adminID, err)
	}

	log.Printf("Successfully changed password for admin %d", adminID)
	return nil
}
