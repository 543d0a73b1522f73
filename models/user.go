package models

import "time"

type User struct {
	ID                  int       `json:"id" gorm:"primaryKey;autoIncrement;type:INT"`
	VehicleRegistration string    `json:"vehicle_registration" gorm:"type:varchar(20);uniqueIndex;not null" binding:"required,max=20"` // 以車牌作為登入識別
	OwnerName           string    `json:"owner_name" gorm:"type:varchar(100)"`
	ContactNumber       string    `json:"contact_number" gorm:"type:varchar(20)"`
	Email               string    `json:"email" gorm:"type:varchar(100)"`
	PasswordHash        string    `json:"-" gorm:"type:varchar(100)"`
	CreatedAt           time.Time `json:"created_at" gorm:"column:created_at"`
}

func (User) TableName() string {
	return "users"
}

type UserResponse struct {
	ID                  int    `json:"id"`
	VehicleRegistration string `json:"vehicle_registration"`
	OwnerName           string `json:"owner_name"`
	ContactNumber       string `json:"contact_number"`
	Email               string `json:"email"`
	Role                string `json:"role"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:                  u.ID,
		VehicleRegistration: u.VehicleRegistration,
		OwnerName:           u.OwnerName,
		ContactNumber:       u.ContactNumber,
		Email:               u.Email,
		Role:                "user",
	}
}
