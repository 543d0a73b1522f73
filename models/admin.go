package models

import "time"

type Admin struct {
	ID           int       `json:"id" gorm:"primaryKey;autoIncrement;type:INT"`
	Username     string    `json:"username" gorm:"type:varchar(50);uniqueIndex;not null" binding:"required,max=50"`
	PasswordHash string    `json:"-" gorm:"type:varchar(100);not null"`
	FullName     string    `json:"full_name" gorm:"type:varchar(100)"`
	Email        string    `json:"email" gorm:"type:varchar(100)"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Admin) TableName() string {
	return "admins"
}

// AdminResponse 管理員回應結構，不帶密碼哈希
type AdminResponse struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Admin) ToResponse() AdminResponse {
	return AdminResponse{
		ID:        a.ID,
		Username:  a.Username,
		FullName:  a.FullName,
		Email:     a.Email,
		Role:      "admin",
		CreatedAt: a.CreatedAt,
	}
}
