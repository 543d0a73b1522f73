package models

import "time"

type ParkingSlot struct {
	ID         int       `json:"id" gorm:"primaryKey;autoIncrement;type:INT"`
	SlotNumber string    `json:"slot_number" gorm:"type:varchar(10);uniqueIndex;not null" binding:"required,max=10"`                               // 車位編號，例如 A-001
	SlotType   string    `json:"slot_type" gorm:"type:enum('Car', 'Bike', 'SUV', 'Truck', 'Handicapped');default:'Car'"`                           // 車位類型
	Status     string    `json:"status" gorm:"type:enum('Free', 'Occupied', 'Reserved', 'Maintenance');default:'Free'" binding:"omitempty,oneof=Free Occupied Reserved Maintenance"` // 車位狀態
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (ParkingSlot) TableName() string {
	return "parking_slots"
}

// ParkingSlotResponse 車位回應結構，附帶當前停放中的紀錄
type ParkingSlotResponse struct {
	ID             int                    `json:"id"`
	SlotNumber     string                 `json:"slot_number"`
	SlotType       string                 `json:"slot_type"`
	Status         string                 `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	CurrentVehicle *ParkingRecordResponse `json:"current_vehicle"` // 未被佔用時為 null
}

func (s *ParkingSlot) ToResponse(current *ParkingRecord) ParkingSlotResponse {
	resp := ParkingSlotResponse{
		ID:         s.ID,
		SlotNumber: s.SlotNumber,
		SlotType:   s.SlotType,
		Status:     s.Status,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if current != nil {
		r := current.ToResponse(s.SlotNumber)
		resp.CurrentVehicle = &r
	}
	return resp
}
