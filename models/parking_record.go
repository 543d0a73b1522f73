package models

import "time"

type ParkingRecord struct {
	ID                  int         `json:"id" gorm:"primaryKey;autoIncrement;type:INT"`
	VehicleRegistration string      `json:"vehicle_registration" gorm:"type:varchar(20);index;not null" binding:"required,max=20"` // 車牌號碼，跨時間不唯一
	SlotID              int         `json:"slot_id" gorm:"index;not null;type:INT"`                                                // 佔用的車位ID
	OwnerName           string      `json:"owner_name" gorm:"type:varchar(100)"`                                                   // 進場當下的車主姓名快照
	ContactNumber       string      `json:"contact_number" gorm:"type:varchar(20)"`
	VehicleType         string      `json:"vehicle_type" gorm:"type:enum('Car', 'Bike', 'SUV', 'Truck');default:'Car'"`
	EntryTime           time.Time   `json:"entry_time" gorm:"type:datetime;not null"`
	ExitTime            *time.Time  `json:"exit_time" gorm:"type:datetime;default:null"`                    // 離場前為 null
	DurationMinutes     *int        `json:"parking_duration_minutes" gorm:"column:parking_duration_minutes"` // 離場時一次寫入
	FeeAmount           *float64    `json:"fee_amount" gorm:"type:decimal(10,2);default:null"`
	PaymentStatus       string      `json:"payment_status" gorm:"type:enum('Unpaid', 'Paid');default:'Unpaid'"`
	CreatedAt           time.Time   `json:"created_at" gorm:"column:created_at"`
	Slot                ParkingSlot `json:"-" gorm:"foreignKey:SlotID;references:ID"`
}

func (ParkingRecord) TableName() string {
	return "parking_records"
}

type ParkingRecordResponse struct {
	ID                  int        `json:"id"`
	VehicleRegistration string     `json:"vehicle_registration"`
	SlotID              int        `json:"slot_id"`
	SlotNumber          string     `json:"slot_number"`
	OwnerName           string     `json:"owner_name"`
	ContactNumber       string     `json:"contact_number"`
	VehicleType         string     `json:"vehicle_type"`
	EntryTime           time.Time  `json:"entry_time"`
	ExitTime            *time.Time `json:"exit_time"`
	DurationMinutes     *int       `json:"parking_duration_minutes"`
	FeeAmount           *float64   `json:"fee_amount"`
	PaymentStatus       string     `json:"payment_status"`
	CreatedAt           time.Time  `json:"created_at"`
}

func (r *ParkingRecord) ToResponse(slotNumber string) ParkingRecordResponse {
	return ParkingRecordResponse{
		ID:                  r.ID,
		VehicleRegistration: r.VehicleRegistration,
		SlotID:              r.SlotID,
		SlotNumber:          slotNumber,
		OwnerName:           r.OwnerName,
		ContactNumber:       r.ContactNumber,
		VehicleType:         r.VehicleType,
		EntryTime:           r.EntryTime,
		ExitTime:            r.ExitTime,
		DurationMinutes:     r.DurationMinutes,
		FeeAmount:           r.FeeAmount,
		PaymentStatus:       r.PaymentStatus,
		CreatedAt:           r.CreatedAt,
	}
}

// RecordWithSlot 查詢用：parking_records JOIN parking_slots 的掃描結果
type RecordWithSlot struct {
	ParkingRecord
	SlotNumber string `json:"slot_number" gorm:"column:slot_number"`
}

func (r *RecordWithSlot) ToResponse() ParkingRecordResponse {
	return r.ParkingRecord.ToResponse(r.SlotNumber)
}
