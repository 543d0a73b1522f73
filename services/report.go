package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"parkms/database"
	"parkms/models"

	"gorm.io/gorm"
)

// ErrInvalidPeriod 不支援的營收統計週期
var ErrInvalidPeriod = errors.New("invalid period: use daily, weekly, monthly, or custom")

// ErrMissingDateRange 自訂區間缺少起訖日期
var ErrMissingDateRange = errors.New("date_from and date_to are required for custom period")

// currentVehiclesSortColumns 在場車輛報表允許的排序欄位。
// 不在名單內的參數一律退回預設值，避免拼接注入。
var currentVehiclesSortColumns = map[string]bool{
	"entry_time":           true,
	"vehicle_registration": true,
	"slot_number":          true,
	"owner_name":           true,
}

// ValidateSortColumn 檢查排序欄位是否在允許名單內，否則退回預設值
func ValidateSortColumn(column string) string {
	if currentVehiclesSortColumns[column] {
		return column
	}
	return "entry_time"
}

// ValidateSortOrder 排序方向只允許 ASC / DESC，預設 DESC
func ValidateSortOrder(order string) string {
	if strings.ToUpper(order) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// CurrentVehiclesReport 在場車輛報表：支援關鍵字搜尋、車型過濾與排序
func CurrentVehiclesReport(search, vehicleType, sortBy, sortOrder string) ([]models.RecordWithSlot, error) {
	query := database.DB.Model(&models.ParkingRecord{}).
		Select("parking_records.*, parking_slots.slot_number").
		Joins("JOIN parking_slots ON parking_records.slot_id = parking_slots.id").
		Where("parking_records.exit_time IS NULL")

	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("parking_records.vehicle_registration LIKE ? OR parking_records.owner_name LIKE ?",
			pattern, pattern)
	}
	if vehicleType != "" {
		query = query.Where("parking_records.vehicle_type = ?", vehicleType)
	}

	orderClause := fmt.Sprintf("%s %s", ValidateSortColumn(sortBy), ValidateSortOrder(sortOrder))

	var records []models.RecordWithSlot
	if err := query.Order(orderClause).Find(&records).Error; err != nil {
		log.Printf("Failed to build current vehicles report: %v", err)
		return nil, fmt.Errorf("failed to build current vehicles report: %w", err)
	}

	return records, nil
}

// HistoryFilter 停車歷史報表的過濾條件
type HistoryFilter struct {
	VehicleRegistration string
	DateFrom            string
	DateTo              string
	VehicleType         string
	PaymentStatus       string
	ClosedOnly          bool // 只取已結束（exit_time 非 NULL）的紀錄
	Limit               int
	Offset              int
}

// ParkingHistoryReport 停車歷史報表，回傳紀錄與總筆數供分頁
func ParkingHistoryReport(filter HistoryFilter) ([]models.RecordWithSlot, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}

	// 條件套用兩次：一次算總數、一次取分頁資料
	applyFilters := func(query *gorm.DB) *gorm.DB {
		if filter.VehicleRegistration != "" {
			query = query.Where("parking_records.vehicle_registration LIKE ?", "%"+filter.VehicleRegistration+"%")
		}
		if filter.DateFrom != "" {
			query = query.Where("DATE(parking_records.entry_time) >= ?", filter.DateFrom)
		}
		if filter.DateTo != "" {
			query = query.Where("DATE(parking_records.entry_time) <= ?", filter.DateTo)
		}
		if filter.VehicleType != "" {
			query = query.Where("parking_records.vehicle_type = ?", filter.VehicleType)
		}
		if filter.PaymentStatus != "" {
			query = query.Where("parking_records.payment_status = ?", filter.PaymentStatus)
		}
		if filter.ClosedOnly {
			query = query.Where("parking_records.exit_time IS NOT NULL")
		}
		return query
	}

	var total int64
	countQuery := applyFilters(database.DB.Model(&models.ParkingRecord{}).
		Joins("JOIN parking_slots ON parking_records.slot_id = parking_slots.id"))
	if err := countQuery.Count(&total).Error; err != nil {
		log.Printf("Failed to count parking history: %v", err)
		return nil, 0, fmt.Errorf("failed to count parking history: %w", err)
	}

	var records []models.RecordWithSlot
	dataQuery := applyFilters(database.DB.Model(&models.ParkingRecord{}).
		Joins("JOIN parking_slots ON parking_records.slot_id = parking_slots.id"))
	if err := dataQuery.Select("parking_records.*, parking_slots.slot_number").
		Order("parking_records.entry_time DESC").
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&records).Error; err != nil {
		log.Printf("Failed to query parking history report: %v", err)
		return nil, 0, fmt.Errorf("failed to query parking history report: %w", err)
	}

	return records, total, nil
}

// RevenueRow 營收報表的分組列
type RevenueRow struct {
	Period       string  `json:"period" gorm:"column:period_label"`
	Transactions int64   `json:"transactions" gorm:"column:transactions"`
	TotalRevenue float64 `json:"total_revenue" gorm:"column:total_revenue"`
	AverageFee   float64 `json:"average_fee" gorm:"column:average_fee"`
}

// RevenueSummary 營收報表總計
type RevenueSummary struct {
	TotalRevenue          float64 `json:"total_revenue"`
	TotalTransactions     int64   `json:"total_transactions"`
	AveragePerTransaction float64 `json:"average_per_transaction"`
}

// RevenueReport 營收報表：依日/週/月或自訂區間分組加總已付款紀錄
func RevenueReport(period, dateFrom, dateTo string) ([]RevenueRow, *RevenueSummary, error) {
	const baseSelect = `COUNT(*) as transactions,
		SUM(fee_amount) as total_revenue,
		AVG(fee_amount) as average_fee`
	const baseWhere = `exit_time IS NOT NULL AND payment_status = 'Paid'`

	var rows []RevenueRow
	var err error

	switch period {
	case "daily":
		err = database.DB.Raw(fmt.Sprintf(`
			SELECT DATE_FORMAT(exit_time, '%%Y-%%m-%%d') as period_label, %s
			FROM parking_records WHERE %s
			GROUP BY period_label ORDER BY period_label DESC LIMIT 30`, baseSelect, baseWhere)).
			Scan(&rows).Error
	case "weekly":
		err = database.DB.Raw(fmt.Sprintf(`
			SELECT CAST(YEARWEEK(exit_time) AS CHAR) as period_label, %s
			FROM parking_records WHERE %s
			GROUP BY period_label ORDER BY period_label DESC LIMIT 12`, baseSelect, baseWhere)).
			Scan(&rows).Error
	case "monthly":
		err = database.DB.Raw(fmt.Sprintf(`
			SELECT DATE_FORMAT(exit_time, '%%Y-%%m') as period_label, %s
			FROM parking_records WHERE %s
			GROUP BY period_label ORDER BY period_label DESC LIMIT 12`, baseSelect, baseWhere)).
			Scan(&rows).Error
	case "custom":
		if dateFrom == "" || dateTo == "" {
			return nil, nil, ErrMissingDateRange
		}
		err = database.DB.Raw(fmt.Sprintf(`
			SELECT DATE_FORMAT(exit_time, '%%Y-%%m-%%d') as period_label, %s
			FROM parking_records WHERE %s AND DATE(exit_time) BETWEEN ? AND ?
			GROUP BY period_label ORDER BY period_label`, baseSelect, baseWhere),
			dateFrom, dateTo).
			Scan(&rows).Error
	default:
		return nil, nil, ErrInvalidPeriod
	}
	if err != nil {
		log.Printf("Failed to build revenue report (%s): %v", period, err)
		return nil, nil, fmt.Errorf("failed to build revenue report: %w", err)
	}

	summary := &RevenueSummary{}
	for _, row := range rows {
		summary.TotalRevenue += row.TotalRevenue
		summary.TotalTransactions += row.Transactions
	}
	if summary.TotalTransactions > 0 {
		summary.AveragePerTransaction = summary.TotalRevenue / float64(summary.TotalTransactions)
	}

	return rows, summary, nil
}

// SlotUtilizationRow 車位使用率報表的單列
type SlotUtilizationRow struct {
	SlotNumber           string  `json:"slot_number" gorm:"column:slot_number"`
	SlotType             string  `json:"slot_type" gorm:"column:slot_type"`
	CurrentStatus        string  `json:"current_status" gorm:"column:current_status"`
	TotalUsage           int64   `json:"total_usage" gorm:"column:total_usage"`
	TotalMinutesOccupied int64   `json:"total_minutes_occupied" gorm:"column:total_minutes_occupied"`
	AvgMinutesPerUse     float64 `json:"avg_minutes_per_use" gorm:"column:avg_minutes_per_use"`
}

// SlotStatusStats 車位狀態統計
type SlotStatusStats struct {
	TotalSlots       int64 `json:"total_slots" gorm:"column:total_slots"`
	OccupiedSlots    int64 `json:"occupied_slots" gorm:"column:occupied_slots"`
	FreeSlots        int64 `json:"free_slots" gorm:"column:free_slots"`
	ReservedSlots    int64 `json:"reserved_slots" gorm:"column:reserved_slots"`
	MaintenanceSlots int64 `json:"maintenance_slots" gorm:"column:maintenance_slots"`
}

// SlotUtilizationReport 車位使用率報表，支援進場日期區間過濾
func SlotUtilizationReport(dateFrom, dateTo string) ([]SlotUtilizationRow, *SlotStatusStats, error) {
	var from, to interface{}
	if dateFrom != "" {
		from = dateFrom
	}
	if dateTo != "" {
		to = dateTo
	}

	var rows []SlotUtilizationRow
	if err := database.DB.Raw(`
		SELECT
			ps.slot_number,
			ps.slot_type,
			ps.status as current_status,
			COUNT(pr.id) as total_usage,
			COALESCE(SUM(pr.parking_duration_minutes), 0) as total_minutes_occupied,
			COALESCE(AVG(pr.parking_duration_minutes), 0) as avg_minutes_per_use
		FROM parking_slots ps
		LEFT JOIN parking_records pr ON ps.id = pr.slot_id
		WHERE (? IS NULL OR DATE(pr.entry_time) >= ?)
		  AND (? IS NULL OR DATE(pr.entry_time) <= ?)
		GROUP BY ps.id, ps.slot_number, ps.slot_type, ps.status
		ORDER BY ps.slot_number`, from, from, to, to).
		Scan(&rows).Error; err != nil {
		log.Printf("Failed to build slot utilization report: %v", err)
		return nil, nil, fmt.Errorf("failed to build slot utilization report: %w", err)
	}

	var stats SlotStatusStats
	if err := database.DB.Raw(`
		SELECT
			COUNT(*) as total_slots,
			SUM(CASE WHEN status = 'Occupied' THEN 1 ELSE 0 END) as occupied_slots,
			SUM(CASE WHEN status = 'Free' THEN 1 ELSE 0 END) as free_slots,
			SUM(CASE WHEN status = 'Reserved' THEN 1 ELSE 0 END) as reserved_slots,
			SUM(CASE WHEN status = 'Maintenance' THEN 1 ELSE 0 END) as maintenance_slots
		FROM parking_slots`).
		Scan(&stats).Error; err != nil {
		log.Printf("Failed to build slot status stats: %v", err)
		return nil, nil, fmt.Errorf("failed to build slot status stats: %w", err)
	}

	return rows, &stats, nil
}

// RenderRecordsCSV 將停車紀錄渲染為 CSV：字串欄位加引號，引號內的引號加倍
func RenderRecordsCSV(records []models.RecordWithSlot) string {
	var builder strings.Builder
	builder.WriteString("id,vehicle_registration,slot_number,owner_name,contact_number,vehicle_type,entry_time,exit_time,parking_duration_minutes,fee_amount,payment_status\n")

	for _, record := range records {
		exitTime := ""
		if record.ExitTime != nil {
			exitTime = record.ExitTime.Format("2006-01-02 15:04:05")
		}
		duration := ""
		if record.DurationMinutes != nil {
			duration = strconv.Itoa(*record.DurationMinutes)
		}
		fee := ""
		if record.FeeAmount != nil {
			fee = strconv.FormatFloat(*record.FeeAmount, 'f', 2, 64)
		}

		fields := []string{
			strconv.Itoa(record.ID),
			quoteCSVField(record.VehicleRegistration),
			quoteCSVField(record.SlotNumber),
			quoteCSVField(record.OwnerName),
			quoteCSVField(record.ContactNumber),
			quoteCSVField(record.VehicleType),
			quoteCSVField(record.EntryTime.Format("2006-01-02 15:04:05")),
			quoteCSVField(exitTime),
			duration,
			fee,
			quoteCSVField(record.PaymentStatus),
		}
		builder.WriteString(strings.Join(fields, ","))
		builder.WriteByte('\n')
	}

	return builder.String()
}

// RenderRevenueCSV 將營收報表渲染為 CSV
func RenderRevenueCSV(rows []RevenueRow) string {
	var builder strings.Builder
	builder.WriteString("period,transactions,total_revenue,average_fee\n")

	for _, row := range rows {
		fields := []string{
			quoteCSVField(row.Period),
			strconv.FormatInt(row.Transactions, 10),
			strconv.FormatFloat(row.TotalRevenue, 'f', 2, 64),
			strconv.FormatFloat(row.AverageFee, 'f', 2, 64),
		}
		builder.WriteString(strings.Join(fields, ","))
		builder.WriteByte('\n')
	}

	return builder.String()
}

func quoteCSVField(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
