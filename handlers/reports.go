package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"parkms/models"
	"parkms/services"

	"github.com/gin-gonic/gin"
)

// CurrentVehiclesReport 在場車輛報表
func CurrentVehiclesReport(c *gin.Context) {
	records, err := services.CurrentVehiclesReport(
		c.Query("search"),
		c.Query("vehicle_type"),
		c.DefaultQuery("sort_by", "entry_time"),
		c.DefaultQuery("sort_order", "DESC"),
	)
	if err != nil {
		log.Printf("Current vehicles report error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	responses := make([]models.ParkingRecordResponse, len(records))
	for i := range records {
		responses[i] = records[i].ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", gin.H{
		"count":    len(responses),
		"vehicles": responses,
	})
}

// ParkingHistoryReport 停車歷史報表（過濾 + 分頁）
func ParkingHistoryReport(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := services.HistoryFilter{
		VehicleRegistration: c.Query("vehicle_registration"),
		DateFrom:            c.Query("date_from"),
		DateTo:              c.Query("date_to"),
		VehicleType:         c.Query("vehicle_type"),
		PaymentStatus:       c.Query("payment_status"),
		Limit:               limit,
		Offset:              offset,
	}

	records, total, err := services.ParkingHistoryReport(filter)
	if err != nil {
		log.Printf("Parking history report error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	responses := make([]models.ParkingRecordResponse, len(records))
	for i := range records {
		responses[i] = records[i].ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", gin.H{
		"records": responses,
		"pagination": gin.H{
			"total":    total,
			"limit":    limit,
			"offset":   offset,
			"has_more": int64(offset+len(records)) < total,
		},
	})
}

// RevenueReport 營收報表
func RevenueReport(c *gin.Context) {
	period := c.DefaultQuery("period", "daily")
	dateFrom := c.Query("date_from")
	dateTo := c.Query("date_to")

	rows, summary, err := services.RevenueReport(period, dateFrom, dateTo)
	if err != nil {
		if errors.Is(err, services.ErrMissingDateRange) {
			ErrorResponse(c, http.StatusBadRequest, "自訂區間需要提供起訖日期",
				"date_from and date_to are required for custom period", "ERR_INVALID_INPUT")
			return
		}
		if errors.Is(err, services.ErrInvalidPeriod) {
			ErrorResponse(c, http.StatusBadRequest, "無效的統計週期",
				"Invalid period. Use daily, weekly, monthly, or custom", "ERR_INVALID_PERIOD")
			return
		}
		log.Printf("Revenue report error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", gin.H{
		"period": period,
		"date_range": gin.H{
			"from": dateFrom,
			"to":   dateTo,
		},
		"summary": summary,
		"data":    rows,
	})
}

// SlotUtilizationReport 車位使用率報表
func SlotUtilizationReport(c *gin.Context) {
	dateFrom := c.Query("date_from")
	dateTo := c.Query("date_to")

	rows, stats, err := services.SlotUtilizationReport(dateFrom, dateTo)
	if err != nil {
		log.Printf("Slot utilization report error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", gin.H{
		"date_range": gin.H{
			"from": dateFrom,
			"to":   dateTo,
		},
		"overall":          stats,
		"slot_utilization": rows,
	})
}

// ExportReport 匯出報表，支援 JSON 與簡化版 CSV
func ExportReport(c *gin.Context) {
	reportType := c.Query("report_type")
	format := c.DefaultQuery("format", "json")

	var records []models.RecordWithSlot
	var revenueRows []services.RevenueRow
	var err error

	switch reportType {
	case "current-vehicles":
		records, err = services.CurrentVehiclesReport("", "", "entry_time", "DESC")
	case "parking-history":
		// 匯出只包含已結束的紀錄
		records, _, err = services.ParkingHistoryReport(services.HistoryFilter{ClosedOnly: true, Limit: 1000})
	case "revenue":
		revenueRows, _, err = services.RevenueReport("daily", "", "")
	default:
		ErrorResponse(c, http.StatusBadRequest, "無效的報表類型",
			"Invalid report type", "ERR_INVALID_REPORT_TYPE")
		return
	}
	if err != nil {
		log.Printf("Export report error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤",
			"Server error", "ERR_INTERNAL")
		return
	}

	if format == "csv" {
		var csv string
		if reportType == "revenue" {
			if len(revenueRows) == 0 {
				ErrorResponse(c, http.StatusBadRequest, "沒有可匯出的資料",
					"No data to export", "ERR_NO_DATA")
				return
			}
			csv = services.RenderRevenueCSV(revenueRows)
		} else {
			if len(records) == 0 {
				ErrorResponse(c, http.StatusBadRequest, "沒有可匯出的資料",
					"No data to export", "ERR_NO_DATA")
				return
			}
			csv = services.RenderRecordsCSV(records)
		}

		filename := fmt.Sprintf("%s-%s.csv", reportType, time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Data(http.StatusOK, "text/csv", []byte(csv))
		return
	}

	var data interface{}
	var count int
	if reportType == "revenue" {
		data = revenueRows
		count = len(revenueRows)
	} else {
		responses := make([]models.ParkingRecordResponse, len(records))
		for i := range records {
			responses[i] = records[i].ToResponse()
		}
		data = responses
		count = len(responses)
	}

	c.JSON(http.StatusOK, gin.H{
		"report_type":  reportType,
		"format":       format,
		"generated_at": time.Now().Format(time.RFC3339),
		"record_count": count,
		"data":         data,
	})
}
