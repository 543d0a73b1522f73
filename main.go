package main

import (
	"log"
	"os"

	"parkms/database"
	"parkms/models"
	"parkms/routes"
	"parkms/services"
	"parkms/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// 載入 .env 檔案
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using default environment variables: %v", err)
	}

	// 初始化 JWTSecret
	utils.InitJWTSecret()

	// 初始化資料庫
	database.InitDB()

	// 執行資料庫遷移
	if err := database.DB.AutoMigrate(
		&models.ParkingSlot{},
		&models.ParkingRecord{},
		&models.User{},
		&models.Admin{},
		&models.SystemSetting{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	// 確保預設管理員存在
	ensureAdminExists()

	// 確保預設系統設定存在
	if err := services.EnsureDefaultSettings(); err != nil {
		log.Fatalf("Failed to seed default settings: %v", err)
	}

	// 設置 Gin 模式
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "" {
		ginMode = gin.ReleaseMode
	}
	gin.SetMode(ginMode)
	log.Printf("Gin mode set to %s", ginMode)

	// 初始化 Gin 路由器
	r := gin.Default()

	// 創建一個 API 路由組
	api := r.Group("/api")
	{
		routes.Path(api)
	}

	// 啟動定時任務
	c := cron.New()

	// 車位狀態一致性檢查（每 10 分鐘執行一次）
	if _, err := c.AddFunc("*/10 * * * *", func() {
		log.Println("Reconciling slot status...")
		if err := services.ReconcileSlotStatus(); err != nil {
			log.Printf("Failed to reconcile slot status: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule slot reconciliation job: %v", err)
	}

	// 超時停車掃描（每小時執行一次）
	if _, err := c.AddFunc("0 * * * *", func() {
		log.Println("Scanning for overstayed vehicles...")
		if err := services.CheckOverstayedVehicles(); err != nil {
			log.Printf("Failed to scan for overstayed vehicles: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule overstay scan job: %v", err)
	}

	c.Start()
	log.Println("Cron jobs started")

	// 啟動伺服器
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// ensureAdminExists 檢查並建立預設管理員帳號
func ensureAdminExists() {
	var count int64
	if err := database.DB.Model(&models.Admin{}).Count(&count).Error; err != nil {
		log.Fatalf("Failed to count admins: %v", err)
	}
	if count > 0 {
		return
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Println("ADMIN_PASSWORD not set, skipping default admin creation")
		return
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin := models.Admin{
		Username:     username,
		PasswordHash: hashedPassword,
		FullName:     "System Administrator",
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create default admin: %v", err)
	}

	log.Printf("Default admin created: username=%s", admin.Username)
}
