package routes

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"parkms/handlers"
	"parkms/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware 驗證 JWT token，並提取 id、role 與車牌（一般用戶）
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "缺少 Authorization 標頭",
				"error":   "Authorization header is required",
				"code":    "ERR_NO_AUTH_HEADER",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的 Authorization 格式",
				"error":   "Authorization header must be in the format 'Bearer <token>'",
				"code":    "ERR_INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			log.Printf("Token parsing error: %v", err)
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"status":  false,
					"message": "token 已過期",
					"error":   "Token has expired",
					"code":    "ERR_TOKEN_EXPIRED",
				})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{
					"status":  false,
					"message": "無效的 token",
					"error":   err.Error(),
					"code":    "ERR_INVALID_TOKEN",
				})
			}
			c.Abort()
			return
		}

		// 確認 id 字段
		id, ok := claims["id"].(float64)
		if !ok {
			log.Printf("Missing or invalid id in token")
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的 token 內容",
				"error":   "Invalid id in token",
				"code":    "ERR_INVALID_CLAIMS",
			})
			c.Abort()
			return
		}

		// 確認 role 字段
		role, ok := claims["role"].(string)
		if !ok || (role != "admin" && role != "user") {
			log.Printf("Missing or invalid role in token: %v", role)
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的角色",
				"error":   "Invalid role in token",
				"code":    "ERR_INVALID_ROLE",
			})
			c.Abort()
			return
		}

		log.Printf("Token verified for id: %d, role: %s, exp=%v, current_time=%v",
			int(id), role, claims["exp"], time.Now().Unix())
		c.Set("id", int(id))
		c.Set("role", role)

		// 一般用戶 token 另帶車牌
		if registration, ok := claims["vehicle_registration"].(string); ok {
			c.Set("vehicle_registration", registration)
		}

		c.Next()
	}
}

// RoleMiddleware 檢查角色是否符合要求，角色不符回傳固定的 access required 拒絕
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無法獲取角色資訊",
				"error":   "Role not found in context",
				"code":    "ERR_ROLE_NOT_FOUND",
			})
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的角色類型",
				"error":   "Invalid role type",
				"code":    "ERR_INVALID_ROLE_TYPE",
			})
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if roleStr == allowedRole {
				c.Next()
				return
			}
		}

		required := allowedRoles[0]
		required = strings.ToUpper(required[:1]) + required[1:]
		c.JSON(http.StatusForbidden, gin.H{
			"status":  false,
			"message": "權限不足",
			"error":   required + " access required",
			"code":    "ERR_INSUFFICIENT_PERMISSIONS",
		})
		c.Abort()
	}
}

func Path(router *gin.RouterGroup) {
	// 測試路由
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// 認證路由：不需要 token 驗證
	auth := router.Group("/auth")
	{
		auth.POST("/admin/login", handlers.AdminLogin)
		auth.POST("/user/register", handlers.UserRegister) // 註冊用戶並設定密碼
		auth.POST("/user/login", handlers.UserLogin)
		auth.POST("/verify", handlers.VerifyToken)
	}

	// 停車路由
	parking := router.Group("/parking")
	parking.Use(AuthMiddleware())
	{
		// 進出場僅管理員可以操作
		parking.POST("/entry", RoleMiddleware("admin"), handlers.VehicleEntry)
		parking.POST("/exit", RoleMiddleware("admin"), handlers.VehicleExit)
		// 查詢路由：任何已認證的角色都可以訪問
		parking.GET("/slots", handlers.GetSlots)
		parking.GET("/current", handlers.GetCurrentVehicles)
		parking.GET("/history", handlers.GetParkingHistory)
	}

	// 管理員路由
	admin := router.Group("/admin")
	admin.Use(AuthMiddleware(), RoleMiddleware("admin"))
	{
		admin.GET("/dashboard", handlers.GetAdminDashboard)
		admin.GET("/slots", handlers.GetSlots)
		admin.PUT("/slots/:id", handlers.UpdateSlot)
		admin.POST("/slots/bulk", handlers.BulkCreateSlots)
		admin.GET("/admins", handlers.GetAdmins)
		admin.PUT("/change-password", handlers.ChangeAdminPassword)
	}

	// 一般用戶路由
	user := router.Group("/user")
	user.Use(AuthMiddleware(), RoleMiddleware("user"))
	{
		user.GET("/dashboard", handlers.GetUserDashboard)
		user.GET("/history", handlers.GetUserHistory)
		user.GET("/exit-details", handlers.GetExitDetails)
		user.PUT("/profile", handlers.UpdateUserProfile)
		user.POST("/entry-request", handlers.SubmitEntryRequest)
	}

	// 報表路由：僅管理員可以訪問
	reports := router.Group("/reports")
	reports.Use(AuthMiddleware(), RoleMiddleware("admin"))
	{
		reports.GET("/current-vehicles", handlers.CurrentVehiclesReport)
		reports.GET("/parking-history", handlers.ParkingHistoryReport)
		reports.GET("/revenue", handlers.RevenueReport)
		reports.GET("/slot-utilization", handlers.SlotUtilizationReport)
		reports.GET("/export", handlers.ExportReport)
	}

	// 系統設定路由：僅管理員可以訪問
	settings := router.Group("/settings")
	settings.Use(AuthMiddleware(), RoleMiddleware("admin"))
	{
		settings.GET("", handlers.GetSettings)
		settings.PUT("", handlers.UpdateSettings)
		settings.PUT("/hourly-rate", handlers.UpdateHourlyRate)
		settings.GET("/system/info", handlers.GetSystemInfo)
		settings.GET("/backup", handlers.DownloadBackup)
		settings.GET("/:key", handlers.GetSetting)
	}
}
