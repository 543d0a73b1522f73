package utils

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var JWTSecret []byte

// InitJWTSecret 從環境變數載入 JWT 密鑰
func InitJWTSecret() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "parking-management-secret"
		log.Println("JWT_SECRET not set, using default secret (do not use in production)")
	}
	JWTSecret = []byte(secret)
}

// GenerateAdminToken 簽發管理員 token，帶 role=admin
func GenerateAdminToken(adminID int, username string) (string, error) {
	return generateToken(jwt.MapClaims{
		"id":       adminID,
		"username": username,
		"role":     "admin",
	})
}

// GenerateUserToken 簽發一般用戶 token，帶 role=user
func GenerateUserToken(userID int, vehicleRegistration string) (string, error) {
	return generateToken(jwt.MapClaims{
		"id":                   userID,
		"vehicle_registration": vehicleRegistration,
		"role":                 "user",
	})
}

func generateToken(claims jwt.MapClaims) (string, error) {
	expiresIn := 8 * time.Hour
	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("Invalid JWT_EXPIRES_IN %q, falling back to 8h: %v", v, err)
		} else {
			expiresIn = parsed
		}
	}

	now := time.Now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(expiresIn).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(JWTSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken 解析並驗證 token，明確要求 exp 字段
func ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return JWTSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
