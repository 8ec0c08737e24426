package main

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kashguard/go-wallet-connect/internal/config"
)

// 生成本地开发用的 API 访问令牌
func main() {
	cfg := config.DefaultServiceConfigFromEnv()
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = "change-me-in-production"
	}

	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.Auth.TokenLifetime)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		NotBefore: jwt.NewNumericDate(time.Now()),
		Issuer:    "wallet-connect",
		Subject:   "local-dev",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(signedToken)
}
