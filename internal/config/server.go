package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EchoServer HTTP 服务配置
type EchoServer struct {
	ListenAddress      string
	HideInternalRoutes bool
}

// Database PostgreSQL 连接配置
type Database struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	SSLMode  string
}

// ConnectionString 拼接 lib/pq 连接串
func (d Database) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode)
}

// Redis 远程会话桥配置
type Redis struct {
	Endpoint string
	Password string
}

// Gateway 网络网关配置
type Gateway struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// Auth API 鉴权配置
type Auth struct {
	JWTSecret     string
	TokenLifetime time.Duration
}

// Wallet 钱包侧配置
type Wallet struct {
	// 当前网络 ID（主网为 1）
	NetworkID uint8
	// 开发者模式跳过双向链接校验
	DeveloperMode bool
}

// Logger 日志配置
type Logger struct {
	Level              string
	PrettyPrintConsole bool
}

// ZerologLevel 解析日志级别，无法解析时退回 info
func (l Logger) ZerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Server 服务完整配置
type Server struct {
	Echo     EchoServer
	Database Database
	Redis    Redis
	Gateway  Gateway
	Auth     Auth
	Wallet   Wallet
	Logger   Logger
}

// DefaultServiceConfigFromEnv 从环境变量读取配置，未设置的键使用默认值。
// 所有键以 WALLET_CONNECT_ 为前缀，层级用下划线分隔。
func DefaultServiceConfigFromEnv() Server {
	v := viper.New()
	v.SetEnvPrefix("WALLET_CONNECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("echo.listen_address", ":8080")
	v.SetDefault("echo.hide_internal_routes", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "wallet")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "wallet_connect")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.endpoint", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("gateway.base_url", "https://mainnet.radixdlt.com")
	v.SetDefault("gateway.request_timeout", 30*time.Second)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime", 24*time.Hour)
	v.SetDefault("wallet.network_id", 1)
	v.SetDefault("wallet.developer_mode", false)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.pretty_print_console", false)

	return Server{
		Echo: EchoServer{
			ListenAddress:      v.GetString("echo.listen_address"),
			HideInternalRoutes: v.GetBool("echo.hide_internal_routes"),
		},
		Database: Database{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			Username: v.GetString("database.username"),
			Password: v.GetString("database.password"),
			Database: v.GetString("database.database"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		Redis: Redis{
			Endpoint: v.GetString("redis.endpoint"),
			Password: v.GetString("redis.password"),
		},
		Gateway: Gateway{
			BaseURL:        v.GetString("gateway.base_url"),
			RequestTimeout: v.GetDuration("gateway.request_timeout"),
		},
		Auth: Auth{
			JWTSecret:     v.GetString("auth.jwt_secret"),
			TokenLifetime: v.GetDuration("auth.token_lifetime"),
		},
		Wallet: Wallet{
			NetworkID:     uint8(v.GetUint("wallet.network_id")),
			DeveloperMode: v.GetBool("wallet.developer_mode"),
		},
		Logger: Logger{
			Level:              v.GetString("logger.level"),
			PrettyPrintConsole: v.GetBool("logger.pretty_print_console"),
		},
	}
}
