package services

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig - 서버 실행 설정 (.env + 환경 변수)
type ServerConfig struct {
	Port         string
	AllowOrigins string

	// DB
	DBDriver      string // "mysql", "sqlite", "" (로그 저장 안 함)
	MySQLHost     string
	MySQLPort     int
	MySQLUser     string
	MySQLPassword string
	MySQLDatabase string
	SQLitePath    string

	// 캐시
	RedisAddr   string
	SnapshotTTL time.Duration

	// LLM 해설
	OllamaURL   string
	OllamaModel string

	FrameRate        int
	LogFlushSize     int
	LogFlushInterval time.Duration
}

// LoadServerConfig - .env 를 읽고 환경 변수로 설정을 구성한다
func LoadServerConfig() ServerConfig {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env 파일을 찾을 수 없습니다. 기본 환경 변수를 사용합니다.")
	}
	return ServerConfigFromEnv()
}

// ServerConfigFromEnv - 현재 환경 변수만으로 설정 구성
func ServerConfigFromEnv() ServerConfig {
	return ServerConfig{
		Port:         envString("PORT", "3000"),
		AllowOrigins: envString("ALLOW_ORIGINS", "*"),

		DBDriver:      os.Getenv("DB_DRIVER"),
		MySQLHost:     os.Getenv("MYSQL_HOST"),
		MySQLPort:     envInt("MYSQL_PORT", 3306),
		MySQLUser:     os.Getenv("MYSQL_USER"),
		MySQLPassword: os.Getenv("MYSQL_PASSWORD"),
		MySQLDatabase: os.Getenv("MYSQL_DATABASE"),
		SQLitePath:    envString("SQLITE_PATH", "evdock.db"),

		RedisAddr:   os.Getenv("REDIS_ADDR"),
		SnapshotTTL: envDuration("SNAPSHOT_TTL", 30*time.Second),

		OllamaURL:   os.Getenv("OLLAMA_URL"),
		OllamaModel: envString("OLLAMA_MODEL", "llama3.2"),

		FrameRate:        envInt("FRAME_RATE", 30),
		LogFlushSize:     envInt("LOG_FLUSH_SIZE", 50),
		LogFlushInterval: envDuration("LOG_FLUSH_INTERVAL", 10*time.Second),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
