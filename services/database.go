package services

import (
	"fmt"
	"log"

	"evdock-sim/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase - DB_DRIVER 에 따라 MySQL / SQLite 연결 후 마이그레이션.
// 드라이버가 비어 있으면 (nil, nil): 이벤트 로그를 저장하지 않는다.
func OpenDatabase(cfg ServerConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DBDriver {
	case "":
		log.Println("⚠️ DB_DRIVER 미설정 - 이벤트 로그를 저장하지 않습니다")
		return nil, nil
	case "mysql":
		if cfg.MySQLHost == "" || cfg.MySQLUser == "" || cfg.MySQLDatabase == "" {
			return nil, fmt.Errorf("MySQL 환경 변수가 모두 설정되지 않았습니다: MYSQL_HOST, MYSQL_USER, MYSQL_DATABASE")
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.MySQLUser, cfg.MySQLPassword, cfg.MySQLHost, cfg.MySQLPort, cfg.MySQLDatabase)
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("지원하지 않는 DB_DRIVER: %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("DB 연결 실패: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Printf("✅ %s 연결 및 마이그레이션 완료", cfg.DBDriver)
	return db, nil
}

// Migrate - 테이블 자동 생성
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.SimEventLog{}); err != nil {
		return fmt.Errorf("마이그레이션 실패: %w", err)
	}
	return nil
}
