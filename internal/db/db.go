package db

import (
	"fmt"
	"time"

	"github.com/simfon/fate-pbc-rpg/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Connect 按配置的方言建立数据库连接。sqlite 走 modernc 纯 Go 驱动，
// postgres 带简单重试以等待容器就绪。
func Connect(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "sqlite", "":
		return gorm.Open(sqlite.Dialector{
			DriverName: "sqlite",
			DSN:        dsn,
		}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	case "postgres":
		var gdb *gorm.DB
		var err error
		for i := 0; i < 10; i++ {
			gdb, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
			if err == nil {
				sqlDB, err2 := gdb.DB()
				if err2 == nil {
					sqlDB.SetMaxIdleConns(5)
					sqlDB.SetMaxOpenConns(20)
					sqlDB.SetConnMaxLifetime(time.Hour)
					return gdb, nil
				}
				err = err2
			}
			time.Sleep(time.Duration(500+i*200) * time.Millisecond)
		}
		return nil, err
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// Migrate 自动迁移全部五张表。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Location{},
		&models.Character{},
		&models.Message{},
		&models.Invite{},
	)
}
