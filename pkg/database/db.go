package database

import (
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"rapor-paud/backend/config"
)

// BuildDSN 由存储端点与访问密钥拼出 PostgreSQL 连接串。
// 密钥作为连接密码写入，端点中已有的密码会被覆盖。
func BuildDSN(endpoint, key string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("存储端点格式错误: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("存储端点仅支持 postgres:// 协议，实际为 %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("存储端点缺少主机地址")
	}

	username := "postgres"
	if u.User != nil && u.User.Username() != "" {
		username = u.User.Username()
	}
	u.User = url.UserPassword(username, key)

	return u.String(), nil
}

// NewDB 初始化远端 PostgreSQL 连接
func NewDB(cfg *config.StoreConfig, dsn string, logLevel string, logger *zap.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if logLevel == "debug" {
		level = gormlogger.Info
	}
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	if u, err := url.Parse(dsn); err == nil {
		logger.Info("数据库连接成功",
			zap.String("host", u.Host),
			zap.String("dbname", u.Path),
		)
	}

	return db, nil
}
