// Package testutil 测试辅助：内存数据库、测试用 JWT
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"shop_checkout/pkg/utils"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// JWTSecret 测试用签名密钥
const JWTSecret = "0123456789abcdef0123456789abcdef"

// NewDB 每个测试独立的内存 SQLite 库，自动建表
// 单连接保证事务与并发测试看到同一份数据
func NewDB(t testing.TB, models ...interface{}) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("auto migrate: %v", err)
		}
	}
	return db
}

// Token 签发测试用 JWT
func Token(t testing.TB, userID string, role int) string {
	t.Helper()
	tok, _, err := utils.GenerateToken(JWTSecret, userID, role, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}
