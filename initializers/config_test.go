package initializers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://shop.example.com ,")
	t.Setenv("CHECKOUT_TIMEOUT", "5s")
	t.Setenv("DB_LOG_LEVEL", "warn")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, []string{"http://localhost:3000", "https://shop.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.CheckoutTimeout)
	assert.Equal(t, logger.Warn, cfg.DB.LogLevel)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, "INR", cfg.Payment.Currency)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestConnectToSQLiteAndSync(t *testing.T) {
	db, err := ConnectToDB(DBConfig{Driver: "sqlite", DSN: "file:initializers_test?mode=memory&cache=shared", MaxOpenConns: 1, MaxIdleConns: 1, LogLevel: logger.Silent})
	if !assert.NoError(t, err) {
		return
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	log, err := InitLogger("debug", "test")
	assert.NoError(t, err)
	assert.NoError(t, SyncDatabase(db, log))
	assert.True(t, db.Migrator().HasTable("orders"))
	assert.True(t, db.Migrator().HasTable("user_addresses"))
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := ConnectToDB(DBConfig{Driver: "oracle"})
	assert.Error(t, err)
}
