package config

import (
	"fmt"
	"os"
	"strconv"
)

type Configs struct {
	Env      string
	LogLevel string

	ApiServer ServerConfigs
	Database  DatabaseConfigs
	Lottery   LotteryConfigs
}

type ServerConfigs struct {
	Host string
	Port string
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type DatabaseConfigs struct {
	// Driver is "mysql" or "sqlite".
	Driver   string
	Host     string
	Port     string
	Database string
	User     string
	Password string

	// SQLitePath is the database file when Driver is sqlite.
	SQLitePath string
}

func (d DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type LotteryConfigs struct {
	AllowEarlyClose       bool
	MaxTicketsPerPurchase int
}

// Load builds the configuration from environment variables, matching how
// the service is deployed.
func Load() Configs {
	return Configs{
		Env:      getEnv("ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		ApiServer: ServerConfigs{
			Host: getEnv("HOST", "0.0.0.0"),
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfigs{
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "3306"),
			Database:   getEnv("DB_NAME", "rondomundi"),
			User:       getEnv("DB_USER", "root"),
			Password:   getEnv("DB_PASSWORD", ""),
			SQLitePath: getEnv("DB_SQLITE_PATH", "rondomundi.db"),
		},
		Lottery: LotteryConfigs{
			AllowEarlyClose:       getEnvBool("LOTTERY_ALLOW_EARLY_CLOSE", false),
			MaxTicketsPerPurchase: getEnvInt("LOTTERY_MAX_TICKETS_PER_PURCHASE", 10000),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}

	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}
