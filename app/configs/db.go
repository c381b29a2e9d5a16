package configs

import (
	"fmt"
	"log"
	"net"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dialector() (gorm.Dialector, string) {
	switch LoadENV.DBDriver {
	case "postgres":
		sslMode := "disable"
		if LoadENV.IsProduction() {
			sslMode = "require"
		}
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			LoadENV.DBHost,
			LoadENV.DBUser,
			LoadENV.DBPassword,
			LoadENV.DBName,
			LoadENV.DBPort,
			sslMode,
		)
		return postgres.Open(dsn), fmt.Sprintf("postgres://%s@%s:%s/%s", LoadENV.DBUser, LoadENV.DBHost, LoadENV.DBPort, LoadENV.DBName)
	default:
		return mysql.Open(mysqlDSN(LoadENV)), fmt.Sprintf("mysql://%s@%s:%s/%s", LoadENV.DBUser, LoadENV.DBHost, LoadENV.DBPort, LoadENV.DBName)
	}
}

func mysqlDSN(env ENV) string {
	cfg := mysqldrv.NewConfig()
	cfg.User = env.DBUser
	cfg.Passwd = env.DBPassword
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(env.DBHost, env.DBPort)
	cfg.DBName = env.DBName
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

func OpenConnection() (*gorm.DB, error) {

	maxRetries := 10
	retryDelay := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		dial, safeDSN := dialector()
		log.Printf("Attempting to connect to database (Attempt %d/%d) using %s", i+1, maxRetries, safeDSN)
		db, err := gorm.Open(dial, &gorm.Config{})
		if err == nil {

			sqlDB, pingErr := db.DB()
			if pingErr == nil {
				pingErr = sqlDB.Ping()
				if pingErr == nil {
					sqlDB.SetMaxOpenConns(20)
					sqlDB.SetMaxIdleConns(5)
					sqlDB.SetConnMaxLifetime(30 * time.Minute)
					log.Println("✅ Database connection successful!")
					return db, nil
				}
			}

			log.Printf("❌ Failed to ping database: %v. Retrying in %v...", pingErr, retryDelay)
		} else {
			log.Printf("❌ Failed to open GORM connection: %v. Retrying in %v...", err, retryDelay)
		}

		time.Sleep(retryDelay)
	}

	_, safeDSN := dialector()
	return nil, fmt.Errorf("failed to connect to the database after %d retries (%s)", maxRetries, safeDSN)
}
