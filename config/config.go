package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config holds the application's configuration values.
type Config struct {
	AppName  string `json:"appname"`
	AppEnv   string `json:"appenv"`
	AppPort  uint16 `json:"appport"`
	GinMode  string `json:"ginmode"`
	DBDriver string `json:"dbdriver"`
	DBHost   string `json:"dbhost"`
	DBPort   uint16 `json:"dbport"`
	DBName   string `json:"dbname"`
	DBUSER   string `json:"dbuser"`
	DBPass   string `json:"dbpass"`
	MongoURI string `json:"-"`
	// APIToken, when set, must be presented as a bearer token on every request.
	APIToken           string `json:"-"`
	GeoIPDBPath        string `json:"geoip_db_path"`
	UserEmailCacheSize int    `json:"user_email_cache_size"`
	SessionCleanupSpec string `json:"session_cleanup_spec"`
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	defaultAppPort            = 19091
	defaultSessionCleanupSpec = "@every 1h"
	defaultUserEmailCacheSize = 1000
)

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		// A missing .env is fine, the environment may already be set.
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file loaded: %v", err)
		}

		appPort, err := strconv.ParseUint(os.Getenv("APPPORT"), 10, 16)
		if err != nil || appPort == 0 {
			appPort = defaultAppPort
		}
		dbPort, _ := strconv.ParseUint(os.Getenv("DBPORT"), 10, 16)

		driver := os.Getenv("DBDRIVER")
		if driver == "" {
			driver = DriverMySQL
		}

		cacheSize, err := strconv.Atoi(os.Getenv("USER_EMAIL_CACHE_SIZE"))
		if err != nil || cacheSize <= 0 {
			cacheSize = defaultUserEmailCacheSize
		}

		cleanupSpec := os.Getenv("SESSION_CLEANUP_SPEC")
		if cleanupSpec == "" {
			cleanupSpec = defaultSessionCleanupSpec
		}

		config = &Config{
			AppName:            os.Getenv("APPNAME"),
			AppEnv:             os.Getenv("APPENV"),
			AppPort:            uint16(appPort),
			GinMode:            os.Getenv("GINMODE"),
			DBDriver:           driver,
			DBHost:             os.Getenv("DBHOST"),
			DBPort:             uint16(dbPort),
			DBName:             os.Getenv("DBNAME"),
			DBUSER:             os.Getenv("DBUSER"),
			DBPass:             os.Getenv("DBPASS"),
			MongoURI:           os.Getenv("MONGOURI"),
			APIToken:           os.Getenv("APITOKEN"),
			GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
			UserEmailCacheSize: cacheSize,
			SessionCleanupSpec: cleanupSpec,
		}
	})
	return config
}

// IsTestEnv reports whether APPENV=test. It reads the environment directly so
// tests can flip it after the config singleton was built.
func IsTestEnv() bool {
	return os.Getenv("APPENV") == "test"
}

var sqliteSeq atomic.Uint64

// ConnectDatabase opens the SQL database selected by DBDRIVER. With APPENV=test
// every call gets its own shared in-memory SQLite database.
func ConnectDatabase() (*gorm.DB, error) {
	if IsTestEnv() {
		dsn := fmt.Sprintf("file:medibook_%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), sqliteSeq.Add(1))
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}

	cfg := LoadConfig()
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.DBUSER, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		dialector = mysql.Open(dsn)
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost, cfg.DBPort, cfg.DBUSER, cfg.DBPass, cfg.DBName)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DBDRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// ErrMongoDisabled is returned by ConnectMongo when MONGOURI is empty.
var ErrMongoDisabled = errors.New("mongo is not configured")

// ConnectMongo connects to MONGOURI and returns the application database.
func ConnectMongo(ctx context.Context) (*mongo.Client, *mongo.Database, error) {
	cfg := LoadConfig()
	uri := os.Getenv("MONGOURI")
	if uri == "" {
		uri = cfg.MongoURI
	}
	if uri == "" {
		return nil, nil, ErrMongoDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	dbName := cfg.DBName
	if dbName == "" {
		dbName = "medibook"
	}
	log.Printf("Connected to MongoDB database %s", dbName)
	return client, client.Database(dbName), nil
}
