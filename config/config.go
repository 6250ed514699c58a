package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"commit/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB        *gorm.DB
	AppConfig Config
	envLoaded bool
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type Config struct {
	Environment    string      `json:"environment"`
	ServerPort     string      `json:"server_port"`
	DBHost         string      `json:"db_host"`
	DBPort         string      `json:"db_port"`
	DBUser         string      `json:"db_user"`
	DBPassword     string      `json:"-"`
	DBName         string      `json:"db_name"`
	DBSSLMode      string      `json:"db_ssl_mode"`
	DBMaxIdleConns int         `json:"db_max_idle_conns"`
	DBMaxOpenConns int         `json:"db_max_open_conns"`
	SentryDSN      string      `json:"-"`
	UndoWindowMS   int         `json:"undo_window_ms"`
	RateLimitWrite int         `json:"rate_limit_write"`
	Redis          RedisConfig `json:"redis"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
	envLoaded = true
}

func LoadConfig() error {
	AppConfig = Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "commit"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		UndoWindowMS:   getEnvAsInt("UNDO_WINDOW_MS", 5000),
		RateLimitWrite: getEnvAsInt("RATE_LIMIT_WRITE", 30),
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	// Validate required configurations
	if AppConfig.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if AppConfig.UndoWindowMS <= 0 {
		return fmt.Errorf("UNDO_WINDOW_MS must be positive")
	}

	logConfig()
	return nil
}

func ConnectDB() error {
	log.Println("Attempting to connect to database...")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBUser,
		AppConfig.DBPassword,
		AppConfig.DBName,
		AppConfig.DBSSLMode,
	)
	log.Println("Using connection string:", maskPassword(dsn))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("✅ Successfully connected to the database")
	log.Println("🔄 Starting database migration...")
	if err := migrateDB(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("✅ Database migration completed")
	return nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if !envLoaded && fallback == "" {
		log.Printf("⚠️ Environment variable %s not found and no fallback provided", key)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return fallback
	}
	return value
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	log.Println("🔧 Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	log.Printf("Database: %s@%s:%s/%s",
		AppConfig.DBUser,
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBName)
	log.Printf("Undo window: %dms, write rate limit: %d/min, redis: %t",
		AppConfig.UndoWindowMS,
		AppConfig.RateLimitWrite,
		AppConfig.Redis.Enabled)
}

func migrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.TeamMember{},
		&models.Agreement{},
		&models.AgreementSignature{},
		&models.Deliverable{},
		&models.DeliverableDependency{},
		&models.Update{},
		&models.UpdateReaction{},
	); err != nil {
		return err
	}

	// The dependency graph must stay acyclic. The application walks the edge
	// set before inserting, but the trigger is the authoritative guard: it
	// raises SQLSTATE P0001, which the dependency controller maps to a
	// circular-dependency error.
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(`
            CREATE OR REPLACE FUNCTION reject_dependency_cycle() RETURNS trigger AS $$
            BEGIN
                IF NEW.deliverable_id = NEW.depends_on_id THEN
                    RAISE EXCEPTION 'circular dependency detected';
                END IF;
                IF EXISTS (
                    WITH RECURSIVE reachable(id) AS (
                        SELECT depends_on_id FROM deliverable_dependencies
                        WHERE deliverable_id = NEW.depends_on_id
                        UNION
                        SELECT dd.depends_on_id FROM deliverable_dependencies dd
                        JOIN reachable r ON dd.deliverable_id = r.id
                    )
                    SELECT 1 FROM reachable WHERE id = NEW.deliverable_id
                ) THEN
                    RAISE EXCEPTION 'circular dependency detected';
                END IF;
                RETURN NEW;
            END;
            $$ LANGUAGE plpgsql;
        `).Error; err != nil {
			return fmt.Errorf("failed to create cycle guard function: %w", err)
		}

		if err := db.Exec(`
            DROP TRIGGER IF EXISTS trg_reject_dependency_cycle ON deliverable_dependencies;
            CREATE TRIGGER trg_reject_dependency_cycle
            BEFORE INSERT OR UPDATE ON deliverable_dependencies
            FOR EACH ROW EXECUTE FUNCTION reject_dependency_cycle();
        `).Error; err != nil {
			return fmt.Errorf("failed to install cycle guard trigger: %w", err)
		}
	}

	return nil
}
