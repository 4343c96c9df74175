package config

import (
	"os"
	"strconv"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int
	MaxUploadMB  int

	DBPath         string
	MigrationsPath string
	StorageRoot    string

	// Параметры конвертации по умолчанию
	Encoding          string
	Accuracy          float64
	LineTolerance     float64
	IndexStrategy     string
	ClassifierWorkers int
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3001"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
		MaxUploadMB:  getEnvAsInt("MAX_UPLOAD_MB", 64),

		DBPath:         getEnv("CONVERTER_DB_PATH", "data/db/converter.db"),
		MigrationsPath: getEnv("CONVERTER_MIGRATIONS", "migrations/001_init_conversions.sql"),
		StorageRoot:    getEnv("CONVERTER_STORAGE_ROOT", "data/conversions"),

		Encoding:          getEnv("DXF_ENCODING", ""),
		Accuracy:          getEnvAsFloat("POINT_ACCURACY", 0.005),
		LineTolerance:     getEnvAsFloat("LINE_TOLERANCE", 0),
		IndexStrategy:     getEnv("INDEX_STRATEGY", "grid"),
		ClassifierWorkers: getEnvAsInt("CLASSIFIER_WORKERS", 0),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
