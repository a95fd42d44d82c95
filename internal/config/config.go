package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int // Port serwera strumieniowego (wideo + klasy)
	DetectPort   int // Port serwisu detekcji pojedynczego obrazu
	BioleachPort int // Port serwisu regresji

	CameraIndex int

	ModelPath         string
	ModelFormat       string // yolov8 albo yolov5
	LabelsPath        string
	SecondModelPath   string // Pusty = tylko jeden model
	SecondLabelsPath  string
	SecondModelFormat string // Pusty = ten sam co ModelFormat
	PrefixSecond      bool   // Dodaj prefiks m2_ do klas drugiego modelu

	InputSize           int
	ConfThreshold       float64 // Próg dla strumienia
	DetectConfThreshold float64 // Próg dla /api/detect
	NMSThreshold        float64

	StreamInterval time.Duration
	JPEGQuality    int

	ImageDirectory        string
	DatabasePath          string
	SnapshotBufferLimit   int
	SnapshotFlushInterval int // sekundy
	SnapshotEveryNth      int // Co którą klatkę z detekcjami zapisywać

	BioleachModelPath   string
	BioleachImputerPath string
	BioleachScalerPath  string

	AllowedOrigins []string
	LogDirectory   string
}

// Load reads the configuration from the environment, after loading an
// optional .env file from the working directory.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:         getEnvAsInt("PORT", 5001),
		DetectPort:   getEnvAsInt("DETECT_PORT", 5000),
		BioleachPort: getEnvAsInt("BIOLEACH_PORT", 8000),

		CameraIndex: getEnvAsInt("CAMERA_INDEX", 0),

		ModelPath:         getEnv("MODEL_PATH", filepath.Join(".", "model1.onnx")),
		ModelFormat:       getEnv("MODEL_FORMAT", "yolov8"),
		LabelsPath:        getEnv("LABELS_PATH", ""),
		SecondModelPath:   getEnv("SECOND_MODEL_PATH", filepath.Join(".", "model2.onnx")),
		SecondLabelsPath:  getEnv("SECOND_LABELS_PATH", ""),
		SecondModelFormat: getEnv("SECOND_MODEL_FORMAT", ""),
		PrefixSecond:      getEnvAsBool("PREFIX_SECOND", false),

		InputSize:           getEnvAsInt("INPUT_SIZE", 640),
		ConfThreshold:       getEnvAsFloat("CONF_THRESHOLD", 0.5),
		DetectConfThreshold: getEnvAsFloat("DETECT_CONF_THRESHOLD", 0.25), // domyślny próg ultralytics
		NMSThreshold:        getEnvAsFloat("NMS_THRESHOLD", 0.45),

		StreamInterval: getEnvAsDuration("STREAM_INTERVAL", 33*time.Millisecond), // ~30 FPS
		JPEGQuality:    getEnvAsInt("JPEG_QUALITY", 95),

		ImageDirectory:        getEnv("IMAGE_DIR", filepath.Join(".", "snapshots")),
		DatabasePath:          getEnv("DB_PATH", filepath.Join(".", "data", "snapshots.db")),
		SnapshotBufferLimit:   getEnvAsInt("BUFFER_LIMIT", 10),
		SnapshotFlushInterval: getEnvAsInt("FLUSH_INTERVAL", 30),
		SnapshotEveryNth:      getEnvAsInt("SNAPSHOT_EVERY", 30),

		BioleachModelPath:   getEnv("BIOLEACH_MODEL", filepath.Join(".", "models", "bioleach_ann_model.json")),
		BioleachImputerPath: getEnv("BIOLEACH_IMPUTER", filepath.Join(".", "models", "imputer.json")),
		BioleachScalerPath:  getEnv("BIOLEACH_SCALER", filepath.Join(".", "models", "scaler.json")),

		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		LogDirectory:   getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
