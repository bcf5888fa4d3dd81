package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string
	Mode string
}

// StorageConfig 数据目录与CSV云端镜像配置
type StorageConfig struct {
	// Type 为 "minio" 时启用云端镜像，否则导出的CSV只落本地磁盘
	Type          string `mapstructure:"type"`
	DataPath      string `mapstructure:"data_path"`
	UploadsPath   string `mapstructure:"uploads_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// UsersFile 用户数据文件路径
func (c *StorageConfig) UsersFile() string {
	return filepath.Join(c.DataPath, "users.json")
}

// ResultsFile 所有用户共用的成绩数据文件路径
func (c *StorageConfig) ResultsFile() string {
	return filepath.Join(c.DataPath, "results", "all_results.json")
}

// QuestionsDir 题库文件目录，每个 {testType}_{testId} 一个文件
func (c *StorageConfig) QuestionsDir() string {
	return filepath.Join(c.DataPath, "questions")
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("CBDA")
	viper.AutomaticEnv()

	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Storage / MinIO
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.data_path", "DATA_PATH")
	viper.BindEnv("storage.uploads_path", "UPLOADS_PATH")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Storage.DataPath == "" {
		cfg.Storage.DataPath = "data"
	}
	if cfg.Storage.UploadsPath == "" {
		cfg.Storage.UploadsPath = "uploads"
	}

	// 启动时保证数据目录存在
	for _, dir := range []string{
		cfg.Storage.DataPath,
		cfg.Storage.QuestionsDir(),
		filepath.Dir(cfg.Storage.ResultsFile()),
		cfg.Storage.UploadsPath,
	} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			os.MkdirAll(dir, 0755)
		}
	}

	return &cfg, nil
}
