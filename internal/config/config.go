package config

import (
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"picstorm-server/internal/logger"
)

// 用于管理应用配置

const devJWTSecret = "picstorm_dev_secret"

var (
	// 使用 atomic.Value 存储 *Config，实现无锁读取
	appConfig atomic.Value
	configMu  sync.Mutex // 仅用于写操作互斥
	configDir = "config"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port           string `mapstructure:"port"`
	Mode           string `mapstructure:"mode"`
	TrustedProxies string `mapstructure:"trusted_proxies"` // 逗号分隔，留空表示不信任任何代理
}

type DatabaseConfig struct {
	Type     string `mapstructure:"type"`     // sqlite, mysql, postgres
	Filename string `mapstructure:"filename"` // for sqlite
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSL      bool   `mapstructure:"ssl"`
}

type JWTConfig struct {
	Secret          string `mapstructure:"secret"`
	ExpirationHours int    `mapstructure:"expiration_hours"`
}

type StorageConfig struct {
	Path             string `mapstructure:"path"`
	MaxPictureSizeMB int    `mapstructure:"max_picture_size_mb"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type RateLimitConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	AuthRPS     float64 `mapstructure:"auth_rps"`
	AuthBurst   int     `mapstructure:"auth_burst"`
	UploadRPS   float64 `mapstructure:"upload_rps"`
	UploadBurst int     `mapstructure:"upload_burst"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Get 获取当前配置的快照（无锁读取）
func Get() Config {
	val := appConfig.Load()
	if val == nil {
		return Config{}
	}
	c, ok := val.(*Config)
	if !ok {
		return Config{}
	}
	return *c
}

func GetConfigDir() string {
	return configDir
}

// InitConfig 加载配置文件、.env 与环境变量，并完成安全检查。
func InitConfig(customConfigDir string) {
	loadDotEnv()
	v := initViper(customConfigDir)
	loadAndStore(v)
	enforceJWTSecretSafety()
	logger.Info("✅ 配置加载成功", logger.Fields{"dir": configDir})
}

// loadDotEnv 读取工作目录下的 .env，文件不存在时静默跳过。
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	// godotenv.Load 不会覆盖已存在的环境变量
	if err := godotenv.Load(); err != nil {
		logger.Warn("⚠️ 读取 .env 失败", logger.Fields{"error": err.Error()})
	}
}

func initViper(customConfigDir string) *viper.Viper {
	v := viper.New()

	customConfigDir = strings.TrimSpace(customConfigDir)
	if customConfigDir == "" {
		customConfigDir = "config"
	}
	configDir = customConfigDir

	v.AddConfigPath(configDir)
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			logger.Warn("⚠️  未找到配置文件，将仅使用环境变量或默认值", nil)
		} else {
			logger.Fatal("❌ 读取配置文件失败", logger.Fields{"error": err.Error()})
		}
	}

	// 所有环境变量必须以 PICSTORM_ 开头
	// 例如：yaml 中的 server.port 对应环境变量 PICSTORM_SERVER_PORT
	v.SetEnvPrefix("PICSTORM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.trusted_proxies", "")
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.filename", "database/picstorm.db")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "picstorm")
	v.SetDefault("database.password", "picstorm")
	v.SetDefault("database.name", "picstorm")
	v.SetDefault("database.ssl", false)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("storage.path", "uploads/pictures")
	v.SetDefault("storage.max_picture_size_mb", 1)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "picstorm")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.auth_rps", 1.0)
	v.SetDefault("rate_limit.auth_burst", 5)
	v.SetDefault("rate_limit.upload_rps", 0.5)
	v.SetDefault("rate_limit.upload_burst", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// loadAndStore 解析并原子更新配置
func loadAndStore(v *viper.Viper) {
	configMu.Lock()
	defer configMu.Unlock()

	var tempConfig Config
	if err := v.Unmarshal(&tempConfig); err != nil {
		logger.Error("❌ 配置解析失败", logger.Fields{"error": err.Error()})
		return
	}

	if tempConfig.Server.Mode != "release" && tempConfig.JWT.Secret == "" {
		logger.Warn("⚠️ [开发模式警告] 未设置 JWT Secret，将使用默认不安全密钥进行开发", nil)
		tempConfig.JWT.Secret = devJWTSecret
	}

	logger.Configure(tempConfig.Log.Level, tempConfig.Log.Console && tempConfig.Server.Mode != "release")

	appConfig.Store(&tempConfig)
}

func enforceJWTSecretSafety() {
	curr := Get()
	if curr.Server.Mode == "release" {
		if curr.JWT.Secret == "" || curr.JWT.Secret == devJWTSecret {
			logger.Fatal("❌ [安全严重错误] 生产模式(release)下必须设置安全的 JWT Secret！请设置环境变量 PICSTORM_JWT_SECRET 或在配置文件中指定 jwt.secret", nil)
		}
	}
}
