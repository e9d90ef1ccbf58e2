package config

import (
	"os"
	"strconv"
	"strings"
)

// DBConfig 数据库配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	// SSLMode 默认 disable
	SSLMode string `yaml:"sslmode"`
	// SlowQueryMs 慢查询阈值（毫秒），0 使用默认值
	SlowQueryMs int `yaml:"slow_query_ms"`
	// 连接池大小，0 使用默认值
	MaxConns int `yaml:"max_conns"`
	MinConns int `yaml:"min_conns"`
}

// MQConfig 消息队列配置
type MQConfig struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port string `yaml:"port"`
}

// OtelConfig OpenTelemetry 配置
type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// AnalyticsConfig 聚合计算参数
type AnalyticsConfig struct {
	// Timezone 决定 "today" 的日历日
	Timezone string `yaml:"timezone"`
	// LookbackDays 连续打卡统计窗口，0 表示完整历史
	LookbackDays int `yaml:"lookback_days"`
	// CorrelationDays 相关性分析窗口
	CorrelationDays int `yaml:"correlation_days"`
	// MinOverlapDays 相关性计算所需的最少重叠天数
	MinOverlapDays int `yaml:"min_overlap_days"`
	// TopCorrelations 展示用的相关性条数
	TopCorrelations int `yaml:"top_correlations"`
	// RequestTimeoutSec 单次聚合请求的超时
	RequestTimeoutSec int `yaml:"request_timeout_sec"`
}

// DefaultAnalyticsConfig 返回默认聚合参数
func DefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		Timezone:          "UTC",
		LookbackDays:      0,
		CorrelationDays:   90,
		MinOverlapDays:    7,
		TopCorrelations:   10,
		RequestTimeoutSec: 10,
	}
}

// OverrideDBFromEnv 从环境变量覆盖数据库配置
func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
	if mode := os.Getenv("DB_SSLMODE"); mode != "" {
		cfg.SSLMode = mode
	}
	overrideInt("DB_MAX_CONNS", &cfg.MaxConns)
}

// OverrideMQFromEnv 从环境变量覆盖MQ配置
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
	if enabled := os.Getenv("MQ_ENABLED"); enabled != "" {
		cfg.Enabled = parseBool(enabled, cfg.Enabled)
	}
}

// OverrideRedisFromEnv 从环境变量覆盖Redis配置
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

// OverrideJWTFromEnv 从环境变量覆盖JWT配置
func OverrideJWTFromEnv(cfg *JWTConfig) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Secret = secret
	}
}

// OverrideServerFromEnv 从环境变量覆盖服务器配置
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}

// OverrideOtelFromEnv 从环境变量覆盖 OpenTelemetry 配置
func OverrideOtelFromEnv(cfg *OtelConfig) {
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if enabled := os.Getenv("OTEL_ENABLED"); enabled != "" {
		cfg.Enabled = parseBool(enabled, cfg.Enabled)
	}
	if v := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SampleRatio = r
		}
	}
}

// OverrideAnalyticsFromEnv 从环境变量覆盖聚合参数
func OverrideAnalyticsFromEnv(cfg *AnalyticsConfig) {
	if tz := os.Getenv("ANALYTICS_TIMEZONE"); tz != "" {
		cfg.Timezone = tz
	}
	overrideInt("ANALYTICS_LOOKBACK_DAYS", &cfg.LookbackDays)
	overrideInt("ANALYTICS_CORRELATION_DAYS", &cfg.CorrelationDays)
	overrideInt("ANALYTICS_MIN_OVERLAP_DAYS", &cfg.MinOverlapDays)
	overrideInt("ANALYTICS_TOP_CORRELATIONS", &cfg.TopCorrelations)
	overrideInt("ANALYTICS_REQUEST_TIMEOUT_SEC", &cfg.RequestTimeoutSec)
}

func overrideInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func parseBool(v string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
