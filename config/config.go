// Package config 加载进程配置并把各组件装配成 pipeline.Service。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rushteam/premiumkit/core"
)

// EnvPrefix 环境变量前缀，例如 PREMIUMKIT_CACHE_TYPE 覆盖 cache.type
const EnvPrefix = "PREMIUMKIT"

// 缓存类型
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config 进程配置
type Config struct {
	// Manifest 分段清单路径
	Manifest string        `mapstructure:"manifest"`
	Logging  LoggingConfig `mapstructure:"logging"`
	Cache    CacheConfig   `mapstructure:"cache"`
	Metrics  MetricsConfig `mapstructure:"metrics"`

	// ScalerTimeout 下载 http(s) scaler 制品的超时（秒）
	ScalerTimeout int `mapstructure:"scaler_timeout"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"` // json / console
	Service string `mapstructure:"service"`
}

type CacheConfig struct {
	Type       string `mapstructure:"type"`
	SizeBytes  int    `mapstructure:"size_bytes"`
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

var defaults = map[string]any{
	"manifest":          "",
	"logging.level":     "info",
	"logging.format":    "json",
	"logging.service":   "premiumkit",
	"cache.type":        CacheNone,
	"cache.size_bytes":  32 * 1024 * 1024,
	"cache.addr":        "localhost:6379",
	"cache.password":    "",
	"cache.db":          0,
	"cache.key_prefix":  "",
	"cache.ttl_seconds": 3600,
	"metrics.namespace": "premiumkit",
	"scaler_timeout":    10,
}

// Load 读取配置：先加载可选的 .env，再读 YAML 文件（path 为空时只用默认值和环境变量），
// 最后由 PREMIUMKIT_ 前缀的环境变量覆盖。
func Load(path string) (*Config, error) {
	loadEnvFile(".env")

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, core.WrapDomainError(core.ModulePipeline, core.ErrorCodeConfiguration,
				fmt.Sprintf("failed to read config file %s", path), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, core.WrapDomainError(core.ModulePipeline, core.ErrorCodeConfiguration, "failed to unmarshal config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile 加载 .env；文件不存在不是错误，已存在的环境变量不会被覆盖
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// Validate 校验必填项和枚举值
func (c *Config) Validate() error {
	var errs []error
	if c.Manifest == "" {
		errs = append(errs, errors.New("manifest is required"))
	}
	switch c.Cache.Type {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.Addr == "" {
			errs = append(errs, errors.New("cache.addr is required for redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported cache.type %q", c.Cache.Type))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unsupported logging.format %q", c.Logging.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return core.WrapDomainError(core.ModulePipeline, core.ErrorCodeConfiguration, "config", err)
	}
	return nil
}
