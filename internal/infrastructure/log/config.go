package log

import (
	"os"
	"strconv"
	"strings"
)

// 日志相关环境变量
const (
	EnvLogLevel     = "SECONDBRAIN_LOG_LEVEL"
	EnvLogFormat    = "SECONDBRAIN_LOG_FORMAT"
	EnvLogOutput    = "SECONDBRAIN_LOG_OUTPUT"
	EnvLogAddSource = "SECONDBRAIN_LOG_ADD_SOURCE"
	EnvLogColor     = "SECONDBRAIN_LOG_COLOR"
	EnvMode         = "SECONDBRAIN_ENV"
)

// Config 日志配置
type Config struct {
	// Level 日志级别：debug, info, warn, error
	Level string `json:"level"`

	// Format 日志格式：console, json, text
	Format string `json:"format"`

	// Output 输出目标：stdout, stderr, file:/path/to/log
	Output string `json:"output"`

	// AddSource 是否添加源文件信息
	AddSource bool `json:"add_source"`

	// Color 控制台输出是否着色
	Color bool `json:"color"`
}

// NewConfigFromEnv 从环境变量创建配置
func NewConfigFromEnv() *Config {
	cfg := &Config{
		Level:     getEnvWithDefault(EnvLogLevel, "info"),
		Format:    getEnvWithDefault(EnvLogFormat, "console"),
		Output:    getEnvWithDefault(EnvLogOutput, "stdout"),
		AddSource: getEnvBool(EnvLogAddSource, false),
		Color:     getEnvBool(EnvLogColor, true),
	}

	if cfg.isDevelopment() {
		cfg.Level = "debug"
		cfg.Format = "console"
		cfg.AddSource = true
	}

	return cfg
}

// isDevelopment 检查是否为开发环境
func (c *Config) isDevelopment() bool {
	env := getEnvWithDefault(EnvMode, "production")
	return strings.ToLower(env) == "development"
}

// getEnvWithDefault 获取环境变量，带默认值
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool 获取布尔型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}
