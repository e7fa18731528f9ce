package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config 服务配置
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Log       LogConfig       `toml:"log"`
	Driver    DriverConfig    `toml:"driver"`
	Execution ExecutionConfig `toml:"execution"`
	Evidence  EvidenceConfig  `toml:"evidence"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type string `toml:"type"` // sqlite, postgres
	DSN  string `toml:"dsn"`  // data source name
	// BusyTimeoutSeconds is how long a sqlite writer waits for the lock held by a
	// running execution. Defaults to the run timeout plus a minute.
	BusyTimeoutSeconds int `toml:"busy_timeout_seconds"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json
}

// DriverConfig points at a W3C WebDriver endpoint (chromedriver, geckodriver, selenium grid).
type DriverConfig struct {
	URL            string `toml:"url"`
	Browser        string `toml:"browser"`
	Headless       bool   `toml:"headless"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ExecutionConfig 执行配置
type ExecutionConfig struct {
	SuiteBlockPageSize int    `toml:"suite_block_page_size"`
	CaseBlockPageSize  int    `toml:"case_block_page_size"`
	ActionPageSize     int    `toml:"action_page_size"`
	SuiteFailurePolicy string `toml:"suite_failure_policy"` // continue, abort
	CaseFailurePolicy  string `toml:"case_failure_policy"`  // continue, abort
	RunTimeoutSeconds  int    `toml:"run_timeout_seconds"`  // 0 disables the timeout
	RunStatus          string `toml:"run_status"`           // reduce, always-completed
}

// EvidenceConfig S3/MinIO storage for failure screenshots
type EvidenceConfig struct {
	Enabled   bool   `toml:"enabled"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

// LoadConfig 加载配置文件
func LoadConfig(path string) (*Config, error) {
	var config Config

	// 读取配置文件
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 解析TOML
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config.finish()
}

// LoadOrDefault loads path, falling back to defaults plus environment overrides when
// the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		var config Config
		return config.finish()
	}
	return LoadConfig(path)
}

func (c *Config) finish() (*Config, error) {
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.setDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyEnv loads .env (if present) and applies ORCA_* overrides on top of the file.
func (c *Config) applyEnv() error {
	_ = godotenv.Load()

	if v := os.Getenv("ORCA_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ORCA_SERVER_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("ORCA_DATABASE_TYPE"); v != "" {
		c.Database.Type = v
	}
	if v := os.Getenv("ORCA_DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("ORCA_DRIVER_URL"); v != "" {
		c.Driver.URL = v
	}
	if v := os.Getenv("ORCA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ORCA_EVIDENCE_ACCESS_KEY"); v != "" {
		c.Evidence.AccessKey = v
	}
	if v := os.Getenv("ORCA_EVIDENCE_SECRET_KEY"); v != "" {
		c.Evidence.SecretKey = v
	}
	return nil
}

// 设置默认值
func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "./data/orca.db"
	}
	if c.Database.BusyTimeoutSeconds == 0 {
		c.Database.BusyTimeoutSeconds = c.Execution.RunTimeoutSeconds + 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Driver.URL == "" {
		c.Driver.URL = "http://localhost:4444"
	}
	if c.Driver.Browser == "" {
		c.Driver.Browser = "chrome"
	}
	if c.Driver.TimeoutSeconds == 0 {
		c.Driver.TimeoutSeconds = 30
	}
	if c.Execution.SuiteBlockPageSize == 0 {
		c.Execution.SuiteBlockPageSize = 10
	}
	if c.Execution.CaseBlockPageSize == 0 {
		c.Execution.CaseBlockPageSize = 10
	}
	if c.Execution.ActionPageSize == 0 {
		c.Execution.ActionPageSize = 50
	}
	if c.Execution.SuiteFailurePolicy == "" {
		c.Execution.SuiteFailurePolicy = "continue"
	}
	if c.Execution.CaseFailurePolicy == "" {
		c.Execution.CaseFailurePolicy = "abort"
	}
	if c.Execution.RunStatus == "" {
		c.Execution.RunStatus = "reduce"
	}
	if c.Evidence.Bucket == "" {
		c.Evidence.Bucket = "orca-evidence"
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	for name, policy := range map[string]string{
		"suite_failure_policy": c.Execution.SuiteFailurePolicy,
		"case_failure_policy":  c.Execution.CaseFailurePolicy,
	} {
		if policy != "continue" && policy != "abort" {
			return fmt.Errorf("invalid execution.%s %q: want continue or abort", name, policy)
		}
	}
	if c.Execution.RunStatus != "reduce" && c.Execution.RunStatus != "always-completed" {
		return fmt.Errorf("invalid execution.run_status %q: want reduce or always-completed", c.Execution.RunStatus)
	}
	if c.Execution.SuiteBlockPageSize < 0 || c.Execution.CaseBlockPageSize < 0 || c.Execution.ActionPageSize < 0 {
		return fmt.Errorf("execution page sizes must be positive")
	}
	if c.Evidence.Enabled && c.Evidence.Endpoint == "" {
		return fmt.Errorf("evidence.endpoint is required when evidence is enabled")
	}
	return nil
}

// GetAddr 获取服务器监听地址
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Timeout returns the per-request WebDriver timeout.
func (c *DriverConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BusyTimeout returns the sqlite lock wait.
func (c *DatabaseConfig) BusyTimeout() time.Duration {
	return time.Duration(c.BusyTimeoutSeconds) * time.Second
}

// RunTimeout returns the whole-run timeout, zero when disabled.
func (c *ExecutionConfig) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutSeconds) * time.Second
}
