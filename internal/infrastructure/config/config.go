package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 环境变量名
const (
	EnvHTTPHost          = "SECONDBRAIN_HTTP_HOST"
	EnvHTTPPort          = "SECONDBRAIN_HTTP_PORT"
	EnvDBPath            = "SECONDBRAIN_DB_PATH"
	EnvLLMBaseURL        = "SECONDBRAIN_LLM_BASE_URL"
	EnvLLMAPIKey         = "SECONDBRAIN_LLM_API_KEY"
	EnvLLMModel          = "SECONDBRAIN_LLM_MODEL"
	EnvEmbeddingBaseURL  = "SECONDBRAIN_EMBEDDING_BASE_URL"
	EnvEmbeddingAPIKey   = "SECONDBRAIN_EMBEDDING_API_KEY"
	EnvEmbeddingModel    = "SECONDBRAIN_EMBEDDING_MODEL"
	EnvVectorBackend     = "SECONDBRAIN_VECTOR_BACKEND"
	EnvQdrantHost        = "SECONDBRAIN_QDRANT_HOST"
	EnvQdrantPort        = "SECONDBRAIN_QDRANT_PORT"
	EnvRedisAddr         = "SECONDBRAIN_REDIS_ADDR"
	EnvJWTSecret         = "SECONDBRAIN_JWT_SECRET"
	EnvCORSOrigins       = "SECONDBRAIN_CORS_ORIGINS"
	EnvInboxDir          = "SECONDBRAIN_INBOX_DIR"
	EnvMDNSEnabled       = "SECONDBRAIN_MDNS_ENABLED"
	EnvMCPEnabled        = "SECONDBRAIN_MCP_ENABLED"
	configFileName       = "config.yaml"
	dotEnvFileName       = ".env"
	defaultVectorBackend = "memory"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Vector    VectorConfig    `yaml:"vector"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	MCP       MCPConfig       `yaml:"mcp"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `yaml:"host"`
	// HTTPPort 固定端口（形如 ":8000"），同时用于单例锁
	HTTPPort    string   `yaml:"http_port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Addr 返回监听地址
func (c *ServerConfig) Addr() string {
	return c.Host + c.HTTPPort
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Path 为空时使用数据目录下的 secondbrain.db
	Path string `yaml:"path"`
}

// WebSocketConfig WebSocket 配置
type WebSocketConfig struct {
	ReadBufferSize  int `yaml:"read_buffer_size"`
	WriteBufferSize int `yaml:"write_buffer_size"`
}

// LLMConfig 对话模型配置（OpenAI 兼容接口）
type LLMConfig struct {
	BaseURL         string  `yaml:"base_url"`
	APIKey          string  `yaml:"api_key"`
	Model           string  `yaml:"model"`
	Temperature     float64 `yaml:"temperature"`
	MaxRetries      int     `yaml:"max_retries"`
	MaxPromptTokens int     `yaml:"max_prompt_tokens"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
}

// Configured 是否已配置可用的模型
func (c *LLMConfig) Configured() bool {
	return c.BaseURL != "" && c.Model != ""
}

// EmbeddingConfig 向量化模型配置，未配置时使用本地哈希向量
type EmbeddingConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	// Dimensions 本地哈希向量的维度
	Dimensions int `yaml:"dimensions"`
}

// Configured 是否已配置远程向量化服务
func (c *EmbeddingConfig) Configured() bool {
	return c.BaseURL != "" && c.Model != ""
}

// VectorConfig 向量库配置
type VectorConfig struct {
	// Backend memory 或 qdrant
	Backend    string `yaml:"backend"`
	QdrantHost string `yaml:"qdrant_host"`
	QdrantPort int    `yaml:"qdrant_port"`
	Collection string `yaml:"collection"`
	TopK       int    `yaml:"top_k"`
}

// RedisConfig Redis 配置，Addr 为空时使用进程内缓存与锁
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// GraphTTLSeconds 知识图谱缓存时间
	GraphTTLSeconds int `yaml:"graph_ttl_seconds"`
}

// AuthConfig 鉴权配置，JWTSecret 为空时不启用鉴权
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// IngestionConfig 导入配置
type IngestionConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	MaxUploadMB  int `yaml:"max_upload_mb"`
	// PreviewChars 上传响应中返回给查看器的最大字符数
	PreviewChars int `yaml:"preview_chars"`
	// InboxDir 自动导入目录，为空时不启用
	InboxDir     string `yaml:"inbox_dir"`
	FetchTimeout int    `yaml:"fetch_timeout_seconds"`
}

// DiscoveryConfig 局域网服务发现配置
type DiscoveryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	InstanceName string `yaml:"instance_name"`
}

// MCPConfig MCP 服务配置
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "127.0.0.1",
			HTTPPort:    ":8000",
			CORSOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		},
		Database: DatabaseConfig{
			Path: "",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		LLM: LLMConfig{
			Model:           "",
			Temperature:     0,
			MaxRetries:      2,
			MaxPromptTokens: 6000,
			TimeoutSeconds:  60,
		},
		Embedding: EmbeddingConfig{
			Dimensions: 384,
		},
		Vector: VectorConfig{
			Backend:    defaultVectorBackend,
			QdrantHost: "localhost",
			QdrantPort: 6334,
			Collection: "secondbrain_chunks",
			TopK:       4,
		},
		Redis: RedisConfig{
			GraphTTLSeconds: 600,
		},
		Ingestion: IngestionConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			MaxUploadMB:  25,
			PreviewChars: 20000,
			FetchTimeout: 20,
		},
		Discovery: DiscoveryConfig{
			Enabled:      false,
			InstanceName: "SecondBrain",
		},
		MCP: MCPConfig{
			Enabled: true,
		},
	}
}

// NewConfig 创建配置
// 依次叠加：默认值、数据目录下的 config.yaml、工作目录下的 .env、环境变量
// 配置文件损坏时保留默认值并继续运行
func NewConfig() *Config {
	cfg, err := Load(filepath.Join(GetDataDir(), configFileName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v, falling back to defaults\n", err)
		cfg = Default()
		cfg.applyEnv()
	}
	return cfg
}

// Load 从指定 YAML 文件加载配置，文件不存在不视为错误
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// .env 不覆盖已存在的环境变量
	_ = godotenv.Load(dotEnvFileName)

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// applyEnv 用环境变量覆盖配置
func (c *Config) applyEnv() {
	setString(&c.Server.Host, EnvHTTPHost)
	if port := os.Getenv(EnvHTTPPort); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		c.Server.HTTPPort = port
	}
	if origins := os.Getenv(EnvCORSOrigins); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}
	setString(&c.Database.Path, EnvDBPath)
	setString(&c.LLM.BaseURL, EnvLLMBaseURL)
	setString(&c.LLM.APIKey, EnvLLMAPIKey)
	setString(&c.LLM.Model, EnvLLMModel)
	setString(&c.Embedding.BaseURL, EnvEmbeddingBaseURL)
	setString(&c.Embedding.APIKey, EnvEmbeddingAPIKey)
	setString(&c.Embedding.Model, EnvEmbeddingModel)
	setString(&c.Vector.Backend, EnvVectorBackend)
	setString(&c.Vector.QdrantHost, EnvQdrantHost)
	setInt(&c.Vector.QdrantPort, EnvQdrantPort)
	setString(&c.Redis.Addr, EnvRedisAddr)
	setString(&c.Auth.JWTSecret, EnvJWTSecret)
	setString(&c.Ingestion.InboxDir, EnvInboxDir)
	setBool(&c.Discovery.Enabled, EnvMDNSEnabled)
	setBool(&c.MCP.Enabled, EnvMCPEnabled)
}

// normalize 修正非法取值
func (c *Config) normalize() {
	d := Default()
	if c.Ingestion.ChunkSize <= 0 {
		c.Ingestion.ChunkSize = d.Ingestion.ChunkSize
	}
	if c.Ingestion.ChunkOverlap < 0 || c.Ingestion.ChunkOverlap >= c.Ingestion.ChunkSize {
		c.Ingestion.ChunkOverlap = c.Ingestion.ChunkSize / 5
	}
	if c.Ingestion.MaxUploadMB <= 0 {
		c.Ingestion.MaxUploadMB = d.Ingestion.MaxUploadMB
	}
	if c.LLM.MaxRetries < 0 {
		c.LLM.MaxRetries = 0
	}
	if c.Vector.TopK <= 0 {
		c.Vector.TopK = d.Vector.TopK
	}
	c.Vector.Backend = strings.ToLower(strings.TrimSpace(c.Vector.Backend))
	if c.Vector.Backend == "" {
		c.Vector.Backend = defaultVectorBackend
	}
}

// ResolveDBPath 返回数据库文件路径
func (c *DatabaseConfig) ResolveDBPath() string {
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(GetDataDir(), "secondbrain.db")
}

// NewDatabaseConfig 创建数据库配置
func NewDatabaseConfig(cfg *Config) *DatabaseConfig {
	return &cfg.Database
}

// NewServerConfig 创建服务器配置
func NewServerConfig(cfg *Config) *ServerConfig {
	return &cfg.Server
}

// NewWebSocketConfig 创建 WebSocket 配置
func NewWebSocketConfig(cfg *Config) *WebSocketConfig {
	return &cfg.WebSocket
}

// NewLLMConfig 创建对话模型配置
func NewLLMConfig(cfg *Config) *LLMConfig {
	return &cfg.LLM
}

// NewEmbeddingConfig 创建向量化配置
func NewEmbeddingConfig(cfg *Config) *EmbeddingConfig {
	return &cfg.Embedding
}

// NewVectorConfig 创建向量库配置
func NewVectorConfig(cfg *Config) *VectorConfig {
	return &cfg.Vector
}

// NewRedisConfig 创建 Redis 配置
func NewRedisConfig(cfg *Config) *RedisConfig {
	return &cfg.Redis
}

// NewAuthConfig 创建鉴权配置
func NewAuthConfig(cfg *Config) *AuthConfig {
	return &cfg.Auth
}

// NewIngestionConfig 创建导入配置
func NewIngestionConfig(cfg *Config) *IngestionConfig {
	return &cfg.Ingestion
}

// NewDiscoveryConfig 创建服务发现配置
func NewDiscoveryConfig(cfg *Config) *DiscoveryConfig {
	return &cfg.Discovery
}

// NewMCPConfig 创建 MCP 配置
func NewMCPConfig(cfg *Config) *MCPConfig {
	return &cfg.MCP
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
