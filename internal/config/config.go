// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingAPIKey 在没有配置模型 API 凭证时返回，服务应当拒绝启动。
var ErrMissingAPIKey = errors.New("llm api key is not configured (set llm.api_key or GEMINI_API_KEY)")

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Agent       AgentConfig       `mapstructure:"agent"`
	Attachments AttachmentsConfig `mapstructure:"attachments"`
	Prompt      PromptConfig      `mapstructure:"prompt"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LLMConfig 存储大语言模型相关的配置。
type LLMConfig struct {
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Model      string              `mapstructure:"model"`
	RiskModel  string              `mapstructure:"risk_model"`
	Timeout    time.Duration       `mapstructure:"timeout"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
}

// LLMGenerationConfig 配置生成相关参数（可选，零值表示使用模型默认值）。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// AgentConfig 控制三种代理操作的行为。
type AgentConfig struct {
	// HistoryLimit 是每次请求携带的最近历史轮数，0 表示不截断。
	HistoryLimit    int  `mapstructure:"history_limit"`
	APAAsSuggestion bool `mapstructure:"apa_as_suggestion"`
}

// AttachmentsConfig 限制上传附件。
type AttachmentsConfig struct {
	MaxBytes     int64    `mapstructure:"max_bytes"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// PromptConfig 允许覆盖内置的提示词，留空则使用默认值。
type PromptConfig struct {
	System   string `mapstructure:"system"`
	Welcome  string `mapstructure:"welcome"`
	APA      string `mapstructure:"apa"`
	Risk     string `mapstructure:"risk"`
	ErrorMsg string `mapstructure:"error_message"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8081")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.risk_model", "gemini-3-pro-preview")
	v.SetDefault("llm.timeout", 120*time.Second)
	v.SetDefault("agent.history_limit", 20)
	v.SetDefault("agent.apa_as_suggestion", false)
	v.SetDefault("attachments.max_bytes", 20<<20)
	v.SetDefault("attachments.allowed_types", []string{"application/pdf", "image/*"})
}

// Load 从指定路径读取 YAML 配置（路径为空时只使用默认值与环境变量），并做校验。
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SCHOLAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 兼容 Google 官方 SDK 的环境变量名
	if err := v.BindEnv("llm.api_key", "SCHOLAR_LLM_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("绑定环境变量失败: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Validate 检查启动所需的配置项。
func (c *Config) Validate() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.LLM.Model == "" || c.LLM.RiskModel == "" {
		return errors.New("llm.model and llm.risk_model must not be empty")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %s", c.LLM.Timeout)
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be one of debug, release, test, got %q", c.Server.Mode)
	}
	if c.Agent.HistoryLimit < 0 {
		return fmt.Errorf("agent.history_limit must not be negative, got %d", c.Agent.HistoryLimit)
	}
	if c.Attachments.MaxBytes <= 0 {
		return fmt.Errorf("attachments.max_bytes must be positive, got %d", c.Attachments.MaxBytes)
	}
	return nil
}
