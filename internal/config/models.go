package config

// LLMConfig represents the configuration for the language service provider
type LLMConfig struct {
	Provider string
	Timeout  string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI-compatible services
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// StoreConfig represents the configuration for the contact/history store
type StoreConfig struct {
	Type           string
	SQLitePath     string
	MySQLDSN       string
	ArchiveEnabled bool
}

// ServerConfig represents the configuration for the SMTP filter front-end
type ServerConfig struct {
	ListenAddress         string
	RelayAddress          string
	RelayPort             int
	RelayEnabled          bool
	ScoreHeader           string
	LevelHeader           string
	ReasonHeader          string
	TagCriticalSubject    bool
	CriticalSubjectPrefix string
}

// GetLLM returns the language service configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
		Timeout:  c.GetString("llm.timeout"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI-compatible configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetStore returns the store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:           c.GetString("store.type"),
		SQLitePath:     c.GetString("store.sqlite_path"),
		MySQLDSN:       c.GetString("store.mysql_dsn"),
		ArchiveEnabled: c.GetBool("store.archive_enabled"),
	}
}

// GetServer returns the SMTP filter configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress:         c.GetString("server.listen_address"),
		RelayAddress:          c.GetString("server.relay_address"),
		RelayPort:             c.GetInt("server.relay_port"),
		RelayEnabled:          c.GetBool("server.relay_enabled"),
		ScoreHeader:           c.GetString("server.headers.score"),
		LevelHeader:           c.GetString("server.headers.level"),
		ReasonHeader:          c.GetString("server.headers.reason"),
		TagCriticalSubject:    c.GetBool("server.tag_critical_subject"),
		CriticalSubjectPrefix: c.GetString("server.critical_subject_prefix"),
	}
}
