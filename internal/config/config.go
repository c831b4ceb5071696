package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AzureOpenAIConfig holds connection details for an Azure OpenAI resource.
// Shared by the embeddings and chat deployments; secrets are referenced by
// the name of the environment variable that carries them.
type AzureOpenAIConfig struct {
	EndpointEnv         string `yaml:"endpoint_env"`
	APIKeyEnv           string `yaml:"api_key_env"`
	APIVersion          string `yaml:"api_version"`
	EmbeddingDeployment string `yaml:"embedding_deployment"`
	ChatDeployment      string `yaml:"chat_deployment"`
	TimeoutSecs         int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects the text embedder implementation.
type EmbedderConfig struct {
	Type string `yaml:"type"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	WindowSize        int    `yaml:"window_size"`
	Overlap           int    `yaml:"overlap"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences"`
}

// AzureSearchConfig contains connection details for an Azure AI Search index.
type AzureSearchConfig struct {
	EndpointEnv string `yaml:"endpoint_env"`
	APIKeyEnv   string `yaml:"api_key_env"`
	IndexEnv    string `yaml:"index_env"`
	APIVersion  string `yaml:"api_version"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// SQLiteConfig locates the local vector database file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type     string             `yaml:"type"`
	AzSearch *AzureSearchConfig `yaml:"azsearch,omitempty"`
	Qdrant   *QdrantConfig      `yaml:"qdrant,omitempty"`
	SQLite   *SQLiteConfig      `yaml:"sqlite,omitempty"`
}

// BlobConfig configures the Azure Blob Storage document source.
type BlobConfig struct {
	ConnectionStringEnv string `yaml:"connection_string_env"`
	ContainerEnv        string `yaml:"container_env"`
	DefaultContainer    string `yaml:"default_container"`
}

// GeneratorConfig selects the answer generator. Type "none" falls back to an
// extractive summary of the retrieved chunks.
type GeneratorConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Blob        BlobConfig        `yaml:"blob"`
	AzureOpenAI AzureOpenAIConfig `yaml:"azure_openai"`
	TopK        int               `yaml:"top_k"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/healthrag/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "healthrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "azopenai"
	}
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = "window"
	}
	if cfg.Chunker.WindowSize == 0 {
		cfg.Chunker.WindowSize = 1000
	}
	if cfg.Chunker.Overlap == 0 {
		cfg.Chunker.Overlap = 200
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "azsearch"
	}
	if cfg.VectorStore.Type == "azsearch" && cfg.VectorStore.AzSearch == nil {
		cfg.VectorStore.AzSearch = &AzureSearchConfig{}
	}
	if cfg.VectorStore.AzSearch != nil {
		if cfg.VectorStore.AzSearch.EndpointEnv == "" {
			cfg.VectorStore.AzSearch.EndpointEnv = "AZURE_SEARCH_ENDPOINT"
		}
		if cfg.VectorStore.AzSearch.APIKeyEnv == "" {
			cfg.VectorStore.AzSearch.APIKeyEnv = "AZURE_SEARCH_API_KEY"
		}
		if cfg.VectorStore.AzSearch.IndexEnv == "" {
			cfg.VectorStore.AzSearch.IndexEnv = "AZURE_SEARCH_INDEX_NAME"
		}
		if cfg.VectorStore.AzSearch.APIVersion == "" {
			cfg.VectorStore.AzSearch.APIVersion = "2024-07-01"
		}
		if cfg.VectorStore.AzSearch.TimeoutSecs == 0 {
			cfg.VectorStore.AzSearch.TimeoutSecs = 30
		}
	}
	if cfg.VectorStore.Qdrant != nil && cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
		cfg.VectorStore.Qdrant.TimeoutSecs = 15
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "azopenai"
	}
	if cfg.Generator.MaxSentences == 0 {
		cfg.Generator.MaxSentences = 5
	}
	if cfg.Blob.ConnectionStringEnv == "" {
		cfg.Blob.ConnectionStringEnv = "AZURE_STORAGE_CONNECTION_STRING"
	}
	if cfg.Blob.ContainerEnv == "" {
		cfg.Blob.ContainerEnv = "AZURE_STORAGE_CONTAINER_NAME"
	}
	if cfg.Blob.DefaultContainer == "" {
		cfg.Blob.DefaultContainer = "health-docs"
	}
	if cfg.AzureOpenAI.EndpointEnv == "" {
		cfg.AzureOpenAI.EndpointEnv = "AZURE_OPENAI_ENDPOINT"
	}
	if cfg.AzureOpenAI.APIKeyEnv == "" {
		cfg.AzureOpenAI.APIKeyEnv = "AZURE_OPENAI_API_KEY"
	}
	if cfg.AzureOpenAI.APIVersion == "" {
		cfg.AzureOpenAI.APIVersion = "2024-10-21"
	}
	if cfg.AzureOpenAI.EmbeddingDeployment == "" {
		cfg.AzureOpenAI.EmbeddingDeployment = "text-embedding-3-small"
	}
	if cfg.AzureOpenAI.ChatDeployment == "" {
		cfg.AzureOpenAI.ChatDeployment = "gpt-4o-mini"
	}
	if cfg.AzureOpenAI.TimeoutSecs == 0 {
		cfg.AzureOpenAI.TimeoutSecs = 30
	}
	if cfg.TopK == 0 {
		cfg.TopK = 3
	}
}
