package cli

import (
	"fmt"
	"time"

	"healthrag/internal/blob"
	"healthrag/internal/chunker"
	"healthrag/internal/config"
	"healthrag/internal/domain"
	"healthrag/internal/embedding/azopenai"
	"healthrag/internal/embedding/tfidf"
	"healthrag/internal/generator"
	"healthrag/internal/service"
	"healthrag/internal/summarizer"
	"healthrag/internal/vectorstore"
	"healthrag/internal/vectorstore/azsearch"
	"healthrag/internal/vectorstore/memory"
	"healthrag/internal/vectorstore/qdrant"
	"healthrag/internal/vectorstore/sqlite"
)

// Component assembly from config, one switch per concern.

func buildBlobStore(cfg *config.AppConfig) (*blob.Store, error) {
	return blob.NewStore(blob.Config{
		ConnectionStringEnv: cfg.Blob.ConnectionStringEnv,
		ContainerEnv:        cfg.Blob.ContainerEnv,
		DefaultContainer:    cfg.Blob.DefaultContainer,
	})
}

func buildChunker(cfg *config.AppConfig) (domain.Chunker, error) {
	switch cfg.Chunker.Type {
	case "window", "":
		return chunker.NewWindowChunker(cfg.Chunker.WindowSize, cfg.Chunker.Overlap)
	case "sentence":
		return chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences), nil
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}
}

func buildEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "azopenai", "":
		return azopenai.NewClient(azopenai.Config{
			EndpointEnv: cfg.AzureOpenAI.EndpointEnv,
			APIKeyEnv:   cfg.AzureOpenAI.APIKeyEnv,
			Deployment:  cfg.AzureOpenAI.EmbeddingDeployment,
			APIVersion:  cfg.AzureOpenAI.APIVersion,
			Timeout:     time.Duration(cfg.AzureOpenAI.TimeoutSecs) * time.Second,
		})
	case "tfidf":
		return tfidf.NewEmbedder(), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func buildVectorStore(cfg *config.AppConfig) (vectorstore.Storage, error) {
	switch cfg.VectorStore.Type {
	case "azsearch", "":
		az := cfg.VectorStore.AzSearch
		if az == nil {
			az = &config.AzureSearchConfig{}
		}
		return azsearch.NewStorage(azsearch.Config{
			EndpointEnv: az.EndpointEnv,
			APIKeyEnv:   az.APIKeyEnv,
			IndexEnv:    az.IndexEnv,
			APIVersion:  az.APIVersion,
			Timeout:     time.Duration(az.TimeoutSecs) * time.Second,
		})
	case "sqlite":
		path := ""
		if cfg.VectorStore.SQLite != nil {
			path = cfg.VectorStore.SQLite.Path
		}
		return sqlite.NewStorage(path)
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKeyEnv:  cfg.VectorStore.Qdrant.APIKeyEnv,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	case "memory":
		return memory.NewStorage(), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
}

func buildGenerator(cfg *config.AppConfig) (domain.Generator, error) {
	switch cfg.Generator.Type {
	case "azopenai", "":
		return generator.NewClient(generator.Config{
			EndpointEnv: cfg.AzureOpenAI.EndpointEnv,
			APIKeyEnv:   cfg.AzureOpenAI.APIKeyEnv,
			Deployment:  cfg.AzureOpenAI.ChatDeployment,
			APIVersion:  cfg.AzureOpenAI.APIVersion,
			Timeout:     time.Duration(cfg.AzureOpenAI.TimeoutSecs) * time.Second,
		})
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown generator: %s", cfg.Generator.Type)
	}
}

func buildService(cfg *config.AppConfig) (*service.RAGService, error) {
	source, err := buildBlobStore(cfg)
	if err != nil {
		return nil, err
	}
	ch, err := buildChunker(cfg)
	if err != nil {
		return nil, err
	}
	emb, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildVectorStore(cfg)
	if err != nil {
		return nil, err
	}
	gen, err := buildGenerator(cfg)
	if err != nil {
		return nil, err
	}
	return service.NewRAGService(source, ch, emb, store, gen, summarizer.NewFrequencySummarizer(), cfg.Generator.MaxSentences), nil
}
