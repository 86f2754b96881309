package bootstrap

import (
	"context"
	"fmt"

	"datasense-be/internal/config"
	"datasense-be/internal/controller"
	"datasense-be/internal/handler"
	"datasense-be/internal/pkg/logger"
	"datasense-be/internal/repository/unitofwork"
	"datasense-be/internal/service"
	"datasense-be/internal/websocket"
	"datasense-be/pkg/embedding"
	"datasense-be/pkg/llm/factory"
	"datasense-be/pkg/llm/gemini"
	"datasense-be/pkg/rag/classifier"
	"datasense-be/pkg/rag/executor"
	"datasense-be/pkg/rag/premium"
	"datasense-be/pkg/rag/responder"
	"datasense-be/pkg/rag/retrieval"
	ragSearch "datasense-be/pkg/rag/search"
	"datasense-be/pkg/rag/synthesizer"
	"datasense-be/pkg/search"

	pktNats "datasense-be/pkg/nats"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	ChatbotController controller.IChatbotController

	// WebSockets
	ChannelHandler  *handler.ChannelHandler
	ChannelRegistry *websocket.Registry

	// Background work, drained by main on shutdown
	Supervisor *executor.Supervisor

	closers []func() error
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	channelLogger := logger.NewIsolatedLogger(cfg.App.ChannelLogFilePath)

	// 2. Generation service (one client for generation and embeddings)
	genaiClient, err := factory.NewGenAIClient(ctx, factory.ClientConfig{
		Backend:  cfg.Gemini.Backend,
		APIKey:   cfg.Gemini.APIKey,
		Project:  cfg.Gemini.Project,
		Location: cfg.Gemini.Location,
	})
	if err != nil {
		return nil, err
	}
	llmProvider := factory.NewLLMProvider(genaiClient, gemini.Config{
		Model:             cfg.Gemini.Model,
		Temperature:       cfg.Gemini.Temperature,
		TopP:              cfg.Gemini.TopP,
		MaxOutputTokens:   cfg.Gemini.MaxOutputTokens,
		SystemInstruction: cfg.Gemini.SystemInstruction,
		Timeout:           cfg.Gemini.Timeout,
	})
	sysLogger.Info("Bootstrap", "Using LLM provider", map[string]interface{}{
		"backend": cfg.Gemini.Backend,
		"model":   cfg.Gemini.Model,
	})

	embeddingProvider := embedding.NewCachedProvider(
		embedding.NewGeminiProvider(genaiClient, cfg.Gemini.EmbeddingModel, cfg.Database.EmbeddingDimension),
		cfg.Gemini.EmbeddingCacheTTL,
	)

	// 3. Infrastructure
	// Redis
	opt, err := redis.ParseURL(cfg.Infra.RedisURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to parse Redis URL, using direct address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.Infra.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to Redis, search cache will miss", map[string]interface{}{"error": err.Error()})
	}
	c.closers = append(c.closers, rdb.Close)

	// NATS is optional; premium runs without lifecycle events when it is down.
	var eventPublisher premium.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.Infra.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to NATS, premium events disabled", map[string]interface{}{"error": err.Error()})
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, func() error {
			natsPub.Close()
			return nil
		})
	}

	// 4. Retrieval
	videoSearch := ragSearch.NewOrchestrator(embeddingProvider, uowFactory, sysLogger, ragSearch.Config{
		TopK: cfg.Premium.TopK,
	})

	documentSearch, err := search.NewService(ctx, search.Config{
		ProjectNumber:   cfg.Search.ProjectNumber,
		Location:        cfg.Search.Location,
		EngineID:        cfg.Search.EngineID,
		PageSize:        cfg.Search.PageSize,
		Timeout:         cfg.Search.Timeout,
		CredentialsFile: cfg.Search.CredentialsFile,
	}, sysLogger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("document search: %w", err)
	}
	c.closers = append(c.closers, documentSearch.Close)

	fanIn := retrieval.NewFanIn(
		videoSearch,
		search.NewCachedSearcher(documentSearch, rdb, cfg.Search.CacheTTL, sysLogger),
		cfg.Premium.RetrievalTimeout,
		sysLogger,
	)

	// 5. Premium pipeline
	registry := websocket.NewRegistry(channelLogger)
	synth := synthesizer.New(llmProvider, sysLogger, synthesizer.Config{
		Temperature: cfg.Premium.SynthesisTemperature,
	})
	premiumOrchestrator := premium.NewOrchestrator(registry, fanIn, synth, eventPublisher, sysLogger)
	supervisor := executor.NewSupervisor(cfg.Premium.TaskTimeout, sysLogger)

	// 6. Services
	chatbotService := service.NewChatbotService(
		classifier.New(llmProvider, sysLogger),
		responder.New(llmProvider, sysLogger),
		premiumOrchestrator,
		supervisor,
		cfg.Gemini.ClassifierPolicy,
		sysLogger,
	)

	// 7. Controllers & handlers
	c.ChatbotController = controller.NewChatbotController(chatbotService)
	c.ChannelHandler = handler.NewChannelHandler(registry, channelLogger)
	c.ChannelRegistry = registry
	c.Supervisor = supervisor
	c.closers = append(c.closers, channelLogger.Sync)

	return c, nil
}

// Close releases infrastructure clients in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("Bootstrap", "Failed to release resource", map[string]interface{}{"error": err.Error()})
		}
	}
	c.closers = nil
}
