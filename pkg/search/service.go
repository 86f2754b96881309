package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"datasense-be/internal/pkg/logger"
	"datasense-be/pkg/store"

	discoveryengine "cloud.google.com/go/discoveryengine/apiv1"
	"cloud.google.com/go/discoveryengine/apiv1/discoveryenginepb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Searcher returns documents relevant to a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]store.Document, error)
}

type Config struct {
	ProjectNumber string
	Location      string
	EngineID      string
	PageSize      int32
	Timeout       time.Duration
	// CredentialsFile is a service account key. Empty uses application
	// default credentials.
	CredentialsFile string
}

// ServingConfig is the default serving config resource name of an engine.
func (c Config) ServingConfig() string {
	return fmt.Sprintf(
		"projects/%s/locations/%s/collections/default_collection/engines/%s/servingConfigs/default_config",
		c.ProjectNumber, c.Location, c.EngineID,
	)
}

// Endpoint is empty for the global location, which uses the SDK default.
func (c Config) Endpoint() string {
	if c.Location == "" || c.Location == "global" {
		return ""
	}
	return fmt.Sprintf("%s-discoveryengine.googleapis.com:443", c.Location)
}

// Service queries a Vertex AI Search engine.
type Service struct {
	client *discoveryengine.SearchClient
	cfg    Config
	logger logger.ILogger
}

func NewService(ctx context.Context, cfg Config, log logger.ILogger) (*Service, error) {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}

	var opts []option.ClientOption
	if endpoint := cfg.Endpoint(); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if cfg.CredentialsFile != "" {
		creds, err := LoadCredentials(ctx, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	client, err := discoveryengine.NewSearchClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create discovery engine client: %w", err)
	}

	log.Info("DocumentSearch", "Search service configured", map[string]interface{}{
		"serving_config": cfg.ServingConfig(),
	})
	return &Service{client: client, cfg: cfg, logger: log}, nil
}

// LoadCredentials reads a service account key scoped for Discovery Engine.
func LoadCredentials(ctx context.Context, path string) (*google.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read search credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("parse search credentials: %w", err)
	}
	return creds, nil
}

func (s *Service) Close() error {
	return s.client.Close()
}

func (s *Service) Search(ctx context.Context, query string) ([]store.Document, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	it := s.client.Search(ctx, BuildRequest(s.cfg, query))

	documents := make([]store.Document, 0, s.cfg.PageSize)
	for len(documents) < int(s.cfg.PageSize) {
		result, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document search: %w", err)
		}

		derived := result.GetDocument().GetDerivedStructData()
		if derived == nil {
			continue
		}
		documents = append(documents, ParseDerivedData(derived.AsMap(), s.logger))
	}

	s.logger.Debug("DocumentSearch", "Document search completed", map[string]interface{}{
		"query":   query,
		"results": len(documents),
	})
	return documents, nil
}

// BuildRequest returns the search request with snippets, extractive segments,
// a cited summary, automatic query expansion and spell correction enabled.
func BuildRequest(cfg Config, query string) *discoveryenginepb.SearchRequest {
	return &discoveryenginepb.SearchRequest{
		ServingConfig: cfg.ServingConfig(),
		Query:         query,
		PageSize:      cfg.PageSize,
		ContentSearchSpec: &discoveryenginepb.SearchRequest_ContentSearchSpec{
			SnippetSpec: &discoveryenginepb.SearchRequest_ContentSearchSpec_SnippetSpec{
				ReturnSnippet: true,
			},
			ExtractiveContentSpec: &discoveryenginepb.SearchRequest_ContentSearchSpec_ExtractiveContentSpec{
				MaxExtractiveSegmentCount: 5,
			},
			SummarySpec: &discoveryenginepb.SearchRequest_ContentSearchSpec_SummarySpec{
				SummaryResultCount:           5,
				IncludeCitations:             true,
				IgnoreAdversarialQuery:       true,
				IgnoreNonSummarySeekingQuery: true,
			},
		},
		QueryExpansionSpec: &discoveryenginepb.SearchRequest_QueryExpansionSpec{
			Condition: discoveryenginepb.SearchRequest_QueryExpansionSpec_AUTO,
		},
		SpellCorrectionSpec: &discoveryenginepb.SearchRequest_SpellCorrectionSpec{
			Mode: discoveryenginepb.SearchRequest_SpellCorrectionSpec_AUTO,
		},
	}
}
