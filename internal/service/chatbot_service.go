package service

import (
	"context"
	"fmt"

	"datasense-be/internal/config"
	"datasense-be/internal/dto"
	"datasense-be/internal/pkg/logger"
	"datasense-be/pkg/chat"
	"datasense-be/pkg/rag/executor"
	"datasense-be/pkg/rag/premium"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type TurnClassifier interface {
	Classify(ctx context.Context, history []chat.Turn) (bool, error)
}

type TurnResponder interface {
	Respond(ctx context.Context, history []chat.Turn) (string, error)
}

type PremiumRunner interface {
	Run(ctx context.Context, req premium.Request) premium.Outcome
}

type TaskScheduler interface {
	Go(name string, task executor.Task) error
}

// IChatbotService answers chat turns and schedules premium follow-ups.
type IChatbotService interface {
	Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatbotService struct {
	classifier       TurnClassifier
	responder        TurnResponder
	premium          PremiumRunner
	scheduler        TaskScheduler
	classifierPolicy string
	logger           logger.ILogger
}

func NewChatbotService(
	classifier TurnClassifier,
	responder TurnResponder,
	premiumRunner PremiumRunner,
	scheduler TaskScheduler,
	classifierPolicy string,
	log logger.ILogger,
) IChatbotService {
	return &chatbotService{
		classifier:       classifier,
		responder:        responder,
		premium:          premiumRunner,
		scheduler:        scheduler,
		classifierPolicy: classifierPolicy,
		logger:           log,
	}
}

// Chat appends the user turn, then runs the responder and the classifier
// concurrently. Both must succeed for the turn to succeed, except that the
// not_premium policy turns a classifier failure into premium_applicable=false.
func (s *chatbotService) Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	turn, err := request.Message.Normalize()
	if err != nil {
		return nil, err
	}
	history := chat.AppendTurn(request.ChatHistory, turn)

	var (
		answer            string
		premiumApplicable bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.responder.Respond(gctx, history)
		if err != nil {
			return fmt.Errorf("normal response: %w", err)
		}
		answer = res
		return nil
	})
	g.Go(func() error {
		res, err := s.classifier.Classify(gctx, history)
		if err != nil {
			if s.classifierPolicy == config.ClassifierPolicyNotPremium {
				s.logger.Warn("ChatbotService", "Classification failed, treating turn as not premium", map[string]interface{}{
					"error": err.Error(),
				})
				return nil
			}
			return fmt.Errorf("classification: %w", err)
		}
		premiumApplicable = res
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("ChatbotService", "Chat turn failed", map[string]interface{}{
			"client_id": request.ClientID,
			"error":     err.Error(),
		})
		return nil, err
	}

	if premiumApplicable {
		s.schedulePremium(request.ClientID, turn.Content)
	}

	s.logger.Info("ChatbotService", "Chat turn answered", map[string]interface{}{
		"client_id":          request.ClientID,
		"history_length":     len(history),
		"premium_applicable": premiumApplicable,
	})

	return &dto.ChatResponse{
		ChatHistory:       history,
		GeminiResponse:    answer,
		PremiumApplicable: premiumApplicable,
	}, nil
}

func (s *chatbotService) schedulePremium(clientID, question string) {
	if clientID == "" {
		s.logger.Warn("ChatbotService", "Premium turn without client id, skipping premium response", nil)
		return
	}

	req := premium.Request{
		ID:       uuid.NewString(),
		ClientID: clientID,
		Question: question,
	}
	err := s.scheduler.Go("premium:"+req.ID, func(ctx context.Context) error {
		outcome := s.premium.Run(ctx, req)
		s.logger.Debug("ChatbotService", "Premium run finished", map[string]interface{}{
			"request_id": req.ID,
			"outcome":    string(outcome),
		})
		return nil
	})
	if err != nil {
		s.logger.Warn("ChatbotService", "Premium run not scheduled", map[string]interface{}{
			"request_id": req.ID,
			"error":      err.Error(),
		})
	}
}
