package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"chatbot-backend/internal/models"
	"chatbot-backend/internal/repository"
)

const historyCacheTTL = 5 * time.Minute

// generator is the slice of AIService the chat pipeline needs.
type generator interface {
	Generate(ctx context.Context, modelAlias, message string) (string, string, error)
}

// ChatService runs the chat turn pipeline: generate a reply, persist the
// turn, and keep the per-user history cache coherent.
type ChatService struct {
	chatRepo *repository.ChatRepo
	ai       generator
	redis    *redis.Client
}

func NewChatService(chatRepo *repository.ChatRepo, ai generator, redisClient *redis.Client) *ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		ai:       ai,
		redis:    redisClient,
	}
}

func (s *ChatService) Send(ctx context.Context, userID uuid.UUID, req models.ChatRequest) (*models.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, &ValidationError{Fields: map[string]string{"message": "Message is required"}}
	}

	reply, usedModel, err := s.ai.Generate(ctx, req.Model, req.Message)
	if err != nil {
		return nil, err
	}

	turn := &models.ChatTurn{
		UserID:   userID,
		Message:  req.Message,
		Response: reply,
		Model:    usedModel,
	}
	if err := s.chatRepo.Create(ctx, turn); err != nil {
		return nil, err
	}

	// The cached list is stale now
	s.invalidateCache(ctx, userID)

	return &models.ChatResponse{
		Response:  turn.Response,
		Model:     turn.Model,
		Timestamp: turn.Timestamp,
	}, nil
}

// History returns every turn for the user, newest first. Reads go through a
// short-lived Redis cache; a cache miss or error falls back to Postgres.
func (s *ChatService) History(ctx context.Context, userID uuid.UUID) ([]models.ChatTurn, error) {
	key := historyCacheKey(userID)

	if cached, err := s.redis.Get(ctx, key).Result(); err == nil {
		var turns []models.ChatTurn
		if err := json.Unmarshal([]byte(cached), &turns); err == nil {
			return turns, nil
		}
		s.redis.Del(ctx, key)
	}

	turns, err := s.chatRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(turns); err == nil {
		if err := s.redis.Set(ctx, key, data, historyCacheTTL).Err(); err != nil {
			log.Printf("Failed to cache chat history for user %s: %v", userID, err)
		}
	}

	return turns, nil
}

// DeleteHistory removes every turn for the user. An empty history is a
// harmless no-op.
func (s *ChatService) DeleteHistory(ctx context.Context, userID uuid.UUID) error {
	deleted, err := s.chatRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}

	s.invalidateCache(ctx, userID)

	log.Printf("Deleted %d chat turns for user %s", deleted, userID)
	return nil
}

func (s *ChatService) invalidateCache(ctx context.Context, userID uuid.UUID) {
	if err := s.redis.Del(ctx, historyCacheKey(userID)).Err(); err != nil {
		log.Printf("Failed to invalidate chat history cache for user %s: %v", userID, err)
	}
}

func historyCacheKey(userID uuid.UUID) string {
	return "chat_history:" + userID.String()
}
