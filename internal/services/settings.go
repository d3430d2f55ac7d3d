package services

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const botIconKey = "settings:bot_icon"

// SettingsService stores small app-wide settings in Redis.
type SettingsService struct {
	redis *redis.Client
}

func NewSettingsService(redisClient *redis.Client) *SettingsService {
	return &SettingsService{redis: redisClient}
}

func (s *SettingsService) SetBotIcon(ctx context.Context, iconURL string) error {
	return s.redis.Set(ctx, botIconKey, iconURL, 0).Err()
}

// GetBotIcon returns the stored icon URL, or "" when none has been set.
func (s *SettingsService) GetBotIcon(ctx context.Context) (string, error) {
	url, err := s.redis.Get(ctx, botIconKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return url, nil
}
