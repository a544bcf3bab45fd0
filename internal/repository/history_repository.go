package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"skillsync-go/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
)

// HistoryRepository 定义了候选人推荐历史记录的操作接口。
type HistoryRepository interface {
	AppendEntry(ctx context.Context, identity string, entry model.RecommendationEntry) error
	GetRecent(ctx context.Context, identity string) ([]model.RecommendationEntry, error)
}

type redisHistoryRepository struct {
	redisClient *redis.Client
}

// NewHistoryRepository 创建一个新的 HistoryRepository 实例。
func NewHistoryRepository(redisClient *redis.Client) HistoryRepository {
	return &redisHistoryRepository{redisClient: redisClient}
}

func historyKey(identity string) string {
	return fmt.Sprintf("candidate:%s:history", identity)
}

// AppendEntry 把一条推荐记录追加到候选人的历史列表。
func (r *redisHistoryRepository) AppendEntry(ctx context.Context, identity string, entry model.RecommendationEntry) error {
	key := historyKey(identity)
	history, err := r.GetRecent(ctx, identity)
	if err != nil {
		return err
	}

	history = append(history, entry)
	// 保留最近 20 条
	if len(history) > 20 {
		history = history[len(history)-20:]
	}
	jsonData, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation history: %w", err)
	}
	err = r.redisClient.Set(ctx, key, jsonData, 7*24*time.Hour).Err()
	if err != nil {
		return fmt.Errorf("failed to set recommendation history: %w", err)
	}
	return nil
}

// GetRecent 从 Redis 获取候选人最近的推荐记录。
func (r *redisHistoryRepository) GetRecent(ctx context.Context, identity string) ([]model.RecommendationEntry, error) {
	key := historyKey(identity)
	jsonData, err := r.redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return []model.RecommendationEntry{}, nil // No history yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation history: %w", err)
	}
	var entries []model.RecommendationEntry
	err = json.Unmarshal([]byte(jsonData), &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal recommendation history: %w", err)
	}
	return entries, nil
}
