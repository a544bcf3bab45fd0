package service

import (
	"context"
	"skillsync-go/internal/model"
	"skillsync-go/internal/repository"
)

// HistoryService 定义了推荐历史查询操作。
type HistoryService interface {
	GetRecentRecommendations(ctx context.Context, identity string) ([]model.RecommendationEntry, error)
}

type historyService struct {
	historyRepo repository.HistoryRepository
}

// NewHistoryService 创建一个新的 HistoryService 实例。
func NewHistoryService(historyRepo repository.HistoryRepository) HistoryService {
	return &historyService{historyRepo: historyRepo}
}

// GetRecentRecommendations 返回候选人最近的推荐记录（最多 20 条，从未推荐时为空列表）。
func (s *historyService) GetRecentRecommendations(ctx context.Context, identity string) ([]model.RecommendationEntry, error) {
	return s.historyRepo.GetRecent(ctx, identity)
}
