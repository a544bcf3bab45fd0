// Package service 提供了职位混合搜索相关的业务逻辑。
package service

import (
	"context"
	"fmt"
	"skillsync-go/internal/model"
	"skillsync-go/pkg/embedding"
	"skillsync-go/pkg/es"
	"skillsync-go/pkg/log"
	"sort"
	"strings"
)

// overFetchFactor 是截断前向索引多取的倍数，给过滤与重排留出余量，
// 避免为补足结果发起第二轮往返。
const overFetchFactor = 3

// SearchService 接口定义了混合搜索操作。
// 约定：按传入的过滤条件原样搜索，不做隐藏重试；放宽过滤的决策在编排层。
type SearchService interface {
	SearchJobs(ctx context.Context, query string, k int, filters map[string]string) ([]model.SearchResult, error)
}

type searchService struct {
	embeddingClient embedding.Client
	index           es.Searcher
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(embeddingClient embedding.Client, index es.Searcher) SearchService {
	return &searchService{
		embeddingClient: embeddingClient,
		index:           index,
	}
}

// ActiveFilters 计算激活过滤集：丢弃值为空或字面量 "null" 的条件。
// 抽取输出不可靠，这一步保证无意义的过滤值不会约束查询。
func ActiveFilters(filters map[string]string) map[string]string {
	active := make(map[string]string)
	for key, value := range filters {
		if value == "" || value == "null" {
			continue
		}
		active[key] = value
	}
	return active
}

// SearchJobs 执行向量相似度搜索并返回按相似度降序的前 k 条职位。
func (s *searchService) SearchJobs(ctx context.Context, query string, k int, filters map[string]string) ([]model.SearchResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("topK must be at least 1, got %d", k)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query text must not be empty")
	}

	activeFilters := ActiveFilters(filters)
	log.Infof("[SearchService] 开始职位搜索, topK: %d, 激活过滤: %v", k, activeFilters)

	// 1. 向量化查询文本
	queryVector, err := s.embeddingClient.CreateEmbedding(ctx, query)
	if err != nil {
		log.Errorf("[SearchService] 向量化查询失败: %v", err)
		return nil, fmt.Errorf("failed to create query embedding: %w", err)
	}

	// 2. 超量获取 k*3 条候选再截断
	hits, err := s.index.SimilaritySearch(ctx, queryVector, k*overFetchFactor, activeFilters)
	if err != nil {
		log.Errorf("[SearchService] 职位索引查询失败: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	// 3. 距离换算为相似度（similarity = 1 - distance，近似值而非校准概率）
	results := make([]model.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, model.SearchResult{
			Metadata:        hit.Posting.Metadata(),
			SimilarityScore: 1 - hit.Distance,
			EmbeddingText:   hit.Posting.TextContent,
		})
	}

	// 4. 按相似度降序做稳定排序：同分时保持索引的原始返回顺序
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})

	if len(results) > k {
		results = results[:k]
	}
	// 零结果是合法结果，不是错误
	log.Infof("[SearchService] 职位搜索完成, 返回 %d 条结果", len(results))
	return results, nil
}
