// Package service 提供了推荐请求的编排逻辑。
package service

import (
	"context"
	"skillsync-go/internal/model"
	"skillsync-go/internal/repository"
	"skillsync-go/pkg/log"
	"time"
)

// RecommendService 是组合根的调用契约：抽取 → 混合搜索 → 差距分析。
// 放宽过滤条件的重试是产品级决策，因此放在这一层而不是搜索引擎内部。
type RecommendService interface {
	Recommend(ctx context.Context, rawText string, k int) (*model.RecommendResponse, error)
}

type recommendService struct {
	extractionService ExtractionService
	searchService     SearchService
	gapService        GapAnalysisService
	historyRepo       repository.HistoryRepository
}

// NewRecommendService 创建一个新的 RecommendService 实例。
func NewRecommendService(
	extractionService ExtractionService,
	searchService SearchService,
	gapService GapAnalysisService,
	historyRepo repository.HistoryRepository,
) RecommendService {
	return &recommendService{
		extractionService: extractionService,
		searchService:     searchService,
		gapService:        gapService,
		historyRepo:       historyRepo,
	}
}

// Recommend 顺序执行推荐流水线。各阶段严格串行：搜索的查询文本来自抽取，
// 差距分析的职位描述来自最高分匹配，没有可并行的独立数据。
func (s *recommendService) Recommend(ctx context.Context, rawText string, k int) (*model.RecommendResponse, error) {
	// 1. 单趟抽取简历档案
	log.Info("[RecommendService] 步骤1: 抽取候选人档案")
	profile, degraded, err := s.extractionService.ExtractProfile(ctx, rawText)
	if err != nil {
		return nil, err
	}
	if degraded {
		log.Warnf("[RecommendService] 抽取走了降级路径, identity: %s", profile.Identity)
	}

	// 2. 带过滤条件的混合搜索
	log.Info("[RecommendService] 步骤2: 执行带过滤的混合搜索")
	activeFilters := ActiveFilters(profile.Filters)
	matches, err := s.searchService.SearchJobs(ctx, profile.Summary, k, profile.Filters)
	if err != nil {
		return nil, err
	}
	filtersApplied := activeFilters

	// 2a. 过滤过严导致零结果时放宽过滤重试一次，并在响应中如实上报
	if len(matches) == 0 && len(activeFilters) > 0 {
		log.Warnf("[RecommendService] 过滤搜索零结果, 放宽过滤重试, 原过滤: %v", activeFilters)
		matches, err = s.searchService.SearchJobs(ctx, profile.Summary, k, nil)
		if err != nil {
			return nil, err
		}
		filtersApplied = map[string]string{}
	}

	// 2b. 放宽后仍零结果：返回完整的"无匹配"响应，而不是错误
	if len(matches) == 0 {
		log.Warnf("[RecommendService] 没有任何匹配职位, identity: %s", profile.Identity)
		return &model.RecommendResponse{
			Identity:          profile.Identity,
			FiltersApplied:    filtersApplied,
			TopRecommendation: struct{}{},
			AIAnalysis:        model.NoMatchesReport(),
			OtherMatches:      []model.SearchResult{},
		}, nil
	}

	// 3. 只对最高分匹配做差距分析，控制单请求延迟
	log.Info("[RecommendService] 步骤3: 对最高分匹配执行差距分析")
	top := matches[0]
	report, err := s.gapService.AnalyzeGap(ctx, profile.Summary, top.EmbeddingText)
	if err != nil {
		// 没有安全回退值的失败向请求边界传播
		return nil, err
	}

	// 4. 记录推荐历史（尽力而为，失败只告警）
	// 使用后台上下文：即使原始请求随后被取消，也希望已产出的记录保存成功
	entry := model.RecommendationEntry{
		JobID:           top.Metadata.JobID,
		Title:           top.Metadata.Title,
		CompanyName:     top.Metadata.CompanyName,
		SimilarityScore: top.SimilarityScore,
		FiltersApplied:  filtersApplied,
		Degraded:        degraded,
		Timestamp:       time.Now(),
	}
	if err := s.historyRepo.AppendEntry(context.Background(), profile.Identity, entry); err != nil {
		log.Errorf("[RecommendService] 保存推荐历史失败: %v", err)
	}

	log.Infof("[RecommendService] 推荐流水线完成, identity: %s, top_job: %s", profile.Identity, top.Metadata.JobID)
	return &model.RecommendResponse{
		Identity:          profile.Identity,
		FiltersApplied:    filtersApplied,
		TopRecommendation: top,
		AIAnalysis:        *report,
		OtherMatches:      matches[1:],
	}, nil
}
