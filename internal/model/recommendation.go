package model

import "time"

// RecommendResponse 定义了一次推荐请求的完整响应结构。
// TopRecommendation 在没有任何匹配时是一个空对象而非 null。
type RecommendResponse struct {
	Identity          string            `json:"identity"`
	FiltersApplied    map[string]string `json:"filters_applied"`
	TopRecommendation any               `json:"top_recommendation"`
	AIAnalysis        GapReport         `json:"ai_analysis"`
	OtherMatches      []SearchResult    `json:"other_matches"`
}

// RecommendationEntry 是写入 Redis 的单条推荐历史记录。
type RecommendationEntry struct {
	JobID           string    `json:"job_id"`
	Title           string    `json:"title"`
	CompanyName     string    `json:"company_name"`
	SimilarityScore float64   `json:"similarity_score"`
	FiltersApplied  map[string]string `json:"filters_applied"`
	Degraded        bool      `json:"degraded"` // 抽取是否走了回退路径
	Timestamp       time.Time `json:"timestamp"`
}
