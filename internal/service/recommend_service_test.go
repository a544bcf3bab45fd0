package service

import (
	"context"
	"errors"
	"skillsync-go/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() *model.CandidateProfile {
	return &model.CandidateProfile{
		Identity: "jane@example.com",
		Filters: map[string]string{
			model.FilterLocation: "Berlin",
			model.FilterWorkType: "null",
		},
		Summary: "Senior Go engineer",
	}
}

func searchResult(jobID string, score float64) model.SearchResult {
	return model.SearchResult{
		Metadata:        model.JobMetadata{JobID: jobID, Title: "Engineer " + jobID, CompanyName: "Acme"},
		SimilarityScore: score,
		EmbeddingText:   "text " + jobID,
	}
}

func TestRecommend_HappyPath(t *testing.T) {
	search := &stubSearch{resultsPerCall: [][]model.SearchResult{
		{searchResult("j1", 0.9), searchResult("j2", 0.8)},
	}}
	gap := &stubGap{report: &model.GapReport{MatchScore: "80", Advice: "keep going"}}
	history := newFakeHistoryRepo()
	svc := NewRecommendService(&stubExtraction{profile: testProfile()}, search, gap, history)

	resp, err := svc.Recommend(context.Background(), "resume text", 3)
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", resp.Identity)
	// 只有有效过滤条件出现在 filters_applied 中
	assert.Equal(t, map[string]string{model.FilterLocation: "Berlin"}, resp.FiltersApplied)
	top, ok := resp.TopRecommendation.(model.SearchResult)
	require.True(t, ok)
	assert.Equal(t, "j1", top.Metadata.JobID)
	assert.Equal(t, "80", resp.AIAnalysis.MatchScore)
	require.Len(t, resp.OtherMatches, 1)
	assert.Equal(t, "j2", resp.OtherMatches[0].Metadata.JobID)

	// 差距分析拿到的是最高分匹配的嵌入文本
	assert.Equal(t, "text j1", gap.lastDescription)

	// 推荐历史已落盘
	entries, _ := history.GetRecent(context.Background(), "jane@example.com")
	require.Len(t, entries, 1)
	assert.Equal(t, "j1", entries[0].JobID)
	assert.False(t, entries[0].Degraded)
}

func TestRecommend_RelaxesFiltersOnZeroResults(t *testing.T) {
	// 第一次（带过滤）为空，第二次（放宽）命中
	search := &stubSearch{resultsPerCall: [][]model.SearchResult{
		{},
		{searchResult("j9", 0.7)},
	}}
	gap := &stubGap{report: &model.GapReport{MatchScore: "60"}}
	svc := NewRecommendService(&stubExtraction{profile: testProfile()}, search, gap, newFakeHistoryRepo())

	resp, err := svc.Recommend(context.Background(), "resume text", 3)
	require.NoError(t, err)

	require.Len(t, search.filterCalls, 2)
	assert.Nil(t, search.filterCalls[1])
	// 放宽后的结果如实上报：filters_applied 为空
	assert.Empty(t, resp.FiltersApplied)
	top, ok := resp.TopRecommendation.(model.SearchResult)
	require.True(t, ok)
	assert.Equal(t, "j9", top.Metadata.JobID)
}

func TestRecommend_NoMatchesAtAll(t *testing.T) {
	search := &stubSearch{resultsPerCall: [][]model.SearchResult{{}, {}}}
	svc := NewRecommendService(&stubExtraction{profile: testProfile()}, search, &stubGap{}, newFakeHistoryRepo())

	resp, err := svc.Recommend(context.Background(), "resume text", 3)
	require.NoError(t, err)

	// 放宽重试也失败：完整的无匹配响应，而不是错误
	require.Len(t, search.filterCalls, 2)
	assert.Equal(t, struct{}{}, resp.TopRecommendation)
	assert.Equal(t, "0%", resp.AIAnalysis.MatchScore)
	assert.Empty(t, resp.OtherMatches)
	assert.Equal(t, "jane@example.com", resp.Identity)
}

func TestRecommend_NoRelaxationWithoutActiveFilters(t *testing.T) {
	profile := testProfile()
	profile.Filters = map[string]string{}
	search := &stubSearch{resultsPerCall: [][]model.SearchResult{{}}}
	svc := NewRecommendService(&stubExtraction{profile: profile}, search, &stubGap{}, newFakeHistoryRepo())

	resp, err := svc.Recommend(context.Background(), "resume text", 3)
	require.NoError(t, err)
	// 没有激活过滤条件时不做第二次搜索
	assert.Len(t, search.filterCalls, 1)
	assert.Equal(t, struct{}{}, resp.TopRecommendation)
}

func TestRecommend_ExtractionErrorPropagates(t *testing.T) {
	svc := NewRecommendService(&stubExtraction{err: ErrEmptyDocument}, &stubSearch{}, &stubGap{}, newFakeHistoryRepo())

	_, err := svc.Recommend(context.Background(), "", 3)
	require.ErrorIs(t, err, ErrEmptyDocument)
}

func TestRecommend_SearchErrorPropagates(t *testing.T) {
	search := &stubSearch{err: ErrIndexUnavailable}
	svc := NewRecommendService(&stubExtraction{profile: testProfile()}, search, &stubGap{}, newFakeHistoryRepo())

	_, err := svc.Recommend(context.Background(), "resume text", 3)
	require.ErrorIs(t, err, ErrIndexUnavailable)
}

func TestRecommend_GapErrorPropagates(t *testing.T) {
	search := &stubSearch{resultsPerCall: [][]model.SearchResult{{searchResult("j1", 0.9)}}}
	gap := &stubGap{err: ErrAnalysisFailed}
	svc := NewRecommendService(&stubExtraction{profile: testProfile()}, search, gap, newFakeHistoryRepo())

	_, err := svc.Recommend(context.Background(), "resume text", 3)
	require.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestRecommend_HistoryFailureIsNotFatal(t *testing.T) {
	search := &stubSearch{resultsPerCall: [][]model.SearchResult{{searchResult("j1", 0.9)}}}
	gap := &stubGap{report: &model.GapReport{MatchScore: "50"}}
	history := newFakeHistoryRepo()
	history.appendErr = errors.New("redis down")
	svc := NewRecommendService(&stubExtraction{profile: testProfile()}, search, gap, history)

	resp, err := svc.Recommend(context.Background(), "resume text", 3)
	require.NoError(t, err)
	assert.Equal(t, "50", resp.AIAnalysis.MatchScore)
}

func TestRecommend_DegradedExtractionRecordedInHistory(t *testing.T) {
	search := &stubSearch{resultsPerCall: [][]model.SearchResult{{searchResult("j1", 0.9)}}}
	gap := &stubGap{report: &model.GapReport{MatchScore: "50"}}
	history := newFakeHistoryRepo()
	svc := NewRecommendService(&stubExtraction{profile: testProfile(), degraded: true}, search, gap, history)

	_, err := svc.Recommend(context.Background(), "resume text", 3)
	require.NoError(t, err)

	entries, _ := history.GetRecent(context.Background(), "jane@example.com")
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Degraded)
}
