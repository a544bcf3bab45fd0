package service

import (
	"context"
	"errors"
	"skillsync-go/internal/model"
	"skillsync-go/pkg/es"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredPosting(jobID string, distance float64) es.ScoredPosting {
	return es.ScoredPosting{
		Posting: model.EsJobPosting{
			JobID:       jobID,
			Title:       "Engineer " + jobID,
			TextContent: "text " + jobID,
		},
		Distance: distance,
	}
}

func TestActiveFilters(t *testing.T) {
	active := ActiveFilters(map[string]string{
		model.FilterLocation: "Berlin",
		model.FilterWorkType: "null",
		"other":              "",
	})
	assert.Equal(t, map[string]string{model.FilterLocation: "Berlin"}, active)

	assert.Empty(t, ActiveFilters(nil))
	assert.Empty(t, ActiveFilters(map[string]string{model.FilterLocation: "null"}))
}

func TestSearchJobs_InvalidArgs(t *testing.T) {
	svc := NewSearchService(&fakeEmbedder{}, &fakeIndex{})

	_, err := svc.SearchJobs(context.Background(), "query", 0, nil)
	require.Error(t, err)

	_, err = svc.SearchJobs(context.Background(), "   ", 3, nil)
	require.Error(t, err)
}

func TestSearchJobs_OverFetchAndTruncate(t *testing.T) {
	index := &fakeIndex{results: []es.ScoredPosting{
		scoredPosting("j1", 0.1),
		scoredPosting("j2", 0.2),
		scoredPosting("j3", 0.3),
		scoredPosting("j4", 0.4),
	}}
	svc := NewSearchService(&fakeEmbedder{vector: []float32{0.5}}, index)

	results, err := svc.SearchJobs(context.Background(), "golang backend", 2, nil)
	require.NoError(t, err)

	// 索引收到 k*3 的超量请求
	assert.Equal(t, 6, index.lastK)
	// 截断回 k 条
	require.Len(t, results, 2)
	assert.Equal(t, "j1", results[0].Metadata.JobID)
	assert.Equal(t, "j2", results[1].Metadata.JobID)
	// similarity = 1 - distance
	assert.InDelta(t, 0.9, results[0].SimilarityScore, 1e-9)
	assert.InDelta(t, 0.8, results[1].SimilarityScore, 1e-9)
	// 嵌入文本随结果携带，供差距分析使用
	assert.Equal(t, "text j1", results[0].EmbeddingText)
}

func TestSearchJobs_DescendingStableOrder(t *testing.T) {
	// j2 与 j3 同距离：稳定排序保持索引返回的相对顺序
	index := &fakeIndex{results: []es.ScoredPosting{
		scoredPosting("j1", 0.5),
		scoredPosting("j2", 0.2),
		scoredPosting("j3", 0.2),
	}}
	svc := NewSearchService(&fakeEmbedder{vector: []float32{1}}, index)

	results, err := svc.SearchJobs(context.Background(), "query", 3, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "j2", results[0].Metadata.JobID)
	assert.Equal(t, "j3", results[1].Metadata.JobID)
	assert.Equal(t, "j1", results[2].Metadata.JobID)

	// 同一输入再跑一次，顺序不变
	again, err := svc.SearchJobs(context.Background(), "query", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, results, again)
}

func TestSearchJobs_FilterNormalization(t *testing.T) {
	index := &fakeIndex{}
	svc := NewSearchService(&fakeEmbedder{vector: []float32{1}}, index)

	_, err := svc.SearchJobs(context.Background(), "query", 3, map[string]string{
		model.FilterLocation: "Remote",
		model.FilterWorkType: "null",
	})
	require.NoError(t, err)
	// 只有有效条件传给索引
	assert.Equal(t, map[string]string{model.FilterLocation: "Remote"}, index.lastFilters)
}

func TestSearchJobs_EmptyResultIsNotAnError(t *testing.T) {
	svc := NewSearchService(&fakeEmbedder{vector: []float32{1}}, &fakeIndex{})

	results, err := svc.SearchJobs(context.Background(), "query", 5, nil)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchJobs_IndexFailure(t *testing.T) {
	index := &fakeIndex{err: errors.New("connection refused")}
	svc := NewSearchService(&fakeEmbedder{vector: []float32{1}}, index)

	_, err := svc.SearchJobs(context.Background(), "query", 3, nil)
	require.ErrorIs(t, err, ErrIndexUnavailable)
}

func TestSearchJobs_EmbeddingFailure(t *testing.T) {
	svc := NewSearchService(&fakeEmbedder{err: errors.New("quota exceeded")}, &fakeIndex{})

	_, err := svc.SearchJobs(context.Background(), "query", 3, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIndexUnavailable)
}
