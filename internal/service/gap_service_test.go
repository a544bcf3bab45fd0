package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeGap_Success(t *testing.T) {
	client := &fakeLLM{response: `{
		"match_score": "78",
		"matching_skills": ["Go", "Kubernetes", "PostgreSQL"],
		"missing_skills": ["Kafka", "Terraform"],
		"advice": "Build a streaming side project with Kafka."
	}`}
	svc := NewGapAnalysisService(client)

	report, err := svc.AnalyzeGap(context.Background(), "Go engineer summary", "Backend role description")
	require.NoError(t, err)
	assert.True(t, client.lastJSONMode)
	assert.Equal(t, "78", report.MatchScore)
	assert.Len(t, report.MatchingSkills, 3)
	assert.Len(t, report.MissingSkills, 2)
	assert.NotEmpty(t, report.Advice)

	// 提示词同时携带职位描述与候选人摘要
	require.Len(t, client.lastMessages, 2)
	assert.Contains(t, client.lastMessages[1].Content, "Backend role description")
	assert.Contains(t, client.lastMessages[1].Content, "Go engineer summary")
}

func TestAnalyzeGap_NumericScorePassesThrough(t *testing.T) {
	client := &fakeLLM{response: `{"match_score": 91, "matching_skills": [], "missing_skills": [], "advice": "ok"}`}
	svc := NewGapAnalysisService(client)

	report, err := svc.AnalyzeGap(context.Background(), "summary", "description")
	require.NoError(t, err)
	// 数字分值不做类型归一，原样透传
	assert.Equal(t, float64(91), report.MatchScore)
}

func TestAnalyzeGap_CompletionFailure(t *testing.T) {
	client := &fakeLLM{err: errors.New("rate limited")}
	svc := NewGapAnalysisService(client)

	_, err := svc.AnalyzeGap(context.Background(), "summary", "description")
	require.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestAnalyzeGap_MalformedOutput(t *testing.T) {
	client := &fakeLLM{response: "not json at all"}
	svc := NewGapAnalysisService(client)

	_, err := svc.AnalyzeGap(context.Background(), "summary", "description")
	require.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestDecodeJSONObject(t *testing.T) {
	var out map[string]string

	require.NoError(t, decodeJSONObject("```json\n{\"a\":\"b\"}\n```", &out))
	assert.Equal(t, "b", out["a"])

	require.Error(t, decodeJSONObject("no braces here", &out))
	require.Error(t, decodeJSONObject("{broken", &out))
}
