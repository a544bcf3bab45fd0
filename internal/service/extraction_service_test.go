package service

import (
	"context"
	"errors"
	"skillsync-go/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractProfile_EmptyDocument(t *testing.T) {
	svc := NewExtractionService(&fakeLLM{})

	for _, raw := range []string{"", "   ", "\n\t"} {
		profile, degraded, err := svc.ExtractProfile(context.Background(), raw)
		require.ErrorIs(t, err, ErrEmptyDocument)
		assert.Nil(t, profile)
		assert.False(t, degraded)
	}
}

func TestExtractProfile_Success(t *testing.T) {
	client := &fakeLLM{response: `{
		"user_email": "jane@example.com",
		"filters": {"location": "Berlin", "formatted_work_type": "Full-time"},
		"summary": "Senior Go engineer, 8 years of backend experience."
	}`}
	svc := NewExtractionService(client)

	profile, degraded, err := svc.ExtractProfile(context.Background(), "Jane Doe resume text")
	require.NoError(t, err)
	assert.False(t, degraded)
	assert.True(t, client.lastJSONMode)
	assert.Equal(t, "jane@example.com", profile.Identity)
	assert.Equal(t, "Berlin", profile.Filters[model.FilterLocation])
	assert.Equal(t, "Full-time", profile.Filters[model.FilterWorkType])
	assert.Equal(t, "Senior Go engineer, 8 years of backend experience.", profile.Summary)
}

func TestExtractProfile_FencedJSON(t *testing.T) {
	client := &fakeLLM{response: "Here is the result:\n```json\n" +
		`{"user_email": "a@b.co", "filters": {"location": "null", "formatted_work_type": ""}, "summary": "Go dev"}` +
		"\n```"}
	svc := NewExtractionService(client)

	profile, degraded, err := svc.ExtractProfile(context.Background(), "resume")
	require.NoError(t, err)
	assert.False(t, degraded)
	assert.Equal(t, "a@b.co", profile.Identity)
	// 无效过滤值原样保留，归一发生在搜索层
	assert.Equal(t, "null", profile.Filters[model.FilterLocation])
	assert.Equal(t, "", profile.Filters[model.FilterWorkType])
}

func TestExtractProfile_LLMFailureFallsBack(t *testing.T) {
	client := &fakeLLM{err: errors.New("upstream timeout")}
	svc := NewExtractionService(client)

	raw := "John Smith\njohn.smith@mail.com\n10 years of Java"
	profile, degraded, err := svc.ExtractProfile(context.Background(), raw)
	require.NoError(t, err)
	assert.True(t, degraded)
	assert.Equal(t, "john.smith@mail.com", profile.Identity)
	assert.Empty(t, profile.Filters)
	assert.Equal(t, raw, profile.Summary)
}

func TestExtractProfile_UnparsableOutputFallsBack(t *testing.T) {
	client := &fakeLLM{response: "I'm sorry, I cannot help with that."}
	svc := NewExtractionService(client)

	profile, degraded, err := svc.ExtractProfile(context.Background(), "resume without email")
	require.NoError(t, err)
	assert.True(t, degraded)
	assert.Equal(t, model.UnknownUser, profile.Identity)
	assert.Equal(t, "resume without email", profile.Summary)
}

func TestExtractProfile_MissingEmailUsesRegexThenSentinel(t *testing.T) {
	client := &fakeLLM{response: `{"user_email": "null", "filters": {}, "summary": "dev"}`}
	svc := NewExtractionService(client)

	// 文本中有邮箱：正则回退
	profile, _, err := svc.ExtractProfile(context.Background(), "contact me at dev@corp.io for details")
	require.NoError(t, err)
	assert.Equal(t, "dev@corp.io", profile.Identity)

	// 文本中没有邮箱：哨兵身份
	profile, _, err = svc.ExtractProfile(context.Background(), "no contact info here")
	require.NoError(t, err)
	assert.Equal(t, model.UnknownUser, profile.Identity)
}

func TestExtractProfile_EmptySummaryUsesRawText(t *testing.T) {
	client := &fakeLLM{response: `{"user_email": "x@y.z", "filters": {}, "summary": "  "}`}
	svc := NewExtractionService(client)

	profile, degraded, err := svc.ExtractProfile(context.Background(), "full resume body")
	require.NoError(t, err)
	assert.False(t, degraded)
	assert.Equal(t, "full resume body", profile.Summary)
}

func TestExtractEmail(t *testing.T) {
	assert.Equal(t, "first.last+tag@sub.domain.org", extractEmail("reach first.last+tag@sub.domain.org today"))
	assert.Equal(t, model.UnknownUser, extractEmail("no email at all"))
}
