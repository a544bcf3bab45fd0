// Package service 提供了简历与职位差距分析的业务逻辑。
package service

import (
	"context"
	"fmt"
	"skillsync-go/internal/model"
	"skillsync-go/pkg/llm"
	"skillsync-go/pkg/log"
)

// GapAnalysisService 接口定义了差距分析操作。
type GapAnalysisService interface {
	AnalyzeGap(ctx context.Context, querySummary, jobDescription string) (*model.GapReport, error)
}

type gapAnalysisService struct {
	llmClient llm.Client
}

// NewGapAnalysisService 创建一个新的 GapAnalysisService 实例。
func NewGapAnalysisService(llmClient llm.Client) GapAnalysisService {
	return &gapAnalysisService{llmClient: llmClient}
}

const gapSystemPrompt = "You are an expert Technical Recruiter. Compare the candidate's resume to the job description."

const gapPromptTemplate = `JOB DESCRIPTION:
%s

CANDIDATE RESUME:
%s

TASK:
1. Identify the Match Score (0-100%%).
2. List 3 Key Matching Skills.
3. List 2 CRITICAL Missing Skills.
4. Provide 1 specific advice to bridge the gap.

Analyze the gap and return a JSON object with EXACTLY this structure:
{
    "match_score": "A number between 0-100",
    "matching_skills": ["skill1", "skill2"],
    "missing_skills": ["skill1", "skill2"],
    "advice": "1-2 sentences on how to improve."
}

Return ONLY VALID JSON.`

// AnalyzeGap 发起一次结构化补全，对比候选人摘要与职位描述。
// match_score 的取值范围和技能列表长度均不做本地校验，原样透传给调用方；
// 补全失败没有回退值：错误的差距分析比没有更糟。
func (s *gapAnalysisService) AnalyzeGap(ctx context.Context, querySummary, jobDescription string) (*model.GapReport, error) {
	log.Infof("[GapAnalysisService] 开始差距分析, 职位描述长度: %d", len(jobDescription))

	messages := []llm.Message{
		{Role: "system", Content: gapSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(gapPromptTemplate, jobDescription, querySummary)},
	}

	completion, err := s.llmClient.ChatCompletion(ctx, messages, nil, true)
	if err != nil {
		log.Errorf("[GapAnalysisService] 差距分析补全调用失败: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	var report model.GapReport
	if err := decodeJSONObject(completion, &report); err != nil {
		log.Errorf("[GapAnalysisService] 差距分析输出不可解析: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	log.Infof("[GapAnalysisService] 差距分析完成, match_score: %v", report.MatchScore)
	return &report, nil
}
