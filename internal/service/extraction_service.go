// Package service 提供了简历抽取相关的业务逻辑。
package service

import (
	"context"
	"fmt"
	"regexp"
	"skillsync-go/internal/model"
	"skillsync-go/pkg/llm"
	"skillsync-go/pkg/log"
	"strings"
)

// ExtractionService 接口定义了简历抽取操作。
// 返回的 bool 表示抽取是否走了降级路径（LLM 失败后回退到原始文本）。
type ExtractionService interface {
	ExtractProfile(ctx context.Context, rawText string) (*model.CandidateProfile, bool, error)
}

type extractionService struct {
	llmClient llm.Client
}

// NewExtractionService 创建一个新的 ExtractionService 实例。
func NewExtractionService(llmClient llm.Client) ExtractionService {
	return &extractionService{llmClient: llmClient}
}

// emailPattern 匹配标准形态的邮箱地址，作为身份抽取的确定性回退。
var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// 单次调用同时拿到邮箱、过滤条件与语义摘要，避免逐字段多轮调用的延迟与成本。
const extractionPromptTemplate = `You are an expert ATS (Applicant Tracking System).
Analyze the following resume text and extract all key information into a strict JSON object.

RESUME TEXT:
%s

REQUIRED JSON STRUCTURE:
{
    "user_email": "Extract the candidate's email (or null if not found)",
    "filters": {
        "location": "Preferred City/State (or null)",
        "formatted_work_type": "Full-time, Part-time, or Contract (infer from context or null)"
    },
    "summary": "A comprehensive summary of the candidate's key skills, technical stack, years of experience, and qualifications. This text will be used for vector embedding."
}

Return ONLY VALID JSON.`

// extractionResult 是结构化补全的强类型解析目标。
// JSON null 解析后为零值空串，与缺失字段同样处理。
type extractionResult struct {
	UserEmail string `json:"user_email"`
	Filters   struct {
		Location          string `json:"location"`
		FormattedWorkType string `json:"formatted_work_type"`
	} `json:"filters"`
	Summary string `json:"summary"`
}

// ExtractProfile 执行单趟抽取，把原始简历文本转换为结构化查询记录。
// LLM 调用失败或输出不可解析时降级为回退档案（正则邮箱 + 原始文本摘要），
// 流水线永远不会仅因为语言模型行为异常而中断。
func (s *extractionService) ExtractProfile(ctx context.Context, rawText string) (*model.CandidateProfile, bool, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, false, ErrEmptyDocument
	}

	log.Infof("[ExtractionService] 开始单趟抽取, 文本长度: %d", len(rawText))

	prompt := fmt.Sprintf(extractionPromptTemplate, rawText)
	completion, err := s.llmClient.ChatCompletion(ctx, []llm.Message{{Role: "user", Content: prompt}}, nil, true)
	if err != nil {
		log.Warnf("[ExtractionService] 结构化补全调用失败, 降级为回退档案: %v", err)
		return s.fallbackProfile(rawText), true, nil
	}

	var result extractionResult
	if err := decodeJSONObject(completion, &result); err != nil {
		log.Warnf("[ExtractionService] 抽取输出不可解析, 降级为回退档案: %v", err)
		return s.fallbackProfile(rawText), true, nil
	}

	// 身份回退：LLM 漏掉邮箱时用正则重新计算（纯字符串逻辑，必定成功）
	identity := result.UserEmail
	if identity == "" || identity == "null" {
		identity = extractEmail(rawText)
	}

	summary := result.Summary
	if strings.TrimSpace(summary) == "" {
		summary = rawText
	}

	profile := &model.CandidateProfile{
		Identity: identity,
		Filters: map[string]string{
			model.FilterLocation: result.Filters.Location,
			model.FilterWorkType: result.Filters.FormattedWorkType,
		},
		Summary: summary,
	}
	log.Infof("[ExtractionService] 抽取成功, identity: %s, filters: %v", profile.Identity, profile.Filters)
	return profile, false, nil
}

// fallbackProfile 构造降级档案：正则邮箱身份、空过滤集、原始文本摘要。
func (s *extractionService) fallbackProfile(rawText string) *model.CandidateProfile {
	return &model.CandidateProfile{
		Identity: extractEmail(rawText),
		Filters:  map[string]string{},
		Summary:  rawText,
	}
}

// extractEmail 返回文本中首个邮箱形态的子串，找不到时返回哨兵值。
func extractEmail(text string) string {
	if match := emailPattern.FindString(text); match != "" {
		return match
	}
	return model.UnknownUser
}
