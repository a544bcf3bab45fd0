package service

import (
	"context"
	"encoding/json"
	"fmt"
	"skillsync-go/internal/config"
	"skillsync-go/pkg/llm"
	"skillsync-go/pkg/log"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// AdviceService 定义了流式职业建议操作：对候选人摘要检索最相关的职位，
// 再以探索性生成参数流式产出自由文本建议。
type AdviceService interface {
	StreamAdvice(ctx context.Context, summary string, ws *websocket.Conn, shouldStop func() bool) error
}

type adviceService struct {
	searchService SearchService
	llmClient     llm.Client
}

// NewAdviceService 创建一个新的 AdviceService 实例。
func NewAdviceService(searchService SearchService, llmClient llm.Client) AdviceService {
	return &adviceService{
		searchService: searchService,
		llmClient:     llmClient,
	}
}

const adviceSystemPrompt = "You are a friendly senior career coach. " +
	"Using the job posting below as the candidate's best current match, give concrete, encouraging advice " +
	"on how they can close the gap and position themselves for this role. Speak directly to the candidate."

// StreamAdvice 检索最佳匹配职位并把建议分块流式写入 websocket 连接。
func (s *adviceService) StreamAdvice(ctx context.Context, summary string, ws *websocket.Conn, shouldStop func() bool) error {
	if strings.TrimSpace(summary) == "" {
		return ErrEmptyDocument
	}

	// 1. 只取最佳匹配作为建议上下文
	log.Info("[AdviceService] 步骤1: 检索最佳匹配职位")
	matches, err := s.searchService.SearchJobs(ctx, summary, 1, nil)
	if err != nil {
		return fmt.Errorf("failed to retrieve best match: %w", err)
	}

	// 2. 构建 system 消息（无匹配时如实告知模型）
	var sys strings.Builder
	sys.WriteString(adviceSystemPrompt)
	sys.WriteString("\n\nBEST MATCHING JOB:\n")
	if len(matches) > 0 {
		sys.WriteString(matches[0].EmbeddingText)
	} else {
		sys.WriteString("(no matching job found; give general advice based on the resume alone)")
	}

	messages := []llm.Message{
		{Role: "system", Content: sys.String()},
		{Role: "user", Content: summary},
	}

	// 拦截 websocket writer，把原始分块包装为 JSON 下发
	interceptor := &wsWriterInterceptor{conn: ws, shouldStop: shouldStop}

	// 3. 探索性生成参数：建议文本需要一定的发散度
	log.Info("[AdviceService] 步骤2: 流式生成职业建议")
	gen := llm.ParamsFrom(config.Conf.LLM.Exploratory)
	if err := s.llmClient.StreamChatMessages(ctx, messages, gen, interceptor); err != nil {
		return err
	}

	// 4. 发送完成通知
	sendCompletion(ws)
	log.Info("[AdviceService] 职业建议流式输出完成")
	return nil
}

// wsWriterInterceptor 是对 websocket.Conn 的封装，支持客户端停止标志。
type wsWriterInterceptor struct {
	conn       *websocket.Conn
	shouldStop func() bool
}

// WriteMessage 满足 llm.MessageWriter 接口。
func (w *wsWriterInterceptor) WriteMessage(messageType int, data []byte) error {
	if w.shouldStop != nil && w.shouldStop() {
		// 停止标志生效：跳过下发
		return nil
	}
	// 将原始分块包装成 {"chunk":"..."}
	payload := map[string]string{"chunk": string(data)}
	b, _ := json.Marshal(payload)
	return w.conn.WriteMessage(messageType, b)
}

// sendCompletion 发送完成通知 JSON
func sendCompletion(ws *websocket.Conn) {
	notif := map[string]interface{}{
		"type":      "completion",
		"status":    "finished",
		"timestamp": time.Now().UnixMilli(),
	}
	b, _ := json.Marshal(notif)
	_ = ws.WriteMessage(websocket.TextMessage, b)
}
