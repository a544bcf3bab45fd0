package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"skillsync-go/internal/service"
	"skillsync-go/pkg/log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// AdviceHandler 负责处理 WebSocket 职业建议连接。
type AdviceHandler struct {
	adviceService service.AdviceService
	// 每连接停止标志
	stopFlags sync.Map // key: session pointer string, value: bool
}

// NewAdviceHandler 创建一个新的 AdviceHandler。
func NewAdviceHandler(adviceService service.AdviceService) *AdviceHandler {
	return &AdviceHandler{adviceService: adviceService}
}

// adviceMessage 是客户端发来的建议请求或控制指令。
type adviceMessage struct {
	Type    string `json:"type"`
	Summary string `json:"summary"`
}

// Handle 处理一个传入的 WebSocket 连接。
// 客户端发送 {"summary":"..."} 发起建议流，发送 {"type":"stop"} 中断当前流。
func (h *AdviceHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Info("职业建议 WebSocket 连接已建立")

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		var req adviceMessage
		if err := json.Unmarshal(message, &req); err != nil {
			log.Warnf("无法解析 WebSocket 消息: %v", err)
			errResp := map[string]string{"error": "无效的消息格式"}
			b, _ := json.Marshal(errResp)
			_ = conn.WriteMessage(websocket.TextMessage, b)
			continue
		}

		// 停止指令：置位停止标志并回发确认
		if req.Type == "stop" {
			key := sessionKey(conn)
			h.stopFlags.Store(key, true)
			resp := map[string]interface{}{
				"type":      "stop",
				"timestamp": time.Now().UnixMilli(),
			}
			b, _ := json.Marshal(resp)
			_ = conn.WriteMessage(websocket.TextMessage, b)
			continue
		}

		shouldStop := func() bool {
			v, ok := h.stopFlags.Load(sessionKey(conn))
			return ok && v.(bool)
		}
		// 清除旧标志
		h.stopFlags.Delete(sessionKey(conn))

		err = h.adviceService.StreamAdvice(c.Request.Context(), req.Summary, conn, shouldStop)
		if err != nil {
			log.Errorf("处理建议流失败: %v", err)
			// 统一 JSON 错误
			errResp := map[string]string{"error": "AI服务暂时不可用，请稍后重试"}
			b, _ := json.Marshal(errResp)
			_ = conn.WriteMessage(websocket.TextMessage, b)
			break
		}
	}
}

func sessionKey(conn *websocket.Conn) string {
	return fmt.Sprintf("%p", conn)
}
