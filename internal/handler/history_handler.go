package handler

import (
	"net/http"
	"skillsync-go/internal/service"
	"skillsync-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// HistoryHandler 结构体定义了推荐历史查询相关的处理器。
type HistoryHandler struct {
	historyService service.HistoryService
}

// NewHistoryHandler 创建一个新的 HistoryHandler 实例。
func NewHistoryHandler(historyService service.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
	}
}

// GetHistory 返回某个候选人身份最近的推荐记录。
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	identity := c.Query("identity")
	if identity == "" {
		log.Warnf("[HistoryHandler] 历史查询失败: identity 参数为空")
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 identity 参数"})
		return
	}

	entries, err := h.historyService.GetRecentRecommendations(c.Request.Context(), identity)
	if err != nil {
		log.Errorf("[HistoryHandler] 获取推荐历史失败, identity: %s, error: %v", identity, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取推荐历史失败"})
		return
	}

	log.Infof("[HistoryHandler] 推荐历史查询成功, identity: %s, 返回 %d 条记录", identity, len(entries))
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": entries, "message": "success"})
}
