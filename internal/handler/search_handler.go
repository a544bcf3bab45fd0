package handler

import (
	"net/http"
	"skillsync-go/internal/model"
	"skillsync-go/internal/service"
	"skillsync-go/pkg/log"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SearchHandler 结构体定义了职位搜索相关的处理器。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// SearchJobs 是处理职位搜索请求的 Gin 处理函数。
// 可选的 location 与 work_type 参数会作为元数据过滤条件传给搜索服务。
func (h *SearchHandler) SearchJobs(c *gin.Context) {
	query := c.Query("query")
	log.Infof("[SearchHandler] 收到职位搜索请求, query: %s", query)

	if query == "" {
		log.Warnf("[SearchHandler] 搜索请求失败: query 参数为空")
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的查询参数"})
		return
	}
	topKStr := c.DefaultQuery("topK", "10")
	topK, err := strconv.Atoi(topKStr)
	if err != nil || topK <= 0 {
		topK = 10
	}

	filters := map[string]string{
		model.FilterLocation: c.Query("location"),
		model.FilterWorkType: c.Query("work_type"),
	}
	log.Infof("[SearchHandler] 解析参数, topK: %d, filters: %v", topK, filters)

	results, err := h.searchService.SearchJobs(c.Request.Context(), query, topK, filters)
	if err != nil {
		log.Errorf("[SearchHandler] 职位搜索服务返回错误, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "搜索失败"})
		return
	}

	log.Infof("[SearchHandler] 职位搜索成功, query: '%s', 返回 %d 条结果", query, len(results))
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": results, "message": "success"})
}
