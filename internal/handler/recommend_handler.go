// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"skillsync-go/internal/config"
	"skillsync-go/internal/service"
	"skillsync-go/pkg/log"
	"skillsync-go/pkg/storage"
	"skillsync-go/pkg/tika"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RecommendHandler 负责简历上传与推荐请求。
type RecommendHandler struct {
	recommendService service.RecommendService
	tikaClient       *tika.Client
}

// NewRecommendHandler 创建一个新的 RecommendHandler 实例。
func NewRecommendHandler(recommendService service.RecommendService, tikaClient *tika.Client) *RecommendHandler {
	return &RecommendHandler{
		recommendService: recommendService,
		tikaClient:       tikaClient,
	}
}

// RecommendFromFile 处理 multipart 简历上传：归档原件 → 提取文本 → 推荐。
func (h *RecommendHandler) RecommendFromFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Warnf("[RecommendHandler] 请求缺少简历文件: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少简历文件 (file)"})
		return
	}
	log.Infof("[RecommendHandler] 收到简历推荐请求, FileName: %s, Size: %d", fileHeader.Filename, fileHeader.Size)

	file, err := fileHeader.Open()
	if err != nil {
		log.Errorf("[RecommendHandler] 打开上传文件失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}
	defer file.Close()

	// 读入内存缓冲区：归档与文本提取都需要消费同一份字节
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(file); err != nil {
		log.Errorf("[RecommendHandler] 读取上传文件内容失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}

	// 1. 归档简历原件到 MinIO（尽力而为，失败只告警）
	objectName := fmt.Sprintf("resumes/%s/%s%s", time.Now().Format("2006-01-02"), uuid.New().String(), filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")
	if err := storage.ArchiveResume(c.Request.Context(), config.Conf.MinIO.BucketName, objectName, contentType,
		bytes.NewReader(buf.Bytes()), int64(buf.Len())); err != nil {
		log.Warnf("[RecommendHandler] 简历归档失败 (object=%s): %v", objectName, err)
	} else {
		log.Infof("[RecommendHandler] 简历已归档, Object: %s", objectName)
	}

	// 2. 使用 Tika 提取文本
	rawText, err := h.tikaClient.ExtractText(c.Request.Context(), bytes.NewReader(buf.Bytes()), fileHeader.Filename)
	if err != nil {
		log.Errorf("[RecommendHandler] 使用Tika提取文本失败, FileName: %s, Error: %v", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "简历文本提取失败"})
		return
	}

	h.recommend(c, rawText)
}

// recommendTextRequest 是纯文本推荐请求的 JSON 结构。
type recommendTextRequest struct {
	ResumeText string `json:"resume_text"`
}

// RecommendFromText 处理已提取好文本的推荐请求。
func (h *RecommendHandler) RecommendFromText(c *gin.Context) {
	var req recommendTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[RecommendHandler] 无效的请求体: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}
	log.Infof("[RecommendHandler] 收到文本推荐请求, 文本长度: %d", len(req.ResumeText))
	h.recommend(c, req.ResumeText)
}

// recommend 是两个入口共用的推荐执行与错误映射逻辑。
func (h *RecommendHandler) recommend(c *gin.Context, rawText string) {
	topK := config.Conf.Recommend.DefaultTopK
	if topKStr := c.Query("topK"); topKStr != "" {
		if parsed, err := strconv.Atoi(topKStr); err == nil && parsed > 0 {
			topK = parsed
		}
	}

	response, err := h.recommendService.Recommend(c.Request.Context(), rawText, topK)
	if err != nil {
		if errors.Is(err, service.ErrEmptyDocument) {
			log.Warnf("[RecommendHandler] 推荐请求失败: 简历内容为空")
			c.JSON(http.StatusBadRequest, gin.H{"error": "简历内容为空"})
			return
		}
		// 其余失败统一 500，不向客户端泄露内部细节
		log.Errorf("[RecommendHandler] 推荐流水线返回错误: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "推荐服务暂时不可用，请稍后重试"})
		return
	}

	log.Infof("[RecommendHandler] 推荐成功, identity: %s", response.Identity)
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": response, "message": "success"})
}
