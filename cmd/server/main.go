// Package main 是应用程序的入口点。
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"skillsync-go/internal/config"
	"skillsync-go/internal/handler"
	"skillsync-go/internal/middleware"
	"skillsync-go/internal/model"
	"skillsync-go/internal/pipeline"
	"skillsync-go/internal/repository"
	"skillsync-go/internal/service"
	"skillsync-go/pkg/database"
	"skillsync-go/pkg/embedding"
	"skillsync-go/pkg/es"
	"skillsync-go/pkg/kafka"
	"skillsync-go/pkg/llm"
	"skillsync-go/pkg/log"
	"skillsync-go/pkg/storage"
	"skillsync-go/pkg/tasks"
	"skillsync-go/pkg/tika"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis、对象存储与 ES
	database.InitMySQL(cfg.Database.MySQL.DSN)
	if err := database.DB.AutoMigrate(&model.JobPosting{}); err != nil {
		log.Fatalf("job_postings 表迁移失败: %v", err)
	}
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch, cfg.Embedding.Dimensions); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化 Repository
	postingRepo := repository.NewJobPostingRepository(database.DB)
	historyRepo := repository.NewHistoryRepository(database.RDB)

	// 5. 初始化 Service (依赖注入)
	tikaClient := tika.NewClient(cfg.Tika)
	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)
	jobsIndex := es.NewJobsIndex(es.ESClient, cfg.Elasticsearch.IndexName)
	extractionService := service.NewExtractionService(llmClient)
	searchService := service.NewSearchService(embeddingClient, jobsIndex)
	gapService := service.NewGapAnalysisService(llmClient)
	recommendService := service.NewRecommendService(extractionService, searchService, gapService, historyRepo)
	historyService := service.NewHistoryService(historyRepo)
	adviceService := service.NewAdviceService(searchService, llmClient)

	// 6. 初始化职位摄取管道 (Processor)
	processor := pipeline.NewProcessor(
		embeddingClient,
		jobsIndex,
		cfg.Embedding,
		postingRepo,
	)

	// 7. 启动后台 Kafka 消费者
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 7.1 数据集导入：有 dataset_path 时异步导入 CSV；否则索引必须已有数据
	if cfg.Recommend.DatasetPath != "" {
		seedCtx, cancelSeed := context.WithCancel(context.Background())
		defer cancelSeed()
		go seedPostings(seedCtx, cfg.Recommend.DatasetPath, postingRepo)
	} else {
		count, err := es.CountDocuments(context.Background(), cfg.Elasticsearch.IndexName)
		if err != nil {
			log.Fatalf("检查职位索引文档数失败: %v", err)
		}
		if count == 0 {
			log.Fatalf("职位索引 '%s' 为空且未配置 dataset_path，服务无法提供推荐", cfg.Elasticsearch.IndexName)
		}
		log.Infof("职位索引 '%s' 已有 %d 个文档", cfg.Elasticsearch.IndexName, count)
	}

	// 8. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件和 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 9. 注册路由
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "skillsync"})
	})

	recommendHandler := handler.NewRecommendHandler(recommendService, tikaClient)
	apiV1 := r.Group("/api/v1")
	{
		// Recommend 路由组
		recommend := apiV1.Group("/recommend")
		{
			recommend.POST("", recommendHandler.RecommendFromFile)
			recommend.POST("/text", recommendHandler.RecommendFromText)
		}

		// Search 路由组
		search := apiV1.Group("/search")
		{
			search.GET("/jobs", handler.NewSearchHandler(searchService).SearchJobs)
		}

		// History 路由组
		users := apiV1.Group("/users")
		{
			users.GET("/history", handler.NewHistoryHandler(historyService).GetHistory)
		}

		// Advice 路由 (WebSocket)
		apiV1.GET("/advice", handler.NewAdviceHandler(adviceService).Handle)
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	// Kafka 消费者是一个循环，会在程序退出时自然结束。
	log.Info("服务已优雅关闭")
}

// seedPostings 读取职位 CSV 数据集并把每一行作为摄取任务投递到 Kafka（幂等）。
func seedPostings(ctx context.Context, datasetPath string, postingRepo repository.JobPostingRepository) {
	f, err := os.Open(datasetPath)
	if err != nil {
		log.Warnf("seedPostings: 打开数据集失败 '%s': %v，跳过初始化导入", datasetPath, err)
		return
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // 描述字段可能含换行，列数以表头为准

	header, err := reader.Read()
	if err != nil {
		log.Warnf("seedPostings: 读取 CSV 表头失败: %v", err)
		return
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var produced, skipped int
	for {
		select {
		case <-ctx.Done():
			log.Info("seedPostings: 上下文取消，中止导入")
			return
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warnf("seedPostings: 读取 CSV 行失败: %v", err)
			continue
		}

		jobID := field(record, "job_id")
		if jobID == "" {
			continue
		}

		// 幂等检查：已暂存的职位视为已摄取
		if existing, err := postingRepo.FindByJobID(jobID); err == nil && existing != nil {
			skipped++
			continue
		}

		task := tasksFromRecord(jobID, record, field)
		if err := kafka.ProducePostingTask(task); err != nil {
			log.Warnf("seedPostings: 投递摄取任务失败 (job_id=%s): %v", jobID, err)
			continue
		}
		produced++
	}

	log.Infof("seedPostings: 数据集导入完成, 投递 %d 条, 跳过 %d 条", produced, skipped)
}

// tasksFromRecord 把一行 CSV 转换为摄取任务。
func tasksFromRecord(jobID string, record []string, field func([]string, string) string) tasks.PostingIngestTask {
	return tasks.PostingIngestTask{
		JobID:       jobID,
		CompanyName: field(record, "company_name"),
		Title:       field(record, "title"),
		Description: field(record, "description"),
		MaxSalary:   field(record, "max_salary"),
		PayPeriod:   field(record, "pay_period"),
		Location:    field(record, "location"),
		WorkType:    field(record, "formatted_work_type"),
		SkillsDesc:  field(record, "skills_desc"),
	}
}
