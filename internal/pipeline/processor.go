// Package pipeline 定义了职位摄取的核心流程。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"skillsync-go/internal/config"
	"skillsync-go/internal/model"
	"skillsync-go/internal/repository"
	"skillsync-go/pkg/embedding"
	"skillsync-go/pkg/es"
	"skillsync-go/pkg/log"
	"skillsync-go/pkg/tasks"
	"strings"
	"unicode/utf8"
)

// Processor 封装了职位摄取的所有依赖和逻辑。
type Processor struct {
	embeddingClient embedding.Client
	index           es.Indexer
	embeddingCfg    config.EmbeddingConfig
	postingRepo     repository.JobPostingRepository
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(
	embeddingClient embedding.Client,
	index es.Indexer,
	embeddingCfg config.EmbeddingConfig,
	postingRepo repository.JobPostingRepository,
) *Processor {
	return &Processor{
		embeddingClient: embeddingClient,
		index:           index,
		embeddingCfg:    embeddingCfg,
		postingRepo:     postingRepo,
	}
}

// Process 是职位摄取的主函数：清洗 → 落库暂存 → 向量化 → 索引。
func (p *Processor) Process(ctx context.Context, task tasks.PostingIngestTask) error {
	log.Infof("[Processor] 开始处理职位, JobID: %s, Title: %s", task.JobID, task.Title)

	// 1. 校验：没有描述的职位无法产生有意义的向量
	if strings.TrimSpace(task.Description) == "" {
		log.Warnf("[Processor] 职位 '%s' 描述为空, 处理中止", task.JobID)
		return errors.New("职位描述为空")
	}

	// 2. 组合嵌入文本（缺失字段用固定占位值补齐）
	textToEmbed := buildEmbeddingText(task)
	log.Infof("[Processor] 步骤1: 嵌入文本组合完成, 长度: %d 字符", utf8.RuneCountInString(textToEmbed))

	// 阶段一：将清洗后的职位行存入数据库
	// 为避免重复摄取导致的唯一索引冲突，先清理既有记录（幂等）
	if err := p.postingRepo.DeleteByJobID(task.JobID); err != nil {
		log.Warnf("[Processor] 清理 job_postings 旧记录失败 (job_id=%s): %v", task.JobID, err)
	}
	staged := &model.JobPosting{
		JobID:       task.JobID,
		CompanyName: task.CompanyName,
		Title:       task.Title,
		Description: task.Description,
		MaxSalary:   task.MaxSalary,
		PayPeriod:   task.PayPeriod,
		Location:    task.Location,
		WorkType:    task.WorkType,
		SkillsDesc:  task.SkillsDesc,
		TextToEmbed: textToEmbed,
	}
	if err := p.postingRepo.Save(staged); err != nil {
		log.Errorf("[Processor] 阶段一: 保存职位到数据库失败, JobID: %s, Error: %v", task.JobID, err)
		return fmt.Errorf("保存职位暂存记录失败: %w", err)
	}
	log.Infof("[Processor] 阶段一: 职位已落库暂存, JobID: %s", task.JobID)

	// 阶段二：向量化并索引到 ES
	log.Info("[Processor] 阶段二: 开始向量化")
	vector, err := p.embeddingClient.CreateEmbedding(ctx, textToEmbed)
	if err != nil {
		log.Errorf("[Processor] 职位向量化失败, JobID: %s, Error: %v", task.JobID, err)
		return fmt.Errorf("职位 %s 向量化失败: %w", task.JobID, err)
	}

	esDoc := model.EsJobPosting{
		JobID:        task.JobID,
		CompanyName:  task.CompanyName,
		Title:        task.Title,
		Location:     task.Location,
		MaxSalary:    task.MaxSalary,
		PayPeriod:    task.PayPeriod,
		WorkType:     task.WorkType,
		TextContent:  textToEmbed,
		Vector:       vector,
		ModelVersion: p.embeddingCfg.Model,
	}
	if err := p.index.IndexPosting(ctx, esDoc); err != nil {
		log.Errorf("[Processor] 索引职位到Elasticsearch失败, JobID: %s, Error: %v", task.JobID, err)
		return fmt.Errorf("索引职位 %s 到 Elasticsearch 失败: %w", task.JobID, err)
	}

	log.Infof("[Processor] 职位摄取成功完成, JobID: %s", task.JobID)
	return nil
}

// buildEmbeddingText 把职位字段组合成单段嵌入文本。
// 占位值与索引中的存量文档保持一致，不能随意改动，否则新旧向量分布会漂移。
func buildEmbeddingText(task tasks.PostingIngestTask) string {
	var b strings.Builder
	b.WriteString("Job ID: " + task.JobID + ".\n ")
	b.WriteString("Job Title: " + orDefault(task.Title, "Unknown Role") + ".\n ")
	b.WriteString("Company: " + orDefault(task.CompanyName, "Unknown Company") + ".\n ")
	b.WriteString("Location: " + orDefault(task.Location, "Unknown") + ".\n ")
	b.WriteString("Type: " + orDefault(task.WorkType, "Unknown") + ".\n ")
	b.WriteString("Description: " + task.Description + ".\n ")
	b.WriteString("Skills: " + orDefault(task.SkillsDesc, "Not Specified") + ".\n ")
	b.WriteString(" Salary: " + orDefault(task.MaxSalary, "Not Specified") + " \n")
	b.WriteString(orDefault(task.PayPeriod, "YEARLY"))
	return b.String()
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
