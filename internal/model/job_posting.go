package model

// JobPosting 对应于数据库中的 job_postings 暂存表。
// 摄取流水线先把清洗后的职位行落库，再做向量化与索引（两阶段）。
type JobPosting struct {
	ID          uint   `gorm:"primaryKey;autoIncrement;column:id"`
	JobID       string `gorm:"type:varchar(64);not null;uniqueIndex;column:job_id"`
	CompanyName string `gorm:"type:varchar(255);column:company_name"`
	Title       string `gorm:"type:varchar(255);column:title"`
	Description string `gorm:"type:text;column:description"`
	MaxSalary   string `gorm:"type:varchar(50);column:max_salary"`
	PayPeriod   string `gorm:"type:varchar(50);column:pay_period"`
	Location    string `gorm:"type:varchar(255);column:location"`
	WorkType    string `gorm:"type:varchar(50);column:formatted_work_type"`
	SkillsDesc  string `gorm:"type:text;column:skills_desc"`
	TextToEmbed string `gorm:"type:text;column:text_to_embed"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}

// EsJobPosting 定义了存储在 Elasticsearch 职位索引中的文档结构。
type EsJobPosting struct {
	JobID       string    `json:"job_id"`
	CompanyName string    `json:"company_name"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	MaxSalary   string    `json:"max_salary"`
	PayPeriod   string    `json:"pay_period"`
	WorkType    string    `json:"formatted_work_type"`
	TextContent string    `json:"text_content"` // 摄取时被向量化的组合文本
	Vector      []float32 `json:"vector"`
	ModelVersion string   `json:"model_version"`
}

// JobMetadata 是返回给调用方的职位元数据副本。
type JobMetadata struct {
	JobID       string `json:"job_id"`
	CompanyName string `json:"company_name"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	MaxSalary   string `json:"max_salary"`
	PayPeriod   string `json:"pay_period"`
	WorkType    string `json:"formatted_work_type"`
}

// SearchResult 是一条候选匹配结果。
// SimilarityScore 由索引返回的距离换算而来（similarity = 1 - distance），
// 只是近似值而非校准概率，不保证落在 [0,1] 区间。
type SearchResult struct {
	Metadata        JobMetadata `json:"metadata"`
	SimilarityScore float64     `json:"similarity_score"`
	// EmbeddingText 是摄取时被嵌入的组合文本，仅供差距分析使用，不对外输出。
	EmbeddingText string `json:"-"`
}

// Metadata 从 ES 文档提取元数据副本。
func (d EsJobPosting) Metadata() JobMetadata {
	return JobMetadata{
		JobID:       d.JobID,
		CompanyName: d.CompanyName,
		Title:       d.Title,
		Location:    d.Location,
		MaxSalary:   d.MaxSalary,
		PayPeriod:   d.PayPeriod,
		WorkType:    d.WorkType,
	}
}
