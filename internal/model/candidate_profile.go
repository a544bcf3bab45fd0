// Package model 定义了推荐引擎的核心数据结构。
package model

// UnknownUser 是身份抽取完全失败时使用的哨兵值。
const UnknownUser = "Unknown User"

// 识别的过滤键，与职位索引中的 metadata 字段一一对应。
const (
	FilterLocation = "location"
	FilterWorkType = "formatted_work_type"
)

// CandidateProfile 是一次请求中从简历文本抽取出的结构化查询记录。
// 每次请求构建一次，交给搜索引擎后即丢弃，不做持久化。
type CandidateProfile struct {
	// Identity 是尽力而为的联系标识（通常是邮箱），永不为空。
	Identity string `json:"identity"`
	// Filters 是候选的元数据过滤条件，值可能为空或为字面量 "null"，
	// 激活集合的计算在搜索引擎侧完成。
	Filters map[string]string `json:"filters"`
	// Summary 是用于向量检索的语义摘要，永不为空（失败时回退为原始文本）。
	Summary string `json:"summary"`
}
