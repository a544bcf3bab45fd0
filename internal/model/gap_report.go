package model

// GapReport 是针对 (候选人摘要, 最佳职位) 的结构化差距分析结果。
// MatchScore 原样透传 LLM 的输出（数字或字符串），不做范围校验与截断。
type GapReport struct {
	MatchScore     any      `json:"match_score"`
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
	Advice         string   `json:"advice"`
}

// NoMatchesReport 返回"无匹配职位"的哨兵报告。
func NoMatchesReport() GapReport {
	return GapReport{
		MatchScore:     "0%",
		MatchingSkills: []string{},
		MissingSkills:  []string{},
		Advice:         "No relevant jobs found in the database. Try ingesting more postings first.",
	}
}
