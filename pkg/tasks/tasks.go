// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// PostingIngestTask represents one job posting waiting to be embedded and indexed.
type PostingIngestTask struct {
	JobID       string `json:"job_id"`
	CompanyName string `json:"company_name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	MaxSalary   string `json:"max_salary"`
	PayPeriod   string `json:"pay_period"`
	Location    string `json:"location"`
	WorkType    string `json:"formatted_work_type"`
	SkillsDesc  string `json:"skills_desc"`
}
