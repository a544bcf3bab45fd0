// Package repository 提供了数据访问层的实现。
package repository

import (
	"skillsync-go/internal/model"

	"gorm.io/gorm"
)

// JobPostingRepository 定义了对 job_postings 暂存表的数据操作接口。
type JobPostingRepository interface {
	Save(posting *model.JobPosting) error
	FindByJobID(jobID string) (*model.JobPosting, error)
	DeleteByJobID(jobID string) error
	Count() (int64, error)
}

type jobPostingRepository struct {
	db *gorm.DB
}

// NewJobPostingRepository 创建一个新的 JobPostingRepository 实例。
func NewJobPostingRepository(db *gorm.DB) JobPostingRepository {
	return &jobPostingRepository{db: db}
}

// Save 保存一条职位暂存记录。
func (r *jobPostingRepository) Save(posting *model.JobPosting) error {
	return r.db.Create(posting).Error
}

// FindByJobID 根据 job_id 查找职位记录，未找到时返回 (nil, nil)。
func (r *jobPostingRepository) FindByJobID(jobID string) (*model.JobPosting, error) {
	var posting model.JobPosting
	err := r.db.Where("job_id = ?", jobID).First(&posting).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &posting, nil
}

// DeleteByJobID 根据 job_id 删除职位记录（重复摄取前的幂等清理）。
func (r *jobPostingRepository) DeleteByJobID(jobID string) error {
	return r.db.Where("job_id = ?", jobID).Delete(&model.JobPosting{}).Error
}

// Count 返回已暂存的职位总数。
func (r *jobPostingRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.JobPosting{}).Count(&count).Error
	return count, err
}
