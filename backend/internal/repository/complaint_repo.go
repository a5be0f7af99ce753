package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
)

// ComplaintFilter 投诉列表过滤条件
// SubmittedBy 与 SupervisorScope 由调用方根据角色填充
type ComplaintFilter struct {
	SubmittedBy     string // 居民仅可见本人提交
	SupervisorScope string // 主管可见未分配或分配给自己的投诉
	Status          string
	Severity        string
	AreaType        string
}

// ComplaintRepository 投诉数据访问接口
type ComplaintRepository interface {
	// Create 写入投诉并从 complaint_no_seq 分配编号
	Create(ctx context.Context, c *model.Complaint) error
	GetByID(ctx context.Context, id string) (*model.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]model.Complaint, error)
	// Update 仅写入 fields 指定的列；fields 为空时整行保存
	Update(ctx context.Context, c *model.Complaint, fields ...string) error
	Delete(ctx context.Context, id string) error
	// ListSchedulable 待自动排期的投诉，按优先级降序、创建时间升序
	ListSchedulable(ctx context.Context) ([]model.Complaint, error)
}

type complaintRepo struct {
	db *gorm.DB
}

// NewComplaintRepo 创建 ComplaintRepository 实例
func NewComplaintRepo(db *gorm.DB) ComplaintRepository {
	return &complaintRepo{db: db}
}

func (r *complaintRepo) Create(ctx context.Context, c *model.Complaint) error {
	db := r.db.WithContext(ctx)
	if c.ComplaintNo == "" {
		var seq int64
		if err := db.Raw("SELECT nextval('complaint_no_seq')").Scan(&seq).Error; err != nil {
			return err
		}
		c.ComplaintNo = model.FormatComplaintNo(seq)
	}
	c.EnforceCompletionInvariant()
	return db.Create(c).Error
}

func (r *complaintRepo) GetByID(ctx context.Context, id string) (*model.Complaint, error) {
	var c model.Complaint
	err := r.db.WithContext(ctx).
		Where("complaint_id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *complaintRepo) List(ctx context.Context, filter ComplaintFilter) ([]model.Complaint, error) {
	var complaints []model.Complaint
	db := r.db.WithContext(ctx)

	if filter.SubmittedBy != "" {
		db = db.Where("submitted_by = ?", filter.SubmittedBy)
	}
	if filter.SupervisorScope != "" {
		db = db.Where("(supervisor_id = ? OR supervisor_id IS NULL)", filter.SupervisorScope)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		db = db.Where("severity = ?", filter.Severity)
	}
	if filter.AreaType != "" {
		db = db.Where("area_type = ?", filter.AreaType)
	}

	err := db.Order("date_raised DESC").Find(&complaints).Error
	return complaints, err
}

func (r *complaintRepo) Update(ctx context.Context, c *model.Complaint, fields ...string) error {
	if c.EnforceCompletionInvariant() && len(fields) > 0 {
		fields = append(fields, "status")
	}
	db := r.db.WithContext(ctx)
	if len(fields) == 0 {
		return db.Save(c).Error
	}
	return db.Model(c).Select(append(fields, "updated_at")).Updates(c).Error
}

func (r *complaintRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("complaint_id = ?", id).
		Delete(&model.Complaint{}).Error
}

func (r *complaintRepo) ListSchedulable(ctx context.Context) ([]model.Complaint, error) {
	var complaints []model.Complaint
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ComplaintPending).
		Where("severity <> '' AND priority IS NOT NULL").
		Order("priority DESC, created_at ASC").
		Find(&complaints).Error
	return complaints, err
}
