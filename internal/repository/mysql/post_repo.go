package mysql

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"discussify/internal/model"
)

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(post *model.Post) error {
	return r.DB.Create(post).Error
}

// FindByID returns the post regardless of its deleted flag; soft-deleted
// posts stay reachable by id.
func (r *PostRepository) FindByID(id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListByCommunity excludes soft-deleted posts, newest first.
func (r *PostRepository) ListByCommunity(communityID uint64, offset, limit int) ([]model.Post, int64, error) {
	q := r.DB.Model(&model.Post{}).
		Where("community_id = ? AND is_deleted = ?", communityID, false)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Post
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *PostRepository) SoftDelete(id uint64) error {
	now := time.Now()
	return r.DB.Model(&model.Post{}).Where("id = ?", id).
		Updates(map[string]any{"is_deleted": true, "deleted_at": now}).Error
}

func (r *PostRepository) UpdateBody(id uint64, body string) error {
	now := time.Now()
	return r.DB.Model(&model.Post{}).Where("id = ?", id).
		Updates(map[string]any{"body": body, "edited_at": now}).Error
}

func (r *PostRepository) AddReport(report *model.PostReport) error {
	return r.DB.Create(report).Error
}

func (r *PostRepository) ListReports(postID uint64) ([]model.PostReport, error) {
	var reports []model.PostReport
	err := r.DB.Where("post_id = ?", postID).Order("reported_at ASC").Find(&reports).Error
	return reports, err
}

// ClearReports empties the report list; no audit trail of the resolution is
// kept.
func (r *PostRepository) ClearReports(postID uint64) error {
	return r.DB.Where("post_id = ?", postID).Delete(&model.PostReport{}).Error
}

func (r *PostRepository) Count() (int64, error) {
	var n int64
	err := r.DB.Model(&model.Post{}).Count(&n).Error
	return n, err
}
