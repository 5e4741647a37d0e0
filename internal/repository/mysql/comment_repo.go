package mysql

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"discussify/internal/model"
)

type CommentRepository struct {
	DB *gorm.DB
}

var ErrPostGone = errors.New("post missing or deleted")

// Create inserts the comment and increments the post's commentCount as a
// paired operation: both happen in one transaction or neither does.
func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var post model.Post
		err := tx.Where("id = ? AND is_deleted = ?", comment.PostID, false).First(&post).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostGone
		}
		if err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
}

func (r *CommentRepository) FindByID(id uint64) (*model.Comment, error) {
	var comment model.Comment
	err := r.DB.First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) ListByPost(postID uint64, offset, limit int) ([]model.Comment, int64, error) {
	q := r.DB.Model(&model.Comment{}).
		Where("post_id = ? AND is_deleted = ?", postID, false)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Comment
	err := q.Order("created_at ASC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *CommentRepository) SoftDelete(id uint64) error {
	now := time.Now()
	return r.DB.Model(&model.Comment{}).Where("id = ?", id).
		Updates(map[string]any{"is_deleted": true, "deleted_at": now}).Error
}
