package mysql

import (
	"errors"

	"gorm.io/gorm"

	"discussify/internal/model"
)

type VoteRepository struct {
	DB *gorm.DB
}

// TogglePost applies toggle voting for one account on one post inside a
// transaction: same direction twice cancels the vote, the opposite direction
// replaces it. The post's voteCount is recomputed from the vote rows before
// commit, so it always equals |upvotes| - |downvotes|.
func (r *VoteRepository) TogglePost(userID, postID uint64, value int8) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var vote model.PostVote
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&vote).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&model.PostVote{
				PostID: postID, UserID: userID, Value: value,
			}).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		case vote.Value == value:
			if err := tx.Delete(&vote).Error; err != nil {
				return err
			}
		default:
			if err := tx.Model(&vote).Update("value", value).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Post{}).Where("id = ?", postID).
			UpdateColumn("vote_count", tx.Model(&model.PostVote{}).
				Select("COALESCE(SUM(value), 0)").Where("post_id = ?", postID)).Error
	})
}

// ToggleComment mirrors TogglePost for comments.
func (r *VoteRepository) ToggleComment(userID, commentID uint64, value int8) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var vote model.CommentVote
		err := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).First(&vote).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&model.CommentVote{
				CommentID: commentID, UserID: userID, Value: value,
			}).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		case vote.Value == value:
			if err := tx.Delete(&vote).Error; err != nil {
				return err
			}
		default:
			if err := tx.Model(&vote).Update("value", value).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Comment{}).Where("id = ?", commentID).
			UpdateColumn("vote_count", tx.Model(&model.CommentVote{}).
				Select("COALESCE(SUM(value), 0)").Where("comment_id = ?", commentID)).Error
	})
}

// PostVoteOf returns the account's current vote on the post (0 when none).
func (r *VoteRepository) PostVoteOf(userID, postID uint64) (int8, error) {
	var vote model.PostVote
	err := r.DB.Where("user_id = ? AND post_id = ?", userID, postID).First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return vote.Value, nil
}
