package mysql

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"discussify/internal/model"
)

type CommunityMemberRepository struct {
	DB *gorm.DB
}

// Add inserts a membership row and recomputes the community's memberCount in
// one transaction. The unique (community_id, user_id) index makes the insert
// race-safe: of two concurrent joins at most one reports added=true.
func (r *CommunityMemberRepository) Add(communityID, userID uint64, role string) (added bool, err error) {
	err = r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&model.CommunityMember{
			CommunityID: communityID,
			UserID:      userID,
			Role:        role,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		added = true
		return recountMembers(tx, communityID)
	})
	return added, err
}

// Remove deletes a membership row, recomputing memberCount when a row was
// actually removed.
func (r *CommunityMemberRepository) Remove(communityID, userID uint64) (removed bool, err error) {
	err = r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("community_id = ? AND user_id = ?", communityID, userID).
			Delete(&model.CommunityMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		return recountMembers(tx, communityID)
	})
	return removed, err
}

func recountMembers(tx *gorm.DB, communityID uint64) error {
	return tx.Model(&model.Community{}).
		Where("id = ?", communityID).
		UpdateColumn("member_count", tx.Model(&model.CommunityMember{}).
			Select("COUNT(*)").Where("community_id = ?", communityID)).Error
}

func (r *CommunityMemberRepository) IsMember(communityID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, err
}

// RoleOf returns the member role, or "" when not a member.
func (r *CommunityMemberRepository) RoleOf(communityID, userID uint64) (string, error) {
	var member model.CommunityMember
	err := r.DB.Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

func (r *CommunityMemberRepository) List(communityID uint64) ([]model.CommunityMember, error) {
	var members []model.CommunityMember
	err := r.DB.Where("community_id = ?", communityID).
		Order("joined_at ASC").Find(&members).Error
	return members, err
}

func (r *CommunityMemberRepository) IsBanned(communityID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.Model(&model.CommunityBan{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *CommunityMemberRepository) Ban(ban *model.CommunityBan) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(ban).Error
}

func (r *CommunityMemberRepository) Unban(communityID, userID uint64) error {
	return r.DB.Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&model.CommunityBan{}).Error
}
