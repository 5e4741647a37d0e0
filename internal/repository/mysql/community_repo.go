package mysql

import (
	"errors"
	"strconv"

	"gorm.io/gorm"

	"discussify/internal/model"
)

type CommunityRepository struct {
	DB *gorm.DB
}

// Create inserts the community and seeds its member list with the creator as
// admin, in one transaction. memberCount starts at 1.
func (r *CommunityRepository) Create(c *model.Community) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		c.MemberCount = 1
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return tx.Create(&model.CommunityMember{
			CommunityID: c.ID,
			UserID:      c.AdminID,
			Role:        model.MemberRoleAdmin,
		}).Error
	})
}

func (r *CommunityRepository) FindByID(id uint64) (*model.Community, error) {
	var community model.Community
	err := r.DB.First(&community, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *CommunityRepository) FindBySlug(slug string) (*model.Community, error) {
	var community model.Community
	err := r.DB.Where("slug = ?", slug).First(&community).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *CommunityRepository) FindByName(name string) (*model.Community, error) {
	var community model.Community
	err := r.DB.Where("name = ?", name).First(&community).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &community, nil
}

// FindByIDOrSlug resolves a reference token: a numeric token is tried as an
// id first, then everything falls back to slug lookup. (nil, nil) means not
// found.
func (r *CommunityRepository) FindByIDOrSlug(token string) (*model.Community, error) {
	if id, err := strconv.ParseUint(token, 10, 64); err == nil {
		community, err := r.FindByID(id)
		if err != nil || community != nil {
			return community, err
		}
	}
	return r.FindBySlug(token)
}

func (r *CommunityRepository) Save(c *model.Community) error {
	return r.DB.Save(c).Error
}

// ListFilter narrows community listings. Zero values mean "no constraint".
type ListFilter struct {
	ActiveOnly     bool
	Visibility     string
	HideHidden     bool
	MinMembers     int64
	MemberID       uint64 // only communities the account belongs to
	NotMemberID    uint64 // only communities the account does not belong to
	NotAdminID     uint64 // exclude communities the account administers
	OrderByMembers bool
	Offset         int
	Limit          int
}

func (r *CommunityRepository) List(f ListFilter) ([]model.Community, error) {
	q := r.DB.Model(&model.Community{})
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if f.Visibility != "" {
		q = q.Where("visibility = ?", f.Visibility)
	}
	if f.HideHidden {
		q = q.Where("visibility <> ?", model.VisibilityHidden)
	}
	if f.MinMembers > 0 {
		q = q.Where("member_count >= ?", f.MinMembers)
	}
	memberOf := r.DB.Model(&model.CommunityMember{}).Select("community_id")
	if f.MemberID != 0 {
		q = q.Where("id IN (?)", memberOf.Where("user_id = ?", f.MemberID))
	}
	if f.NotMemberID != 0 {
		q = q.Where("id NOT IN (?)", r.DB.Model(&model.CommunityMember{}).
			Select("community_id").Where("user_id = ?", f.NotMemberID))
	}
	if f.NotAdminID != 0 {
		q = q.Where("admin_id <> ?", f.NotAdminID)
	}
	if f.OrderByMembers {
		q = q.Order("member_count DESC")
	} else {
		q = q.Order("created_at DESC")
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var list []model.Community
	err := q.Find(&list).Error
	return list, err
}

func (r *CommunityRepository) ListAll(offset, limit int) ([]model.Community, int64, error) {
	var total int64
	if err := r.DB.Model(&model.Community{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Community
	err := r.DB.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *CommunityRepository) Count() (int64, error) {
	var n int64
	err := r.DB.Model(&model.Community{}).Count(&n).Error
	return n, err
}
