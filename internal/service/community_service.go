package service

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"discussify/internal/apperr"
	"discussify/internal/model"
	"discussify/internal/pkg"
	"discussify/internal/repository/mysql"
)

const recommendedLimit = 10

type CommunityService struct {
	communities   *mysql.CommunityRepository
	members       *mysql.CommunityMemberRepository
	notifications *NotificationService
}

func NewCommunityService(db *gorm.DB, notifications *NotificationService) *CommunityService {
	return &CommunityService{
		communities:   &mysql.CommunityRepository{DB: db},
		members:       &mysql.CommunityMemberRepository{DB: db},
		notifications: notifications,
	}
}

type CreateCommunityInput struct {
	Name        string
	Description string
	Categories  []string
	Visibility  string
	CoverImage  string
}

func (s *CommunityService) Create(creator *model.User, in CreateCommunityInput) (*model.Community, error) {
	name := strings.TrimSpace(in.Name)
	if len(name) < 3 || len(name) > 50 {
		return nil, apperr.New(apperr.Validation, "community name must be 3 to 50 characters")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, apperr.New(apperr.Validation, "description is required")
	}
	if len(desc) > 1000 {
		return nil, apperr.New(apperr.Validation, "description must be at most 1000 characters")
	}
	if len(in.Categories) == 0 {
		return nil, apperr.New(apperr.Validation, "at least one category is required")
	}
	for _, c := range in.Categories {
		if !model.ValidCategory(c) {
			return nil, apperr.Newf(apperr.Validation, "unknown category %q", c)
		}
	}
	visibility := in.Visibility
	if visibility == "" {
		visibility = model.VisibilityPublic
	}
	switch visibility {
	case model.VisibilityPublic, model.VisibilityPrivate, model.VisibilityHidden:
	default:
		return nil, apperr.Newf(apperr.Validation, "unknown visibility %q", visibility)
	}

	if existing, err := s.communities.FindByName(name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.New(apperr.Conflict, "a community with that name already exists")
	}
	slug := pkg.Slugify(name)
	if existing, err := s.communities.FindBySlug(slug); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.New(apperr.Conflict, "a community with that name already exists")
	}

	c := &model.Community{
		Name:        name,
		Slug:        slug,
		Description: desc,
		Categories:  datatypes.JSONSlice[string](lo.Uniq(in.Categories)),
		CoverImage:  in.CoverImage,
		Visibility:  visibility,
		IsActive:    true,
		AdminID:     creator.ID,
	}
	if err := s.communities.Create(c); err != nil {
		return nil, err
	}

	s.notifications.Push(creator.ID, model.NotificationCommunity,
		"Community created",
		fmt.Sprintf("%s is live. Invite some members!", c.Name),
		map[string]any{"communityId": c.ID})
	return c, nil
}

// Get resolves a community by numeric ID or slug. Private communities are
// visible to members only; hidden ones resolve for members all the same.
func (s *CommunityService) Get(viewerID uint64, idOrSlug string) (*model.Community, error) {
	c, err := s.communities.FindByIDOrSlug(idOrSlug)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.IsActive {
		return nil, apperr.New(apperr.NotFound, "community not found")
	}
	if c.Visibility == model.VisibilityPrivate {
		member, err := s.members.IsMember(c.ID, viewerID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, apperr.New(apperr.Forbidden, "this community is private")
		}
	}
	return c, nil
}

// Popular lists public communities with more than two members, largest
// first.
func (s *CommunityService) Popular(limit int) ([]model.Community, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return s.communities.List(mysql.ListFilter{
		ActiveOnly:     true,
		Visibility:     model.VisibilityPublic,
		MinMembers:     3,
		OrderByMembers: true,
		Limit:          limit,
	})
}

// Discoverable lists communities the viewer neither belongs to nor
// administers. Hidden communities never show up in discovery; private ones
// do, though joining them still takes an invite.
func (s *CommunityService) Discoverable(viewerID uint64, limit int) ([]model.Community, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return s.communities.List(mysql.ListFilter{
		ActiveOnly:     true,
		HideHidden:     true,
		NotMemberID:    viewerID,
		NotAdminID:     viewerID,
		OrderByMembers: true,
		Limit:          limit,
	})
}

// Recommended matches the viewer's interests against community categories.
// The overlap check runs here rather than in SQL so the JSON column stays
// portable across drivers.
func (s *CommunityService) Recommended(viewer *model.User) ([]model.Community, error) {
	if len(viewer.Interests) == 0 {
		return []model.Community{}, nil
	}
	candidates, err := s.communities.List(mysql.ListFilter{
		ActiveOnly:     true,
		HideHidden:     true,
		NotMemberID:    viewer.ID,
		OrderByMembers: true,
	})
	if err != nil {
		return nil, err
	}
	interests := []string(viewer.Interests)
	matched := lo.Filter(candidates, func(c model.Community, _ int) bool {
		return len(lo.Intersect(interests, []string(c.Categories))) > 0
	})
	if len(matched) > recommendedLimit {
		matched = matched[:recommendedLimit]
	}
	return matched, nil
}

func (s *CommunityService) ListAll(page, size int) ([]model.Community, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.communities.ListAll((page-1)*size, size)
}
