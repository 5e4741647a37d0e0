package service

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"discussify/internal/apperr"
	"discussify/internal/model"
	"discussify/internal/repository/mysql"
)

// AdminService backs the sitewide admin panel. Handlers gate every route
// behind an active admin account before any of these run.
type AdminService struct {
	users       *mysql.UserRepository
	communities *mysql.CommunityRepository
	posts       *mysql.PostRepository
	membership  *MembershipService
}

func NewAdminService(db *gorm.DB, membership *MembershipService) *AdminService {
	return &AdminService{
		users:       &mysql.UserRepository{DB: db},
		communities: &mysql.CommunityRepository{DB: db},
		posts:       &mysql.PostRepository{DB: db},
		membership:  membership,
	}
}

type Analytics struct {
	TotalUsers       int64 `json:"total_users"`
	TotalCommunities int64 `json:"total_communities"`
	TotalPosts       int64 `json:"total_posts"`
	NewUsersThisWeek int64 `json:"new_users_this_week"`
}

func (s *AdminService) Analytics() (*Analytics, error) {
	a := &Analytics{}
	var err error
	if a.TotalUsers, err = s.users.Count(); err != nil {
		return nil, err
	}
	if a.TotalCommunities, err = s.communities.Count(); err != nil {
		return nil, err
	}
	if a.TotalPosts, err = s.posts.Count(); err != nil {
		return nil, err
	}
	weekAgo := time.Now().AddDate(0, 0, -7)
	if a.NewUsersThisWeek, err = s.users.CountCreatedSince(weekAgo); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AdminService) ListUsers(page, size int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.users.List((page-1)*size, size)
}

type AdminUpdateUserInput struct {
	Role              *string
	IsActive          *bool
	Bio               *string
	AddCommunities    []uint64
	RemoveCommunities []uint64
}

// UpdateUser applies the admin edit. Admins cannot change their own role or
// deactivate themselves, which keeps the panel from locking itself out.
func (s *AdminService) UpdateUser(actorID, targetID uint64, in AdminUpdateUserInput) (*model.User, []model.Community, error) {
	target, err := s.users.FindByID(targetID)
	if err != nil {
		return nil, nil, err
	}
	if target == nil {
		return nil, nil, apperr.New(apperr.NotFound, "user not found")
	}
	if actorID == targetID {
		if in.Role != nil && *in.Role != target.Role {
			return nil, nil, apperr.New(apperr.Forbidden, "you cannot change your own role")
		}
		if in.IsActive != nil && !*in.IsActive {
			return nil, nil, apperr.New(apperr.Forbidden, "you cannot deactivate your own account")
		}
	}
	if in.Role != nil {
		switch *in.Role {
		case model.RoleUser, model.RoleModerator, model.RoleAdmin:
			target.Role = *in.Role
		default:
			return nil, nil, apperr.Newf(apperr.Validation, "unknown role %q", *in.Role)
		}
	}
	if in.IsActive != nil {
		target.IsActive = *in.IsActive
	}
	if in.Bio != nil {
		if len(*in.Bio) > 500 {
			return nil, nil, apperr.New(apperr.Validation, "bio must be at most 500 characters")
		}
		target.Bio = strings.TrimSpace(*in.Bio)
	}
	if err := s.users.Save(target); err != nil {
		return nil, nil, err
	}
	if len(in.AddCommunities) > 0 {
		if err := s.membership.BulkAdd(target, in.AddCommunities); err != nil {
			return nil, nil, err
		}
	}
	if len(in.RemoveCommunities) > 0 {
		if err := s.membership.BulkRemove(target, in.RemoveCommunities); err != nil {
			return nil, nil, err
		}
	}
	joined, err := s.membership.Joined(target.ID)
	if err != nil {
		return nil, nil, err
	}
	return target, joined, nil
}

func (s *AdminService) CommunityPosts(communityID uint64, page, size int) ([]model.Post, int64, error) {
	c, err := s.communities.FindByID(communityID)
	if err != nil {
		return nil, 0, err
	}
	if c == nil {
		return nil, 0, apperr.New(apperr.NotFound, "community not found")
	}
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.posts.ListByCommunity(communityID, (page-1)*size, size)
}

func (s *AdminService) findPost(postID uint64) (*model.Post, error) {
	p, err := s.posts.FindByID(postID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.New(apperr.NotFound, "post not found")
	}
	return p, nil
}

func (s *AdminService) DeletePost(postID uint64) error {
	if _, err := s.findPost(postID); err != nil {
		return err
	}
	return s.posts.SoftDelete(postID)
}

// EditPost rewrites a post body on behalf of moderation and stamps the edit
// time.
func (s *AdminService) EditPost(postID uint64, body string) (*model.Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.New(apperr.Validation, "post body cannot be empty")
	}
	if len(body) > model.MaxPostLength {
		return nil, apperr.Newf(apperr.Validation, "post body must be at most %d characters", model.MaxPostLength)
	}
	if _, err := s.findPost(postID); err != nil {
		return nil, err
	}
	if err := s.posts.UpdateBody(postID, body); err != nil {
		return nil, err
	}
	return s.posts.FindByID(postID)
}

func (s *AdminService) PostReports(postID uint64) ([]model.PostReport, error) {
	if _, err := s.findPost(postID); err != nil {
		return nil, err
	}
	return s.posts.ListReports(postID)
}

// ClearReports dismisses all reports on a post after review.
func (s *AdminService) ClearReports(postID uint64) error {
	if _, err := s.findPost(postID); err != nil {
		return err
	}
	return s.posts.ClearReports(postID)
}

func (s *AdminService) ReportPost(adminID, postID uint64, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperr.New(apperr.Validation, "a reason is required")
	}
	if _, err := s.findPost(postID); err != nil {
		return err
	}
	return s.posts.AddReport(&model.PostReport{
		PostID:     postID,
		ReporterID: adminID,
		Reason:     reason,
	})
}
