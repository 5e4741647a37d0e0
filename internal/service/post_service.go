package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"discussify/internal/apperr"
	"discussify/internal/model"
	"discussify/internal/pkg"
	"discussify/internal/repository/mysql"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".webm": true,
}

const maxPostMedia = 5

type PostService struct {
	posts         *mysql.PostRepository
	comments      *mysql.CommentRepository
	votes         *mysql.VoteRepository
	members       *mysql.CommunityMemberRepository
	communities   *mysql.CommunityRepository
	notifications *NotificationService
	publisher     Publisher
}

func NewPostService(db *gorm.DB, notifications *NotificationService, publisher Publisher) *PostService {
	return &PostService{
		posts:         &mysql.PostRepository{DB: db},
		comments:      &mysql.CommentRepository{DB: db},
		votes:         &mysql.VoteRepository{DB: db},
		members:       &mysql.CommunityMemberRepository{DB: db},
		communities:   &mysql.CommunityRepository{DB: db},
		notifications: notifications,
		publisher:     publisher,
	}
}

type CreatePostInput struct {
	CommunityID uint64
	Body        string
	MediaPaths  []string
	LinkURL     string
}

// classifyMedia derives the post type from the uploaded files. Any image
// makes it an image post; otherwise the first video wins.
func classifyMedia(paths []string) (typ string, images []string, videoURL string) {
	for _, p := range paths {
		ext := strings.ToLower(filepath.Ext(p))
		switch {
		case imageExts[ext]:
			images = append(images, p)
		case videoExts[ext]:
			if videoURL == "" {
				videoURL = p
			}
		}
	}
	switch {
	case len(images) > 0:
		return model.PostTypeImage, images, ""
	case videoURL != "":
		return model.PostTypeVideo, nil, videoURL
	default:
		return model.PostTypeText, nil, ""
	}
}

func (s *PostService) Create(ctx context.Context, author *model.User, in CreatePostInput) (*model.Post, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, apperr.New(apperr.Validation, "post body cannot be empty")
	}
	if len(body) > model.MaxPostLength {
		return nil, apperr.Newf(apperr.Validation, "post body must be at most %d characters", model.MaxPostLength)
	}
	if len(in.MediaPaths) > maxPostMedia {
		return nil, apperr.Newf(apperr.Validation, "at most %d media files per post", maxPostMedia)
	}
	c, err := s.communities.FindByID(in.CommunityID)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.IsActive {
		return nil, apperr.New(apperr.NotFound, "community not found")
	}
	member, err := s.members.IsMember(c.ID, author.ID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperr.New(apperr.Forbidden, "only members can post in this community")
	}

	typ, images, videoURL := classifyMedia(in.MediaPaths)
	if typ == model.PostTypeText && in.LinkURL != "" {
		typ = model.PostTypeLink
	}
	post := &model.Post{
		CommunityID: c.ID,
		AuthorID:    author.ID,
		Body:        body,
		Type:        typ,
		VideoURL:    videoURL,
		LinkURL:     in.LinkURL,
	}
	if len(images) > 0 {
		post.Images = datatypes.JSONSlice[string](images)
	}
	if err := s.posts.Create(post); err != nil {
		return nil, err
	}

	s.fanOutNewPost(c, author, post)
	publish(ctx, s.publisher, c.ID, pkg.EventNewPost, post)
	return post, nil
}

// fanOutNewPost notifies every other community member, best-effort.
func (s *PostService) fanOutNewPost(c *model.Community, author *model.User, post *model.Post) {
	members, err := s.members.List(c.ID)
	if err != nil {
		return
	}
	others := lo.Filter(members, func(m model.CommunityMember, _ int) bool {
		return m.UserID != author.ID
	})
	for _, m := range others {
		s.notifications.Push(m.UserID, model.NotificationPost,
			"New post in "+c.Name,
			fmt.Sprintf("%s posted in %s", author.Username, c.Name),
			map[string]any{"communityId": c.ID, "postId": post.ID})
	}
}

func (s *PostService) Get(id uint64) (*model.Post, error) {
	p, err := s.posts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.IsDeleted {
		return nil, apperr.New(apperr.NotFound, "post not found")
	}
	return p, nil
}

// ViewerVote reports the caller's current vote on a post: +1, -1 or 0.
func (s *PostService) ViewerVote(userID, postID uint64) (int8, error) {
	return s.votes.PostVoteOf(userID, postID)
}

// ListByCommunity pages a community feed, newest first. Private communities
// only open up to members.
func (s *PostService) ListByCommunity(viewerID uint64, idOrSlug string, page, size int) ([]model.Post, int64, error) {
	c, err := s.communities.FindByIDOrSlug(idOrSlug)
	if err != nil {
		return nil, 0, err
	}
	if c == nil || !c.IsActive {
		return nil, 0, apperr.New(apperr.NotFound, "community not found")
	}
	if c.Visibility == model.VisibilityPrivate {
		member, err := s.members.IsMember(c.ID, viewerID)
		if err != nil {
			return nil, 0, err
		}
		if !member {
			return nil, 0, apperr.New(apperr.Forbidden, "this community is private")
		}
	}
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.posts.ListByCommunity(c.ID, (page-1)*size, size)
}

func voteValue(direction string) (int8, error) {
	switch direction {
	case "up":
		return model.VoteUp, nil
	case "down":
		return model.VoteDown, nil
	default:
		return 0, apperr.Newf(apperr.Validation, "unknown vote direction %q", direction)
	}
}

// Vote toggles the caller's vote on a post. Voting the same direction twice
// removes the vote; voting the other direction flips it.
func (s *PostService) Vote(ctx context.Context, userID, postID uint64, direction string) (*model.Post, error) {
	value, err := voteValue(direction)
	if err != nil {
		return nil, err
	}
	post, err := s.Get(postID)
	if err != nil {
		return nil, err
	}
	if err := s.votes.TogglePost(userID, postID, value); err != nil {
		return nil, err
	}
	post, err = s.reloadPost(postID)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.publisher, post.CommunityID, pkg.EventPostUpdated, post)
	return post, nil
}

// reloadPost re-reads a post after a mutation so the caller sees the fresh
// vote count. A row that vanished mid request surfaces as NotFound rather
// than a nil payload.
func (s *PostService) reloadPost(id uint64) (*model.Post, error) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.New(apperr.NotFound, "post not found")
	}
	return post, nil
}

func (s *PostService) Comment(ctx context.Context, author *model.User, postID uint64, body string, parentID *uint64) (*model.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.New(apperr.Validation, "comment cannot be empty")
	}
	if len(body) > model.MaxCommentLength {
		return nil, apperr.Newf(apperr.Validation, "comment must be at most %d characters", model.MaxCommentLength)
	}
	if parentID != nil {
		parent, err := s.comments.FindByID(*parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.IsDeleted || parent.PostID != postID {
			return nil, apperr.New(apperr.NotFound, "parent comment not found")
		}
	}
	comment := &model.Comment{
		PostID:   postID,
		AuthorID: author.ID,
		ParentID: parentID,
		Body:     body,
	}
	if err := s.comments.Create(comment); err != nil {
		if errors.Is(err, mysql.ErrPostGone) {
			return nil, apperr.New(apperr.NotFound, "post not found")
		}
		return nil, err
	}
	post, err := s.posts.FindByID(postID)
	if err == nil && post != nil {
		if post.AuthorID != author.ID {
			s.notifications.Push(post.AuthorID, model.NotificationComment,
				"New comment on your post",
				fmt.Sprintf("%s commented on your post", author.Username),
				map[string]any{"postId": post.ID, "commentId": comment.ID})
		}
		publish(ctx, s.publisher, post.CommunityID, pkg.EventPostUpdated, post)
	}
	return comment, nil
}

func (s *PostService) ListComments(postID uint64, page, size int) ([]model.Comment, int64, error) {
	if _, err := s.Get(postID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 50
	}
	return s.comments.ListByPost(postID, (page-1)*size, size)
}

func (s *PostService) VoteComment(userID, commentID uint64, direction string) (*model.Comment, error) {
	value, err := voteValue(direction)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.FindByID(commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil || comment.IsDeleted {
		return nil, apperr.New(apperr.NotFound, "comment not found")
	}
	if err := s.votes.ToggleComment(userID, commentID, value); err != nil {
		return nil, err
	}
	return s.comments.FindByID(commentID)
}

// DeleteComment soft-deletes a comment. Allowed for the comment author and
// for community moderators and admins.
func (s *PostService) DeleteComment(actor *model.User, commentID uint64) error {
	comment, err := s.comments.FindByID(commentID)
	if err != nil {
		return err
	}
	if comment == nil || comment.IsDeleted {
		return apperr.New(apperr.NotFound, "comment not found")
	}
	if comment.AuthorID != actor.ID && actor.Role != model.RoleAdmin {
		post, err := s.posts.FindByID(comment.PostID)
		if err != nil {
			return err
		}
		if post == nil {
			return apperr.New(apperr.NotFound, "post not found")
		}
		role, err := s.members.RoleOf(post.CommunityID, actor.ID)
		if err != nil {
			return err
		}
		if role != model.MemberRoleAdmin && role != model.MemberRoleModerator {
			return apperr.New(apperr.Forbidden, "you cannot delete this comment")
		}
	}
	return s.comments.SoftDelete(commentID)
}

// Delete soft-deletes a post. Allowed for the author, community moderators
// and admins, and site admins.
func (s *PostService) Delete(ctx context.Context, actor *model.User, postID uint64) error {
	post, err := s.Get(postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actor.ID && actor.Role != model.RoleAdmin {
		role, err := s.members.RoleOf(post.CommunityID, actor.ID)
		if err != nil {
			return err
		}
		if role != model.MemberRoleAdmin && role != model.MemberRoleModerator {
			return apperr.New(apperr.Forbidden, "you cannot delete this post")
		}
	}
	if err := s.posts.SoftDelete(postID); err != nil {
		return err
	}
	publish(ctx, s.publisher, post.CommunityID, pkg.EventPostUpdated, post)
	return nil
}

// Report flags a post for moderator review. Reports are append-only and a
// user may file more than one.
func (s *PostService) Report(reporterID, postID uint64, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperr.New(apperr.Validation, "a reason is required")
	}
	if len(reason) > 500 {
		return apperr.New(apperr.Validation, "reason must be at most 500 characters")
	}
	if _, err := s.Get(postID); err != nil {
		return err
	}
	return s.posts.AddReport(&model.PostReport{
		PostID:     postID,
		ReporterID: reporterID,
		Reason:     reason,
	})
}
