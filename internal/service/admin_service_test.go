package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"discussify/internal/apperr"
	"discussify/internal/model"
)

type adminFixture struct {
	db         *gorm.DB
	admin      *AdminService
	membership *MembershipService
	posts      *PostService
	siteAdmin  *model.User
	community  *model.Community
}

func newAdminFixture(t *testing.T) *adminFixture {
	db := newTestDB(t)
	notifications := NewNotificationService(db)
	membership := NewMembershipService(db, notifications)
	siteAdmin := seedUser(t, db, "boss")
	siteAdmin.Role = model.RoleAdmin
	require.NoError(t, db.Save(siteAdmin).Error)
	community := seedCommunity(t, db, siteAdmin, "Ops HQ")
	return &adminFixture{
		db:         db,
		admin:      NewAdminService(db, membership),
		membership: membership,
		posts:      NewPostService(db, notifications, nil),
		siteAdmin:  siteAdmin,
		community:  community,
	}
}

func TestAnalyticsCounts(t *testing.T) {
	f := newAdminFixture(t)
	seedUser(t, f.db, "extra")
	_, err := f.posts.Create(context.Background(), f.siteAdmin, CreatePostInput{
		CommunityID: f.community.ID, Body: "hello",
	})
	require.NoError(t, err)

	a, err := f.admin.Analytics()
	require.NoError(t, err)
	assert.EqualValues(t, 2, a.TotalUsers)
	assert.EqualValues(t, 1, a.TotalCommunities)
	assert.EqualValues(t, 1, a.TotalPosts)
	assert.EqualValues(t, 2, a.NewUsersThisWeek)
}

func TestAdminUpdateUserRoleAndMemberships(t *testing.T) {
	f := newAdminFixture(t)
	target := seedUser(t, f.db, "promotee")

	role := model.RoleModerator
	user, joined, err := f.admin.UpdateUser(f.siteAdmin.ID, target.ID, AdminUpdateUserInput{
		Role:           &role,
		AddCommunities: []uint64{f.community.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleModerator, user.Role)
	require.Len(t, joined, 1)
	assert.Equal(t, f.community.ID, joined[0].ID)

	seat, err := f.membership.members.RoleOf(f.community.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MemberRoleModerator, seat, "sitewide moderators land with the moderator seat")

	_, joined, err = f.admin.UpdateUser(f.siteAdmin.ID, target.ID, AdminUpdateUserInput{
		RemoveCommunities: []uint64{f.community.ID},
	})
	require.NoError(t, err)
	assert.Empty(t, joined)
}

func TestAdminCannotLockSelfOut(t *testing.T) {
	f := newAdminFixture(t)

	demote := model.RoleUser
	_, _, err := f.admin.UpdateUser(f.siteAdmin.ID, f.siteAdmin.ID, AdminUpdateUserInput{Role: &demote})
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	inactive := false
	_, _, err = f.admin.UpdateUser(f.siteAdmin.ID, f.siteAdmin.ID, AdminUpdateUserInput{IsActive: &inactive})
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	// other edits to their own account are fine
	bio := "still the boss"
	updated, _, err := f.admin.UpdateUser(f.siteAdmin.ID, f.siteAdmin.ID, AdminUpdateUserInput{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
}

func TestAdminUpdateUserValidation(t *testing.T) {
	f := newAdminFixture(t)
	target := seedUser(t, f.db, "target")

	bad := "superuser"
	_, _, err := f.admin.UpdateUser(f.siteAdmin.ID, target.ID, AdminUpdateUserInput{Role: &bad})
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, _, err = f.admin.UpdateUser(f.siteAdmin.ID, 9999, AdminUpdateUserInput{})
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestAdminPostModeration(t *testing.T) {
	f := newAdminFixture(t)
	post, err := f.posts.Create(context.Background(), f.siteAdmin, CreatePostInput{
		CommunityID: f.community.ID, Body: "original",
	})
	require.NoError(t, err)

	edited, err := f.admin.EditPost(post.ID, "cleaned up")
	require.NoError(t, err)
	assert.Equal(t, "cleaned up", edited.Body)
	assert.NotNil(t, edited.EditedAt)

	_, err = f.admin.EditPost(post.ID, "  ")
	assert.True(t, apperr.Is(err, apperr.Validation))

	require.NoError(t, f.admin.ReportPost(f.siteAdmin.ID, post.ID, "flagging for review"))
	reports, err := f.admin.PostReports(post.ID)
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	require.NoError(t, f.admin.ClearReports(post.ID))
	reports, err = f.admin.PostReports(post.ID)
	require.NoError(t, err)
	assert.Empty(t, reports)

	require.NoError(t, f.admin.DeletePost(post.ID))
	list, total, err := f.admin.CommunityPosts(f.community.ID, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.EqualValues(t, 0, total)

	assert.True(t, apperr.Is(f.admin.DeletePost(9999), apperr.NotFound))
}

func TestAdminListUsers(t *testing.T) {
	f := newAdminFixture(t)
	seedUser(t, f.db, "alice")
	seedUser(t, f.db, "bob")

	list, total, err := f.admin.ListUsers(1, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.EqualValues(t, 3, total)
}
