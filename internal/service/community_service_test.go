package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"discussify/internal/apperr"
	"discussify/internal/model"
)

func newCommunityFixture(t *testing.T) (*CommunityService, *MembershipService, *model.User) {
	db := newTestDB(t)
	notifications := NewNotificationService(db)
	return NewCommunityService(db, notifications), NewMembershipService(db, notifications), seedUser(t, db, "founder")
}

func TestCreateCommunitySeedsAdmin(t *testing.T) {
	communities, membership, founder := newCommunityFixture(t)

	c, err := communities.Create(founder, CreateCommunityInput{
		Name:        "Tech & Coffee Lovers!!",
		Description: "caffeine and code",
		Categories:  []string{"Technology", "Food"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tech-coffee-lovers", c.Slug)
	assert.Equal(t, founder.ID, c.AdminID)
	assert.EqualValues(t, 1, c.MemberCount)

	role, err := membership.members.RoleOf(c.ID, founder.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MemberRoleAdmin, role, "the creator holds the admin seat")
}

func TestCreateCommunityValidation(t *testing.T) {
	communities, _, founder := newCommunityFixture(t)

	_, err := communities.Create(founder, CreateCommunityInput{
		Name: "ab", Description: "too short a name", Categories: []string{"Technology"},
	})
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = communities.Create(founder, CreateCommunityInput{
		Name: "No Categories", Description: "missing tags",
	})
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = communities.Create(founder, CreateCommunityInput{
		Name: "Bad Tag", Description: "x", Categories: []string{"Blockchain Wizardry"},
	})
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestCreateCommunityNameConflict(t *testing.T) {
	communities, _, founder := newCommunityFixture(t)

	_, err := communities.Create(founder, CreateCommunityInput{
		Name: "Gopher Den", Description: "x", Categories: []string{"Technology"},
	})
	require.NoError(t, err)

	_, err = communities.Create(founder, CreateCommunityInput{
		Name: "Gopher Den", Description: "y", Categories: []string{"Technology"},
	})
	assert.True(t, apperr.Is(err, apperr.Conflict))

	// distinct names that collapse to the same slug also collide
	_, err = communities.Create(founder, CreateCommunityInput{
		Name: "Gopher  Den!", Description: "z", Categories: []string{"Technology"},
	})
	assert.True(t, apperr.Is(err, apperr.Conflict))
}

func TestGetBySlugAndID(t *testing.T) {
	communities, _, founder := newCommunityFixture(t)
	c, err := communities.Create(founder, CreateCommunityInput{
		Name: "Gopher Den", Description: "x", Categories: []string{"Technology"},
	})
	require.NoError(t, err)

	bySlug, err := communities.Get(founder.ID, "gopher-den")
	require.NoError(t, err)
	assert.Equal(t, c.ID, bySlug.ID)

	byID, err := communities.Get(founder.ID, idStr(c.ID))
	require.NoError(t, err)
	assert.Equal(t, c.ID, byID.ID)

	_, err = communities.Get(founder.ID, "no-such-place")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestGetPrivateCommunityMembersOnly(t *testing.T) {
	communities, _, founder := newCommunityFixture(t)
	db := communities.communities.DB
	c, err := communities.Create(founder, CreateCommunityInput{
		Name: "Inner Circle", Description: "x", Categories: []string{"Technology"},
		Visibility: model.VisibilityPrivate,
	})
	require.NoError(t, err)

	_, err = communities.Get(founder.ID, c.Slug)
	require.NoError(t, err, "members see private communities")

	outsider := seedUser(t, db, "outsider")
	_, err = communities.Get(outsider.ID, c.Slug)
	assert.True(t, apperr.Is(err, apperr.Forbidden))
}

func TestPopularNeedsMoreThanTwoMembers(t *testing.T) {
	communities, membership, founder := newCommunityFixture(t)
	db := communities.communities.DB

	solo, err := communities.Create(founder, CreateCommunityInput{
		Name: "Just Me", Description: "x", Categories: []string{"Technology"},
	})
	require.NoError(t, err)
	busy, err := communities.Create(founder, CreateCommunityInput{
		Name: "Busy Place", Description: "x", Categories: []string{"Technology"},
	})
	require.NoError(t, err)
	for _, name := range []string{"joiner1", "joiner2"} {
		joiner := seedUser(t, db, name)
		_, err = membership.Join(joiner.ID, busy.Slug)
		require.NoError(t, err)
	}

	list, err := communities.Popular(10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, busy.ID, list[0].ID)
	assert.NotEqual(t, solo.ID, list[0].ID)
}

func TestDiscoverableExcludesOwnCommunities(t *testing.T) {
	communities, membership, founder := newCommunityFixture(t)
	db := communities.communities.DB
	other := seedUser(t, db, "other")

	mine, err := communities.Create(founder, CreateCommunityInput{
		Name: "My Den", Description: "x", Categories: []string{"Technology"},
	})
	require.NoError(t, err)
	theirs, err := communities.Create(other, CreateCommunityInput{
		Name: "Their Den", Description: "x", Categories: []string{"Music"},
	})
	require.NoError(t, err)
	joined, err := communities.Create(other, CreateCommunityInput{
		Name: "Joined Den", Description: "x", Categories: []string{"Music"},
	})
	require.NoError(t, err)
	_, err = membership.Join(founder.ID, joined.Slug)
	require.NoError(t, err)

	list, err := communities.Discoverable(founder.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, theirs.ID, list[0].ID)
	assert.NotEqual(t, mine.ID, list[0].ID)
}

func TestRecommendedMatchesInterests(t *testing.T) {
	communities, _, founder := newCommunityFixture(t)
	db := communities.communities.DB

	_, err := communities.Create(founder, CreateCommunityInput{
		Name: "Sound Stage", Description: "x", Categories: []string{"Music", "Art"},
	})
	require.NoError(t, err)
	_, err = communities.Create(founder, CreateCommunityInput{
		Name: "Kitchen Talk", Description: "x", Categories: []string{"Food"},
	})
	require.NoError(t, err)

	fan := seedUser(t, db, "fan")
	fan.Interests = datatypes.JSONSlice[string]{"Music"}
	require.NoError(t, db.Save(fan).Error)

	list, err := communities.Recommended(fan)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sound-stage", list[0].Slug)

	nobody := seedUser(t, db, "blank")
	list, err = communities.Recommended(nobody)
	require.NoError(t, err)
	assert.Empty(t, list, "no interests means no recommendations")
}
