package service

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"discussify/internal/apperr"
	"discussify/internal/model"
	"discussify/internal/repository/mysql"
)

// MembershipService owns every membership transition. The community_members
// table is the single source of truth; memberCount is recomputed inside the
// same transaction as each mutation, so the two can never drift.
type MembershipService struct {
	communities   *mysql.CommunityRepository
	members       *mysql.CommunityMemberRepository
	users         *mysql.UserRepository
	notifications *NotificationService
}

func NewMembershipService(db *gorm.DB, notifications *NotificationService) *MembershipService {
	return &MembershipService{
		communities:   &mysql.CommunityRepository{DB: db},
		members:       &mysql.CommunityMemberRepository{DB: db},
		users:         &mysql.UserRepository{DB: db},
		notifications: notifications,
	}
}

func (s *MembershipService) findCommunity(idOrSlug string) (*model.Community, error) {
	c, err := s.communities.FindByIDOrSlug(idOrSlug)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.IsActive {
		return nil, apperr.New(apperr.NotFound, "community not found")
	}
	return c, nil
}

// reloadCommunity re-reads a community after a membership mutation so the
// caller sees the fresh member count. A row that vanished mid request
// surfaces as NotFound rather than a nil payload.
func (s *MembershipService) reloadCommunity(id uint64) (*model.Community, error) {
	c, err := s.communities.FindByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.New(apperr.NotFound, "community not found")
	}
	return c, nil
}

func (s *MembershipService) Join(userID uint64, idOrSlug string) (*model.Community, error) {
	c, err := s.findCommunity(idOrSlug)
	if err != nil {
		return nil, err
	}
	banned, err := s.members.IsBanned(c.ID, userID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, apperr.New(apperr.Forbidden, "you are banned from this community")
	}
	member, err := s.members.IsMember(c.ID, userID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, apperr.New(apperr.Conflict, "already a member of this community")
	}
	if c.Visibility == model.VisibilityPrivate {
		invited, err := s.notifications.HasPendingInvite(userID, c.ID)
		if err != nil {
			return nil, err
		}
		if !invited {
			return nil, apperr.New(apperr.Forbidden, "this community is invite only")
		}
	}
	added, err := s.members.Add(c.ID, userID, model.MemberRoleMember)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, apperr.New(apperr.Conflict, "already a member of this community")
	}
	c, err = s.reloadCommunity(c.ID)
	if err != nil {
		return nil, err
	}

	s.notifications.Push(userID, model.NotificationWelcome,
		"Welcome to "+c.Name,
		fmt.Sprintf("You joined %s. Say hello!", c.Name),
		map[string]any{"communityId": c.ID})
	if c.AdminID != userID {
		if u, uerr := s.users.FindByID(userID); uerr == nil && u != nil {
			s.notifications.Push(c.AdminID, model.NotificationInfo,
				"New member",
				fmt.Sprintf("%s joined %s", u.Username, c.Name),
				map[string]any{"communityId": c.ID, "userId": userID})
		}
	}
	return c, nil
}

func (s *MembershipService) Leave(userID uint64, idOrSlug string) (*model.Community, error) {
	c, err := s.findCommunity(idOrSlug)
	if err != nil {
		return nil, err
	}
	member, err := s.members.IsMember(c.ID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperr.New(apperr.Validation, "you are not a member of this community")
	}
	if c.AdminID == userID && c.MemberCount <= 1 {
		return nil, apperr.New(apperr.Forbidden, "the sole admin cannot leave the community")
	}
	if _, err := s.members.Remove(c.ID, userID); err != nil {
		return nil, err
	}
	c, err = s.reloadCommunity(c.ID)
	if err != nil {
		return nil, err
	}
	s.notifications.Push(userID, model.NotificationInfo,
		"Left Community",
		fmt.Sprintf("You left %s.", c.Name),
		map[string]any{"communityId": c.ID})
	if c.AdminID != userID {
		if u, uerr := s.users.FindByID(userID); uerr == nil && u != nil {
			s.notifications.Push(c.AdminID, model.NotificationInfo,
				"Member left",
				fmt.Sprintf("%s left %s", u.Username, c.Name),
				map[string]any{"communityId": c.ID, "userId": userID})
		}
	}
	return c, nil
}

// Invite sends a community invite to the account behind the given email.
// Only community admins and moderators may invite, and a pending unread
// invite suppresses duplicates.
func (s *MembershipService) Invite(inviterID uint64, idOrSlug, email string) error {
	c, err := s.findCommunity(idOrSlug)
	if err != nil {
		return err
	}
	role, err := s.members.RoleOf(c.ID, inviterID)
	if err != nil {
		return err
	}
	if role != model.MemberRoleAdmin && role != model.MemberRoleModerator {
		return apperr.New(apperr.Forbidden, "only community admins and moderators can invite")
	}
	invitee, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if invitee == nil || !invitee.IsActive {
		return apperr.New(apperr.NotFound, "no account with that email")
	}
	member, err := s.members.IsMember(c.ID, invitee.ID)
	if err != nil {
		return err
	}
	if member {
		return apperr.New(apperr.Conflict, "that user is already a member")
	}
	pending, err := s.notifications.HasPendingInvite(invitee.ID, c.ID)
	if err != nil {
		return err
	}
	if pending {
		return apperr.New(apperr.Conflict, "an invite is already pending for that user")
	}
	inviter, err := s.users.FindByID(inviterID)
	if err != nil || inviter == nil {
		return apperr.New(apperr.Internal, "inviter account missing")
	}
	return s.notifications.Create(invitee.ID, model.NotificationInvite,
		"Community invite",
		fmt.Sprintf("%s invited you to join %s", inviter.Username, c.Name),
		map[string]any{
			"communityId":   c.ID,
			"communityName": c.Name,
			"communitySlug": c.Slug,
			"invitedBy":     inviter.Username,
		})
}

func (s *MembershipService) Ban(actorID uint64, idOrSlug string, targetID uint64, reason string) error {
	c, err := s.findCommunity(idOrSlug)
	if err != nil {
		return err
	}
	role, err := s.members.RoleOf(c.ID, actorID)
	if err != nil {
		return err
	}
	if role != model.MemberRoleAdmin && role != model.MemberRoleModerator {
		return apperr.New(apperr.Forbidden, "only community admins and moderators can ban")
	}
	if targetID == c.AdminID {
		return apperr.New(apperr.Forbidden, "the community admin cannot be banned")
	}
	target, err := s.users.FindByID(targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperr.New(apperr.NotFound, "user not found")
	}
	if err := s.members.Ban(&model.CommunityBan{CommunityID: c.ID, UserID: targetID, Reason: reason}); err != nil {
		return err
	}
	if _, err := s.members.Remove(c.ID, targetID); err != nil {
		return err
	}
	s.notifications.Push(targetID, model.NotificationWarning,
		"Banned from "+c.Name,
		fmt.Sprintf("You have been banned from %s.", c.Name),
		map[string]any{"communityId": c.ID})
	return nil
}

func (s *MembershipService) Unban(actorID uint64, idOrSlug string, targetID uint64) error {
	c, err := s.findCommunity(idOrSlug)
	if err != nil {
		return err
	}
	role, err := s.members.RoleOf(c.ID, actorID)
	if err != nil {
		return err
	}
	if role != model.MemberRoleAdmin && role != model.MemberRoleModerator {
		return apperr.New(apperr.Forbidden, "only community admins and moderators can unban")
	}
	return s.members.Unban(c.ID, targetID)
}

func (s *MembershipService) Members(idOrSlug string) ([]model.CommunityMember, error) {
	c, err := s.findCommunity(idOrSlug)
	if err != nil {
		return nil, err
	}
	return s.members.List(c.ID)
}

// Joined lists the communities the user currently belongs to, derived from
// the membership table rather than a stored list on the account.
func (s *MembershipService) Joined(userID uint64) ([]model.Community, error) {
	return s.communities.List(mysql.ListFilter{
		ActiveOnly: true,
		MemberID:   userID,
	})
}

// BulkAdd enrolls a user into each listed community, skipping ones they
// already belong to. Used by the admin panel; moderators land with the
// moderator role.
func (s *MembershipService) BulkAdd(target *model.User, communityIDs []uint64) error {
	role := model.MemberRoleMember
	if target.Role == model.RoleModerator {
		role = model.MemberRoleModerator
	}
	for _, id := range communityIDs {
		c, err := s.communities.FindByID(id)
		if err != nil {
			return err
		}
		if c == nil || !c.IsActive {
			continue
		}
		if _, err := s.members.Add(id, target.ID, role); err != nil {
			return err
		}
	}
	return nil
}

func (s *MembershipService) BulkRemove(target *model.User, communityIDs []uint64) error {
	for _, id := range communityIDs {
		c, err := s.communities.FindByID(id)
		if err != nil {
			return err
		}
		if c == nil {
			continue
		}
		if c.AdminID == target.ID {
			continue
		}
		if _, err := s.members.Remove(id, target.ID); err != nil {
			return err
		}
	}
	return nil
}
