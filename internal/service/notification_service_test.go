package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discussify/internal/apperr"
	"discussify/internal/model"
)

func TestNotificationListAndUnread(t *testing.T) {
	db := newTestDB(t)
	notifications := NewNotificationService(db)
	owner := seedUser(t, db, "owner")

	require.NoError(t, notifications.Create(owner.ID, model.NotificationInfo, "one", "first", nil))
	require.NoError(t, notifications.Create(owner.ID, model.NotificationInfo, "two", "second", nil))

	list, total, unread, err := notifications.List(owner.ID, false, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.EqualValues(t, 2, total)
	assert.EqualValues(t, 2, unread)

	require.NoError(t, notifications.MarkRead(owner.ID, list[0].ID))
	unreadOnly, _, unread, err := notifications.List(owner.ID, true, 1, 10)
	require.NoError(t, err)
	assert.Len(t, unreadOnly, 1)
	assert.EqualValues(t, 1, unread)

	count, err := notifications.UnreadCount(owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, notifications.MarkAllRead(owner.ID))
	count, err = notifications.UnreadCount(owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestNotificationOwnership(t *testing.T) {
	db := newTestDB(t)
	notifications := NewNotificationService(db)
	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")

	require.NoError(t, notifications.Create(owner.ID, model.NotificationInfo, "mine", "private", nil))
	list, _, _, err := notifications.List(owner.ID, false, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// another account can neither read nor delete it
	err = notifications.MarkRead(other.ID, list[0].ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	err = notifications.Delete(other.ID, list[0].ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	require.NoError(t, notifications.Delete(owner.ID, list[0].ID))
	_, total, _, err := notifications.List(owner.ID, false, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestNotificationDeleteAll(t *testing.T) {
	db := newTestDB(t)
	notifications := NewNotificationService(db)
	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")

	require.NoError(t, notifications.Create(owner.ID, model.NotificationInfo, "a", "x", nil))
	require.NoError(t, notifications.Create(owner.ID, model.NotificationInfo, "b", "y", nil))
	require.NoError(t, notifications.Create(other.ID, model.NotificationInfo, "c", "z", nil))

	require.NoError(t, notifications.DeleteAll(owner.ID))

	_, total, _, err := notifications.List(owner.ID, false, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	_, total, _, err = notifications.List(other.ID, false, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total, "clearing one inbox leaves others alone")
}

func TestHasPendingInvite(t *testing.T) {
	db := newTestDB(t)
	notifications := NewNotificationService(db)
	owner := seedUser(t, db, "owner")

	require.NoError(t, notifications.Create(owner.ID, model.NotificationInvite,
		"invite", "join us", map[string]any{"communityId": uint64(7)}))

	pending, err := notifications.HasPendingInvite(owner.ID, 7)
	require.NoError(t, err)
	assert.True(t, pending)

	pending, err = notifications.HasPendingInvite(owner.ID, 8)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestPayloadIDDecodesStoredNumbers(t *testing.T) {
	// values read back through JSONMap arrive as json.Number
	assert.EqualValues(t, 7, payloadID(json.Number("7")))
	assert.EqualValues(t, 7, payloadID(float64(7)))
	assert.EqualValues(t, 7, payloadID(uint64(7)))
	assert.EqualValues(t, 7, payloadID(int64(7)))
	assert.EqualValues(t, 0, payloadID(json.Number("garbage")))
	assert.EqualValues(t, 0, payloadID("7"))
	assert.EqualValues(t, 0, payloadID(nil))
}
