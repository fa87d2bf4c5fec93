package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeNotificationsKeepsUnsetFields(t *testing.T) {
	cur := DefaultSettings(User{Name: "Ana"}).Notifications
	off := false
	daily := "daily"

	got := MergeNotifications(cur, NotificationOverrides{EmailEnabled: &off, EmailDigest: &daily})

	assert.False(t, got.Email.Enabled)
	assert.Equal(t, "daily", got.Email.Digest)
	assert.Equal(t, cur.Push, got.Push)
	assert.Equal(t, cur.ForumReplies, got.ForumReplies)
	assert.Equal(t, cur.TaskReminders, got.TaskReminders)
	// 原值不被修改
	assert.True(t, cur.Email.Enabled)
}

func TestMergeSections(t *testing.T) {
	base := DefaultSettings(User{Name: "Ana", Avatar: "a.png"})
	name := "Ana M."
	dark := "dark"
	private := "private"

	profile := MergeProfile(base.Profile, ProfileOverrides{DisplayName: &name})
	assert.Equal(t, "Ana M.", profile.DisplayName)
	assert.Equal(t, "a.png", profile.Avatar)

	appearance := MergeAppearance(base.Appearance, AppearanceOverrides{Theme: &dark})
	assert.Equal(t, "dark", appearance.Theme)
	assert.Equal(t, "medium", appearance.FontSize)

	privacy := MergePrivacy(base.Privacy, PrivacyOverrides{ProfileVisibility: &private})
	assert.Equal(t, "private", privacy.ProfileVisibility)
	assert.True(t, privacy.ShowOnlineStatus)

	assert.Equal(t, base.Notifications, MergeNotifications(base.Notifications, NotificationOverrides{}))
}
