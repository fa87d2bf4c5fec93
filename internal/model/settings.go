package model

import "time"

type ProfileSettings struct {
	DisplayName string `gorm:"size:100" json:"displayName"`
	Bio         string `gorm:"size:500" json:"bio"`
	Avatar      string `gorm:"size:255" json:"avatar"`
}

type EmailNotifications struct {
	Enabled bool   `json:"enabled"`
	Digest  string `gorm:"size:10" json:"digest"` // none, daily, weekly
}

type PushNotifications struct {
	Enabled bool `json:"enabled"`
}

type NotificationPreferences struct {
	Email         EmailNotifications `gorm:"embedded;embeddedPrefix:email_" json:"email"`
	Push          PushNotifications  `gorm:"embedded;embeddedPrefix:push_" json:"push"`
	ForumReplies  bool               `json:"forumReplies"`
	GroupActivity bool               `json:"groupActivity"`
	TaskReminders bool               `json:"taskReminders"`
}

type PrivacySettings struct {
	ProfileVisibility string `gorm:"size:20" json:"profileVisibility"` // public, members, private
	ShowEmail         bool   `json:"showEmail"`
	ShowOnlineStatus  bool   `json:"showOnlineStatus"`
}

type AppearanceSettings struct {
	Theme    string `gorm:"size:10" json:"theme"` // light, dark, system
	Language string `gorm:"size:10" json:"language"`
	FontSize string `gorm:"size:10" json:"fontSize"` // small, medium, large
}

type UserSettings struct {
	UserID        uint                    `gorm:"primaryKey;type:bigint unsigned" json:"userId"`
	Profile       ProfileSettings         `gorm:"embedded;embeddedPrefix:profile_" json:"profile"`
	Notifications NotificationPreferences `gorm:"embedded;embeddedPrefix:notify_" json:"notifications"`
	Privacy       PrivacySettings         `gorm:"embedded;embeddedPrefix:privacy_" json:"privacy"`
	Appearance    AppearanceSettings      `gorm:"embedded;embeddedPrefix:appearance_" json:"appearance"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}

// DefaultSettings 用户第一次访问设置页时的默认值
func DefaultSettings(user User) UserSettings {
	return UserSettings{
		UserID: user.ID,
		Profile: ProfileSettings{
			DisplayName: user.Name,
			Avatar:      user.Avatar,
		},
		Notifications: NotificationPreferences{
			Email:         EmailNotifications{Enabled: true, Digest: "weekly"},
			Push:          PushNotifications{Enabled: true},
			ForumReplies:  true,
			GroupActivity: true,
			TaskReminders: true,
		},
		Privacy: PrivacySettings{
			ProfileVisibility: "members",
			ShowEmail:         false,
			ShowOnlineStatus:  true,
		},
		Appearance: AppearanceSettings{
			Theme:    "system",
			Language: "en",
			FontSize: "medium",
		},
	}
}

// 以下 Overrides 中为 nil 的字段保持原值

type ProfileOverrides struct {
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
	Avatar      *string `json:"avatar"`
}

type NotificationOverrides struct {
	EmailEnabled  *bool   `json:"emailEnabled"`
	EmailDigest   *string `json:"emailDigest" validate:"omitempty,oneof=none daily weekly"`
	PushEnabled   *bool   `json:"pushEnabled"`
	ForumReplies  *bool   `json:"forumReplies"`
	GroupActivity *bool   `json:"groupActivity"`
	TaskReminders *bool   `json:"taskReminders"`
}

type PrivacyOverrides struct {
	ProfileVisibility *string `json:"profileVisibility" validate:"omitempty,oneof=public members private"`
	ShowEmail         *bool   `json:"showEmail"`
	ShowOnlineStatus  *bool   `json:"showOnlineStatus"`
}

type AppearanceOverrides struct {
	Theme    *string `json:"theme" validate:"omitempty,oneof=light dark system"`
	Language *string `json:"language" validate:"omitempty,min=2,max=10"`
	FontSize *string `json:"fontSize" validate:"omitempty,oneof=small medium large"`
}

func MergeProfile(cur ProfileSettings, o ProfileOverrides) ProfileSettings {
	if o.DisplayName != nil {
		cur.DisplayName = *o.DisplayName
	}
	if o.Bio != nil {
		cur.Bio = *o.Bio
	}
	if o.Avatar != nil {
		cur.Avatar = *o.Avatar
	}
	return cur
}

func MergeNotifications(cur NotificationPreferences, o NotificationOverrides) NotificationPreferences {
	if o.EmailEnabled != nil {
		cur.Email.Enabled = *o.EmailEnabled
	}
	if o.EmailDigest != nil {
		cur.Email.Digest = *o.EmailDigest
	}
	if o.PushEnabled != nil {
		cur.Push.Enabled = *o.PushEnabled
	}
	if o.ForumReplies != nil {
		cur.ForumReplies = *o.ForumReplies
	}
	if o.GroupActivity != nil {
		cur.GroupActivity = *o.GroupActivity
	}
	if o.TaskReminders != nil {
		cur.TaskReminders = *o.TaskReminders
	}
	return cur
}

func MergePrivacy(cur PrivacySettings, o PrivacyOverrides) PrivacySettings {
	if o.ProfileVisibility != nil {
		cur.ProfileVisibility = *o.ProfileVisibility
	}
	if o.ShowEmail != nil {
		cur.ShowEmail = *o.ShowEmail
	}
	if o.ShowOnlineStatus != nil {
		cur.ShowOnlineStatus = *o.ShowOnlineStatus
	}
	return cur
}

func MergeAppearance(cur AppearanceSettings, o AppearanceOverrides) AppearanceSettings {
	if o.Theme != nil {
		cur.Theme = *o.Theme
	}
	if o.Language != nil {
		cur.Language = *o.Language
	}
	if o.FontSize != nil {
		cur.FontSize = *o.FontSize
	}
	return cur
}
