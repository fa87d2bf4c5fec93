// Package memory 提供进程内的存储实现，数据只在进程生命周期内有效，是默认的存储后端
package memory

import "campus_portal_backend/internal/repository"

var (
	_ repository.UserStore     = (*UserRepository)(nil)
	_ repository.ForumStore    = (*ForumRepository)(nil)
	_ repository.GroupStore    = (*GroupRepository)(nil)
	_ repository.SettingsStore = (*SettingsRepository)(nil)
)
