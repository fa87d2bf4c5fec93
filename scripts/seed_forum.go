// 手动写入示例论坛数据脚本
//
// 内存存储模式下主应用启动时会自动写入示例数据。
// 此脚本用于 MySQL 存储，例如首次部署或清库之后。已有问题时不会重复写入。
//
// 用法: go run scripts/seed_forum.go

package main

import (
	"campus_portal_backend/internal/config"
	"campus_portal_backend/internal/repository"
	"campus_portal_backend/internal/service"
	"campus_portal_backend/pkg/database"
	"campus_portal_backend/pkg/logger"
	"context"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}
	// yaml 直接解析不会读取下划线字段，这里补上默认值
	if cfg.Forum.MaxTags <= 0 {
		cfg.Forum.MaxTags = 5
	}
	if cfg.Groups.DefaultMaxMembers <= 0 {
		cfg.Groups.DefaultMaxMembers = 10
	}
	if cfg.JWT.ExpireTime <= 0 {
		cfg.JWT.ExpireTime = 72 * time.Hour
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
		cfg.Storage.LocalPath = "uploads"
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	users := repository.NewUserRepository(db)
	forum := repository.NewForumRepository(db)
	groups := repository.NewGroupRepository(db)

	auth := service.NewAuthService(users, service.NewMemorySessionStore(), &cfg)
	forumService := service.NewForumService(forum, users, service.NewMemoryViewCounter(cfg.ViewWindow()), cfg.Forum.MaxTags)
	groupService := service.NewGroupService(groups, users, service.NewStorageService(&cfg), cfg.Groups.DefaultMaxMembers)

	log.Println("写入示例论坛数据...")
	if err := service.NewSeeder(auth, forumService, groupService).Seed(context.Background()); err != nil {
		log.Fatalf("写入失败: %v", err)
	}
	log.Println("完成！")
}
