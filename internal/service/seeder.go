package service

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"
	"campus_portal_backend/pkg/logger"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const SamplePassword = "password123"

type sampleUser struct {
	role  model.UserRole
	input RegisterInput
}

var sampleUsers = []sampleUser{
	{model.Student, RegisterInput{Name: "Alex Chen", Email: "alex@student.edu", Password: SamplePassword}},
	{model.Teacher, RegisterInput{Name: "Dr. Sarah Lin", Email: "sarah@faculty.edu", Password: SamplePassword}},
	{model.Student, RegisterInput{Name: "Maya Patel", Email: "maya@student.edu", Password: SamplePassword}},
}

// Seeder 在空库上写入演示数据：三个用户、两个论坛问题、一个学习小组
type Seeder struct {
	Auth   *AuthService
	Forum  *ForumService
	Groups *GroupService
}

func NewSeeder(auth *AuthService, forum *ForumService, groups *GroupService) *Seeder {
	return &Seeder{Auth: auth, Forum: forum, Groups: groups}
}

func (s *Seeder) ensureUser(ctx context.Context, u sampleUser) (*model.User, error) {
	res, err := s.Auth.Register(ctx, u.role, u.input)
	if err == nil {
		return &res.User, nil
	}
	if !errors.Is(err, util.ErrEmailRegistered) {
		return nil, err
	}
	return s.Auth.UserRepo.FindByEmail(ctx, u.input.Email)
}

// Seed 已经有问题时直接跳过，可以重复执行
func (s *Seeder) Seed(ctx context.Context) error {
	existing, err := s.Forum.Forum.ListQuestions(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Log.Info("Forum already has data, skipping seed", zap.Int("questions", len(existing)))
		return nil
	}

	users := make([]*model.User, 0, len(sampleUsers))
	for _, u := range sampleUsers {
		user, err := s.ensureUser(ctx, u)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.input.Email, err)
		}
		users = append(users, user)
	}
	alex, sarah, maya := users[0], users[1], users[2]

	bst, err := s.Forum.CreateQuestion(ctx, alex.ID, QuestionInput{
		Title:   "How to implement a binary search tree in Python?",
		Content: "I need insert, search and delete for a BST. Deleting a node with two children is where I get stuck. Should I use the in-order successor or predecessor?",
		Tags:    []string{"python", "data-structures", "algorithms"},
	})
	if err != nil {
		return fmt.Errorf("seed question: %w", err)
	}
	react, err := s.Forum.CreateQuestion(ctx, maya.ID, QuestionInput{
		Title:   "Understanding React useEffect cleanup",
		Content: "When exactly does the cleanup function returned from useEffect run, and how do I avoid leaking subscriptions when a component unmounts?",
		Tags:    []string{"react", "javascript"},
	})
	if err != nil {
		return fmt.Errorf("seed question: %w", err)
	}

	answer, err := s.Forum.CreateAnswer(ctx, sarah.ID, bst.ID, AnswerInput{
		Content: "Replace the node's value with its in-order successor (the smallest value in the right subtree), then delete the successor, which has at most one child.",
	})
	if err != nil {
		return fmt.Errorf("seed answer: %w", err)
	}
	if _, err := s.Forum.CastVote(ctx, bst.ID, model.TargetQuestion, model.Upvote, maya.ID); err != nil {
		return err
	}
	if _, err := s.Forum.CastVote(ctx, answer.ID, model.TargetAnswer, model.Upvote, alex.ID); err != nil {
		return err
	}
	if _, err := s.Forum.CastVote(ctx, react.ID, model.TargetQuestion, model.Upvote, alex.ID); err != nil {
		return err
	}

	group, err := s.Groups.CreateGroup(ctx, alex.ID, GroupInput{
		Name:        "Algorithms Study Circle",
		Description: "Weekly practice on data structures and interview problems.",
		Category:    "computer-science",
		Visibility:  model.GroupPublic,
	})
	if err != nil {
		return fmt.Errorf("seed group: %w", err)
	}
	if _, err := s.Groups.JoinGroup(ctx, group.ID, maya.ID); err != nil {
		return err
	}
	if _, err := s.Groups.CreateTask(ctx, group.ID, alex.ID, TaskInput{
		Title:      "Solve three tree problems",
		Priority:   model.PriorityHigh,
		AssigneeID: &maya.ID,
	}); err != nil {
		return err
	}

	logger.Log.Info("Sample data seeded", zap.Int("users", len(users)), zap.String("groupId", group.ID))
	return nil
}
