package service

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/repository"
	"campus_portal_backend/internal/util"
	"context"
)

type DashboardService struct {
	UserRepo  repository.UserStore
	ForumRepo repository.ForumStore
	GroupRepo repository.GroupStore
}

func NewDashboardService(
	userRepo repository.UserStore,
	forumRepo repository.ForumStore,
	groupRepo repository.GroupStore,
) *DashboardService {
	return &DashboardService{
		UserRepo:  userRepo,
		ForumRepo: forumRepo,
		GroupRepo: groupRepo,
	}
}

type Dashboard struct {
	User            model.User        `json:"user"`
	Stats           DashboardStats    `json:"stats"`
	MyOpenTasks     []model.GroupTask `json:"myOpenTasks"`
	PopularTags     []model.Tag       `json:"popularTags"`
	RecentQuestions []model.Question  `json:"recentQuestions"`
}

type DashboardStats struct {
	QuestionsAsked  int `json:"questionsAsked"`
	AnswersGiven    int `json:"answersGiven"`
	VotesReceived   int `json:"votesReceived"`
	Groups          int `json:"groups"`
	OpenTasks       int `json:"openTasks"`
	UnansweredAsked int `json:"unansweredAsked"`
}

const dashboardListSize = 5

func (s *DashboardService) GetUserDashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	if userID == 0 {
		return nil, util.ErrUnauthenticated
	}
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	questions, err := s.ForumRepo.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{User: user.Public()}
	for _, q := range questions {
		if q.AuthorID != userID {
			continue
		}
		d.Stats.QuestionsAsked++
		d.Stats.VotesReceived += q.Votes
		if q.AnswerCount == 0 {
			d.Stats.UnansweredAsked++
		}
	}

	if d.Stats.AnswersGiven, err = s.ForumRepo.CountAnswersByAuthor(ctx, userID); err != nil {
		return nil, err
	}

	groups, err := s.GroupRepo.ListGroupsByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.Stats.Groups = len(groups)

	tasks, err := s.GroupRepo.ListTasksByAssignee(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.MyOpenTasks = make([]model.GroupTask, 0, len(tasks))
	for _, t := range tasks {
		if t.Status.Open() {
			d.MyOpenTasks = append(d.MyOpenTasks, t)
		}
	}
	d.Stats.OpenTasks = len(d.MyOpenTasks)

	tags, err := s.ForumRepo.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	d.PopularTags = RankTags(tags, dashboardListSize)

	recent, err := FilterQuestions(questions, QuestionFilter{SortBy: SortActivity})
	if err != nil {
		return nil, err
	}
	if len(recent) > dashboardListSize {
		recent = recent[:dashboardListSize]
	}
	d.RecentQuestions = recent
	return d, nil
}
