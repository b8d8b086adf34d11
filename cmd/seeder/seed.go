package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/models/dto"
	"github.com/Xushengqwer/campus_service/models/enums"
	"github.com/Xushengqwer/campus_service/models/vo"
	"github.com/Xushengqwer/campus_service/security"
	"github.com/Xushengqwer/campus_service/service"
)

type seedOptions struct {
	Users    int
	Posts    int
	Boards   int
	Events   int
	Password string
	Seed     int64
}

type seeder struct {
	auth     service.AuthService
	graph    service.SocialGraphService
	posts    service.PostService
	boards   service.BoardService
	calendar service.CalendarService
	logger   *core.ZapLogger
}

var courses = []string{"Engenharia de Software", "Ciência da Computação", "Direito", "Medicina", "Arquitetura", "Administração"}

// Seed 通过服务层写入一套完整的演示数据。
// 第一个用户为 admin，其余用户随机关注、点赞、评论、加入公告板。
func (s *seeder) Seed(ctx context.Context, opts seedOptions) error {
	faker := gofakeit.New(opts.Seed)

	users, err := s.seedUsers(ctx, faker, opts)
	if err != nil {
		return err
	}
	s.seedFollows(ctx, faker, users)
	postIDs := s.seedPosts(ctx, faker, users, opts.Posts)
	s.seedInteractions(ctx, faker, users, postIDs)
	s.seedBoards(ctx, faker, users, opts.Boards)
	s.seedEvents(ctx, faker, users, opts.Events)
	return nil
}

func (s *seeder) seedUsers(ctx context.Context, faker *gofakeit.Faker, opts seedOptions) ([]*vo.UserProfile, error) {
	users := make([]*vo.UserProfile, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		username := fmt.Sprintf("%s%d", strings.ToLower(faker.FirstName()), i)
		if i == 0 {
			username = "admin"
		}
		profile, err := s.auth.Register(ctx, &dto.RegisterRequest{
			Name:     faker.Name(),
			Email:    username + "@campus.example",
			Password: opts.Password,
			Username: username,
		})
		if err != nil {
			s.logger.Warn("创建种子用户失败，跳过", zap.String("username", username), zap.Error(err))
			continue
		}

		course := courses[faker.Number(0, len(courses)-1)]
		bio := faker.Sentence(8)
		updated, err := s.auth.UpdateProfile(ctx, profile.ID, profile.ID, &dto.UpdateProfileRequest{
			Name:     profile.Name,
			Username: profile.Username,
			Course:   &course,
			Bio:      &bio,
		})
		if err == nil {
			profile = updated
		}
		users = append(users, profile)
	}
	if len(users) < 2 {
		return nil, fmt.Errorf("只创建了 %d 个用户，库中可能已有种子数据", len(users))
	}

	if _, err := s.auth.SetRole(ctx, users[0].Username, enums.RoleAdmin); err != nil {
		return nil, fmt.Errorf("设置管理员失败: %w", err)
	}
	s.logger.Info("种子用户已创建", zap.Int("count", len(users)), zap.String("admin", users[0].Username))
	return users, nil
}

func (s *seeder) seedFollows(ctx context.Context, faker *gofakeit.Faker, users []*vo.UserProfile) {
	created := 0
	for _, follower := range users {
		for _, target := range users {
			if follower.ID == target.ID || !faker.Bool() {
				continue
			}
			if _, err := s.graph.Follow(ctx, follower.ID, target.Username); err == nil {
				created++
			}
		}
	}
	s.logger.Info("关注关系已创建", zap.Int("count", created))
}

func (s *seeder) seedPosts(ctx context.Context, faker *gofakeit.Faker, users []*vo.UserProfile, n int) []uint64 {
	// Faker 不是并发安全的，先在当前 goroutine 里生成内容
	type draft struct {
		author  uint64
		content string
	}
	drafts := make([]draft, n)
	for i := range drafts {
		drafts[i] = draft{
			author:  users[faker.Number(0, len(users)-1)].ID,
			content: faker.Paragraph(1, 3, 12, " "),
		}
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		postIDs = make([]uint64, 0, n)
	)
	semaphore := make(chan struct{}, 4)
	for i, d := range drafts {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(index int, d draft) {
			defer wg.Done()
			defer func() { <-semaphore }()

			post, err := s.posts.CreatePost(ctx, d.author, d.content, nil)
			if err != nil {
				s.logger.Error(fmt.Sprintf("创建帖子 %d/%d 失败", index+1, n), zap.Error(err))
				return
			}
			mu.Lock()
			postIDs = append(postIDs, post.ID)
			mu.Unlock()
		}(i, d)
	}
	wg.Wait()
	s.logger.Info("种子帖子已创建", zap.Int("count", len(postIDs)))
	return postIDs
}

func (s *seeder) seedInteractions(ctx context.Context, faker *gofakeit.Faker, users []*vo.UserProfile, postIDs []uint64) {
	likes, comments := 0, 0
	for _, postID := range postIDs {
		for _, u := range users {
			if faker.Number(0, 3) == 0 {
				if _, err := s.posts.ToggleLike(ctx, postID, u.ID); err == nil {
					likes++
				}
			}
			if faker.Number(0, 9) == 0 {
				if _, err := s.posts.CreateComment(ctx, postID, identityOf(u), faker.Sentence(6)); err == nil {
					comments++
				}
			}
		}
	}
	s.logger.Info("点赞与评论已创建", zap.Int("likes", likes), zap.Int("comments", comments))
}

func (s *seeder) seedBoards(ctx context.Context, faker *gofakeit.Faker, users []*vo.UserProfile, n int) {
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s %d", faker.AppName(), i+1)
		board, err := s.boards.CreateBoard(ctx, &dto.CreateBoardRequest{
			Name:        name,
			Description: faker.Sentence(10),
			Slug:        fmt.Sprintf("board-%d-%s", i+1, strings.ToLower(faker.LetterN(4))),
		})
		if err != nil {
			s.logger.Warn("创建公告板失败", zap.String("name", name), zap.Error(err))
			continue
		}

		members := make([]*vo.UserProfile, 0)
		for _, u := range users {
			if faker.Bool() {
				if _, err := s.boards.ToggleMembership(ctx, board.ID, u.ID); err == nil {
					members = append(members, u)
				}
			}
		}
		for j := 0; j < len(members) && j < 5; j++ {
			subject := ""
			if faker.Bool() {
				subject = faker.HipsterWord()
			}
			if _, err := s.boards.CreateNotice(ctx, board.ID, members[j].ID, subject, faker.Paragraph(1, 2, 15, " "), nil); err != nil {
				s.logger.Warn("创建公告失败", zap.String("boardID", board.ID), zap.Error(err))
			}
		}
		s.logger.Info("公告板已创建", zap.String("boardID", board.ID), zap.Int("members", len(members)))
	}
}

func (s *seeder) seedEvents(ctx context.Context, faker *gofakeit.Faker, users []*vo.UserProfile, n int) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		start := monthStart.Add(time.Duration(faker.Number(0, 27*24)) * time.Hour)
		end := start.Add(time.Duration(faker.Number(1, 4)) * time.Hour)
		description := faker.Sentence(8)
		req := &dto.CreateEventRequest{Title: faker.Sentence(3), Description: &description, StartTime: &start, EndTime: &end}

		var err error
		if i%2 == 0 {
			_, err = s.calendar.CreateAcademicEvent(ctx, req)
		} else {
			_, err = s.calendar.CreatePrivateEvent(ctx, users[faker.Number(0, len(users)-1)].ID, req)
		}
		if err != nil {
			s.logger.Warn("创建事件失败", zap.Error(err))
		}
	}
	s.logger.Info("日历事件已创建", zap.Int("count", n))
}

func identityOf(u *vo.UserProfile) *security.Identity {
	return &security.Identity{
		ID: u.ID,
		Snapshot: security.ProfileSnapshot{
			Name:      u.Name,
			Email:     u.Email,
			Username:  u.Username,
			Course:    u.Course,
			Bio:       u.Bio,
			AvatarURL: u.AvatarURL,
		},
	}
}
