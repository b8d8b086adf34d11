package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/models/dto"
	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/enums"
	"github.com/Xushengqwer/campus_service/models/vo"
	"github.com/Xushengqwer/campus_service/myErrors"
	"github.com/Xushengqwer/campus_service/repo/gormrepo"
)

// CalendarService 日历事件
type CalendarService interface {
	// CreatePrivateEvent 分类固定为 USER_PRIVATE，归属调用者
	CreatePrivateEvent(ctx context.Context, userID uint64, req *dto.CreateEventRequest) (*vo.EventVO, error)
	// CreateAcademicEvent 分类固定为 ACADEMIC，无归属；只在内部路由上暴露
	CreateAcademicEvent(ctx context.Context, req *dto.CreateEventRequest) (*vo.EventVO, error)
	// ListEvents 指定月份内开始的公开事件（ACADEMIC、CAMPUS）
	ListEvents(ctx context.Context, month, year int) ([]*vo.EventVO, error)
	// ListOwnEvents 指定月份内调用者自己的私有事件
	ListOwnEvents(ctx context.Context, userID uint64, month, year int) ([]*vo.EventVO, error)
}

type calendarService struct {
	events gormrepo.EventRepository
	logger *zap.Logger
}

func NewCalendarService(events gormrepo.EventRepository, logger *zap.Logger) CalendarService {
	return &calendarService{events: events, logger: logger}
}

func newEvent(req *dto.CreateEventRequest, category enums.EventCategory, owner *uint64) (*entities.Event, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, myErrors.InvalidInput("title is required")
	}
	if req.StartTime == nil || req.EndTime == nil {
		return nil, myErrors.InvalidInput("start_time and end_time are required")
	}
	start, end := req.StartTime.UTC(), req.EndTime.UTC()
	if end.Before(start) {
		return nil, myErrors.InvalidInput("end_time must not be before start_time")
	}
	return &entities.Event{
		Title:       title,
		Description: req.Description,
		StartTime:   start,
		EndTime:     end,
		Category:    category,
		UserID:      owner,
	}, nil
}

func (s *calendarService) create(ctx context.Context, event *entities.Event) (*vo.EventVO, error) {
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("创建事件失败: %w", err)
	}
	return vo.NewEventVO(event), nil
}

func (s *calendarService) CreatePrivateEvent(ctx context.Context, userID uint64, req *dto.CreateEventRequest) (*vo.EventVO, error) {
	owner := userID
	event, err := newEvent(req, enums.EventUserPrivate, &owner)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, event)
}

func (s *calendarService) CreateAcademicEvent(ctx context.Context, req *dto.CreateEventRequest) (*vo.EventVO, error) {
	event, err := newEvent(req, enums.EventAcademic, nil)
	if err != nil {
		return nil, err
	}
	created, err := s.create(ctx, event)
	if err == nil {
		s.logger.Info("内部接口创建了学术事件", zap.Uint64("eventID", event.ID), zap.String("title", event.Title))
	}
	return created, err
}

// monthRange 返回 [当月第一天, 下月第一天)，UTC
func monthRange(month, year int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, myErrors.InvalidInput("month and year are required (month must be 1-12)")
	}
	if year < 1 || year > 9999 {
		return time.Time{}, time.Time{}, myErrors.InvalidInput("month and year are required")
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), nil
}

func (s *calendarService) ListEvents(ctx context.Context, month, year int) ([]*vo.EventVO, error) {
	from, to, err := monthRange(month, year)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListPublicBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("查询事件失败: %w", err)
	}
	return vo.NewEventVOs(events), nil
}

func (s *calendarService) ListOwnEvents(ctx context.Context, userID uint64, month, year int) ([]*vo.EventVO, error) {
	from, to, err := monthRange(month, year)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListOwnedBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("查询私有事件失败: %w", err)
	}
	return vo.NewEventVOs(events), nil
}
