package service

import (
	"fmt"

	"khattha_backend/internal/model"
	"khattha_backend/internal/repository"
	"khattha_backend/internal/util"
)

type NotificationService struct {
	Repo     *repository.NotificationRepository
	UserRepo *repository.UserRepository
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository) *NotificationService {
	return &NotificationService{Repo: repo, UserRepo: userRepo}
}

type NotificationReq struct {
	Title     string                 `json:"title" binding:"required"`
	Message   string                 `json:"message" binding:"required"`
	Type      model.NotificationType `json:"type"`
	RelatedID *uint                  `json:"relatedId"`
	// UserID 为空时广播给全部学生
	UserID *uint `json:"userId"`
}

// Send 发送站内通知。UserID 为空时广播给所有学生账号。
func (s *NotificationService) Send(req NotificationReq) (int, error) {
	if req.Type == "" {
		req.Type = model.NotifyGeneral
	}
	switch req.Type {
	case model.NotifyLesson, model.NotifyQuiz, model.NotifyDiscount, model.NotifyGrade, model.NotifyGeneral:
	default:
		return 0, fmt.Errorf("%w: unknown notification type %q", util.ErrValidation, req.Type)
	}

	if req.UserID != nil {
		notification := &model.Notification{
			UserID:    *req.UserID,
			Title:     req.Title,
			Message:   req.Message,
			Type:      req.Type,
			RelatedID: req.RelatedID,
		}
		if err := s.Repo.Create(notification); err != nil {
			return 0, err
		}
		return 1, nil
	}

	students, err := s.UserRepo.ListByRole(model.Student)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, student := range students {
		notification := &model.Notification{
			UserID:    student.ID,
			Title:     req.Title,
			Message:   req.Message,
			Type:      req.Type,
			RelatedID: req.RelatedID,
		}
		if err := s.Repo.Create(notification); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (s *NotificationService) ListMine(userID uint) ([]model.Notification, error) {
	return s.Repo.ListByUser(userID)
}

func (s *NotificationService) MarkRead(id, userID uint) error {
	return s.Repo.MarkRead(id, userID)
}
