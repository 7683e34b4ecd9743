package service

import (
	"errors"
	"fmt"

	"khattha_backend/internal/model"
	"khattha_backend/internal/repository"
	"khattha_backend/internal/util"

	"gorm.io/gorm"
)

type LessonService struct {
	Repo        *repository.LessonRepository
	SubjectRepo *repository.SubjectRepository
}

func NewLessonService(repo *repository.LessonRepository, subjectRepo *repository.SubjectRepository) *LessonService {
	return &LessonService{Repo: repo, SubjectRepo: subjectRepo}
}

type LessonReq struct {
	SubjectID uint    `json:"subjectId"`
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	DayNumber *int    `json:"dayNumber"`
	Order     *int    `json:"order"`
}

func (s *LessonService) Create(creatorID uint, req LessonReq) (*model.Lesson, error) {
	if req.Title == nil || *req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", util.ErrValidation)
	}
	if req.Content == nil || *req.Content == "" {
		return nil, fmt.Errorf("%w: content is required", util.ErrValidation)
	}
	if req.DayNumber == nil {
		return nil, fmt.Errorf("%w: dayNumber is required", util.ErrValidation)
	}

	subject, err := s.SubjectRepo.FindByID(req.SubjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubjectNotFound
		}
		return nil, err
	}
	if *req.DayNumber < 1 || *req.DayNumber > subject.NumberOfDays {
		return nil, fmt.Errorf("%w: dayNumber must be between 1 and %d", util.ErrValidation, subject.NumberOfDays)
	}

	lesson := &model.Lesson{
		SubjectID: req.SubjectID,
		Title:     *req.Title,
		Content:   *req.Content,
		DayNumber: *req.DayNumber,
		Order:     1,
		CreatedBy: creatorID,
	}
	if req.Order != nil && *req.Order > 0 {
		lesson.Order = *req.Order
	}

	if err := s.Repo.Create(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *LessonService) Update(id uint, req LessonReq) (*model.Lesson, error) {
	lesson, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Content != nil {
		lesson.Content = *req.Content
	}
	if req.DayNumber != nil {
		lesson.DayNumber = *req.DayNumber
	}
	if req.Order != nil && *req.Order > 0 {
		lesson.Order = *req.Order
	}

	if err := s.Repo.Update(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *LessonService) GetByID(id uint) (*model.Lesson, error) {
	lesson, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	return lesson, nil
}

func (s *LessonService) ListBySubject(subjectID uint) ([]model.Lesson, error) {
	return s.Repo.ListBySubject(subjectID)
}

func (s *LessonService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return s.Repo.Delete(id)
}
