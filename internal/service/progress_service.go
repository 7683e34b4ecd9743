package service

import (
	"khattha_backend/internal/model"
	"khattha_backend/internal/repository"
	"khattha_backend/internal/util"
)

type ProgressService struct {
	Repo       *repository.ProgressRepository
	LessonRepo *repository.LessonRepository
	Clock      Clock
}

func NewProgressService(repo *repository.ProgressRepository, lessonRepo *repository.LessonRepository, clock Clock) *ProgressService {
	return &ProgressService{Repo: repo, LessonRepo: lessonRepo, Clock: clock}
}

// MarkLesson 记录课程完成状态，按 (student, lesson) 幂等覆盖
func (s *ProgressService) MarkLesson(studentID, lessonID uint, completed bool) (*model.StudentProgress, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return nil, util.ErrLessonNotFound
	}

	progress := &model.StudentProgress{
		StudentID:   studentID,
		SubjectID:   lesson.SubjectID,
		LessonID:    lessonID,
		IsCompleted: completed,
	}
	if completed {
		now := s.Clock.Now()
		progress.CompletedAt = &now
	}

	if err := s.Repo.Upsert(progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *ProgressService) ListBySubject(studentID, subjectID uint) ([]model.StudentProgress, error) {
	return s.Repo.ListByStudentAndSubject(studentID, subjectID)
}
