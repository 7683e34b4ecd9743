package service

import (
	"khattha_backend/internal/model"
	"khattha_backend/internal/repository"
)

type DashboardService struct {
	UserRepo     *repository.UserRepository
	SubjectRepo  *repository.SubjectRepository
	LessonRepo   *repository.LessonRepository
	QuizRepo     *repository.QuizRepository
	AnswerRepo   *repository.AnswerRepository
	ProgressRepo *repository.ProgressRepository
}

func NewDashboardService(
	userRepo *repository.UserRepository,
	subjectRepo *repository.SubjectRepository,
	lessonRepo *repository.LessonRepository,
	quizRepo *repository.QuizRepository,
	answerRepo *repository.AnswerRepository,
	progressRepo *repository.ProgressRepository,
) *DashboardService {
	return &DashboardService{
		UserRepo:     userRepo,
		SubjectRepo:  subjectRepo,
		LessonRepo:   lessonRepo,
		QuizRepo:     quizRepo,
		AnswerRepo:   answerRepo,
		ProgressRepo: progressRepo,
	}
}

// StudentStats 学生端仪表盘统计
type StudentStats struct {
	SubjectsEnrolled int `json:"subjectsEnrolled"`
	TotalLessons     int `json:"totalLessons"`
	LessonsCompleted int `json:"lessonsCompleted"`
	QuizzesTaken     int `json:"quizzesTaken"`
	// AverageScore 已评分作答的平均得分率（0~100），无已评分作答时为 0
	AverageScore int `json:"averageScore"`
}

func (s *DashboardService) GetStudentStats(studentID uint) (*StudentStats, error) {
	subjects, err := s.SubjectRepo.ListByStudent(studentID)
	if err != nil {
		return nil, err
	}

	subjectIDs := make([]uint, len(subjects))
	for i, subject := range subjects {
		subjectIDs[i] = subject.ID
	}
	totalLessons, err := s.LessonRepo.CountBySubjects(subjectIDs)
	if err != nil {
		return nil, err
	}

	completed, err := s.ProgressRepo.CountCompleted(studentID)
	if err != nil {
		return nil, err
	}

	answerStats, err := s.AnswerRepo.StatsByStudent(studentID)
	if err != nil {
		return nil, err
	}

	return &StudentStats{
		SubjectsEnrolled: len(subjects),
		TotalLessons:     int(totalLessons),
		LessonsCompleted: int(completed),
		QuizzesTaken:     int(answerStats.QuizzesTaken),
		AverageScore:     percentage(int(answerStats.ScoreSum), int(answerStats.ScoredCount)),
	}, nil
}

// AdminStats 管理端仪表盘统计
type AdminStats struct {
	TotalStudents   int `json:"totalStudents"`
	TotalSubjects   int `json:"totalSubjects"`
	TotalQuizzes    int `json:"totalQuizzes"`
	PendingGradings int `json:"pendingGradings"`
}

func (s *DashboardService) GetAdminStats() (*AdminStats, error) {
	students, err := s.UserRepo.CountByRole(model.Student)
	if err != nil {
		return nil, err
	}

	subjects, err := s.SubjectRepo.Count()
	if err != nil {
		return nil, err
	}

	quizzes, err := s.QuizRepo.Count()
	if err != nil {
		return nil, err
	}

	pending, err := s.AnswerRepo.CountUngraded()
	if err != nil {
		return nil, err
	}

	return &AdminStats{
		TotalStudents:   int(students),
		TotalSubjects:   int(subjects),
		TotalQuizzes:    int(quizzes),
		PendingGradings: int(pending),
	}, nil
}
