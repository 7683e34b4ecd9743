package service

import (
	"errors"
	"fmt"

	"khattha_backend/internal/model"
	"khattha_backend/internal/repository"
	"khattha_backend/internal/util"

	"gorm.io/gorm"
)

type SubjectService struct {
	Repo       *repository.SubjectRepository
	AccessRepo *repository.AccessRepository
}

func NewSubjectService(repo *repository.SubjectRepository, accessRepo *repository.AccessRepository) *SubjectService {
	return &SubjectService{Repo: repo, AccessRepo: accessRepo}
}

type SubjectReq struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	NumberOfDays  *int    `json:"numberOfDays"`
	Curriculum    *string `json:"curriculum"`
	CurriculumURL *string `json:"curriculumUrl"`
}

func (s *SubjectService) Create(creatorID uint, req SubjectReq) (*model.Subject, error) {
	if req.Name == nil || *req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", util.ErrValidation)
	}

	subject := &model.Subject{
		Name:         *req.Name,
		NumberOfDays: 30,
		CreatedBy:    creatorID,
	}
	if req.Description != nil {
		subject.Description = *req.Description
	}
	if req.NumberOfDays != nil && *req.NumberOfDays > 0 {
		subject.NumberOfDays = *req.NumberOfDays
	}
	if req.Curriculum != nil {
		subject.Curriculum = *req.Curriculum
	}
	if req.CurriculumURL != nil {
		subject.CurriculumURL = *req.CurriculumURL
	}

	if err := s.Repo.Create(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *SubjectService) Update(id uint, req SubjectReq) (*model.Subject, error) {
	subject, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.Description != nil {
		subject.Description = *req.Description
	}
	if req.NumberOfDays != nil && *req.NumberOfDays > 0 {
		subject.NumberOfDays = *req.NumberOfDays
	}
	if req.Curriculum != nil {
		subject.Curriculum = *req.Curriculum
	}
	if req.CurriculumURL != nil {
		subject.CurriculumURL = *req.CurriculumURL
	}

	if err := s.Repo.Update(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *SubjectService) GetByID(id uint) (*model.Subject, error) {
	subject, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubjectNotFound
		}
		return nil, err
	}
	return subject, nil
}

func (s *SubjectService) ListAll() ([]model.Subject, error) {
	return s.Repo.ListAll()
}

func (s *SubjectService) ListMine(studentID uint) ([]model.Subject, error) {
	return s.Repo.ListByStudent(studentID)
}

func (s *SubjectService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return s.Repo.Delete(id)
}

func (s *SubjectService) GrantAccess(adminID uint, permission *model.AccessPermission) error {
	permission.HasAccess = true
	permission.CreatedBy = adminID
	return s.AccessRepo.Grant(permission)
}

func (s *SubjectService) RevokeAccess(studentID, subjectID uint) error {
	return s.AccessRepo.Revoke(studentID, subjectID)
}

func (s *SubjectService) ListPermissions() ([]repository.PermissionRow, error) {
	return s.AccessRepo.ListWithNames()
}
