package service

import (
	"errors"

	"khattha_backend/internal/repository"
	"khattha_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 拒绝原因编码，前端据此区分文案
const (
	DenyNoPermission = "no-permission"
	DenyExpired      = "expired"
	DenySystemError  = "system-error"
)

// AccessDecision 访问闸门的判定结果
type AccessDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allowed() AccessDecision { return AccessDecision{Allowed: true} }

func denied(reason string) AccessDecision {
	return AccessDecision{Allowed: false, Reason: reason}
}

type AccessService struct {
	Repo  *repository.AccessRepository
	Clock Clock
}

func NewAccessService(repo *repository.AccessRepository, clock Clock) *AccessService {
	return &AccessService{Repo: repo, Clock: clock}
}

// CheckAccess 判定学生对科目的订阅是否有效。纯读操作。
// 任何存储故障一律返回 system-error 拒绝，绝不放行（fail closed）。
func (s *AccessService) CheckAccess(studentID, subjectID uint) AccessDecision {
	permission, err := s.Repo.FindByStudentAndSubject(studentID, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return denied(DenyNoPermission)
		}
		logger.Log.Error("access permission lookup failed",
			zap.Uint("studentId", studentID), zap.Uint("subjectId", subjectID), zap.Error(err))
		return denied(DenySystemError)
	}

	if !permission.HasAccess {
		return denied(DenyNoPermission)
	}

	now := s.Clock.Now()
	if permission.StartDate != nil && now.Before(*permission.StartDate) {
		return denied(DenyExpired)
	}
	if permission.EndDate != nil && now.After(*permission.EndDate) {
		return denied(DenyExpired)
	}

	return allowed()
}
