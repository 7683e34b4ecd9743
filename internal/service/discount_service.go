package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"khattha_backend/internal/model"
	"khattha_backend/internal/repository"
	"khattha_backend/internal/util"
	"khattha_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const discountCacheKey = "discounts:active"

type DiscountService struct {
	Repo  *repository.DiscountRepository
	Redis *redis.Client
}

func NewDiscountService(repo *repository.DiscountRepository, rdb *redis.Client) *DiscountService {
	return &DiscountService{Repo: repo, Redis: rdb}
}

type DiscountReq struct {
	Title         *string             `json:"title"`
	Description   *string             `json:"description"`
	DiscountType  *model.DiscountType `json:"discountType"`
	DiscountValue *int                `json:"discountValue"`
	Company       *string             `json:"company"`
	ContactNumber *string             `json:"contactNumber"`
	ImageURL      *string             `json:"imageUrl"`
	IsActive      *bool               `json:"isActive"`
}

func (s *DiscountService) Create(creatorID uint, req DiscountReq) (*model.Discount, error) {
	if req.Title == nil || *req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", util.ErrValidation)
	}
	if req.Company == nil || *req.Company == "" {
		return nil, fmt.Errorf("%w: company is required", util.ErrValidation)
	}
	if req.DiscountType == nil || (*req.DiscountType != model.DiscountPercentage && *req.DiscountType != model.DiscountFixed) {
		return nil, fmt.Errorf("%w: discountType must be percentage or fixed", util.ErrValidation)
	}
	if req.DiscountValue == nil || *req.DiscountValue <= 0 {
		return nil, fmt.Errorf("%w: discountValue must be positive", util.ErrValidation)
	}

	discount := &model.Discount{
		Title:         *req.Title,
		DiscountType:  *req.DiscountType,
		DiscountValue: *req.DiscountValue,
		Company:       *req.Company,
		IsActive:      true,
		CreatedBy:     creatorID,
	}
	if req.Description != nil {
		discount.Description = *req.Description
	}
	if req.ContactNumber != nil {
		discount.ContactNumber = *req.ContactNumber
	}
	if req.ImageURL != nil {
		discount.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		discount.IsActive = *req.IsActive
	}

	if err := s.Repo.Create(discount); err != nil {
		return nil, err
	}
	s.invalidateCache()
	return discount, nil
}

func (s *DiscountService) Update(id uint, req DiscountReq) (*model.Discount, error) {
	var discount model.Discount
	if err := s.Repo.DB.First(&discount, id).Error; err != nil {
		return nil, err
	}

	if req.Title != nil {
		discount.Title = *req.Title
	}
	if req.Description != nil {
		discount.Description = *req.Description
	}
	if req.DiscountType != nil {
		discount.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil && *req.DiscountValue > 0 {
		discount.DiscountValue = *req.DiscountValue
	}
	if req.Company != nil {
		discount.Company = *req.Company
	}
	if req.ContactNumber != nil {
		discount.ContactNumber = *req.ContactNumber
	}
	if req.ImageURL != nil {
		discount.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		discount.IsActive = *req.IsActive
	}

	if err := s.Repo.Update(&discount); err != nil {
		return nil, err
	}
	s.invalidateCache()
	return &discount, nil
}

// ListActive 学生端列表走 Redis 缓存，缓存失效再回源数据库
func (s *DiscountService) ListActive(ctx context.Context) ([]model.Discount, error) {
	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, discountCacheKey).Result(); err == nil {
			var cached []model.Discount
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		}
	}

	discounts, err := s.Repo.ListActive()
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(discounts); err == nil {
			if err := s.Redis.Set(ctx, discountCacheKey, data, 10*time.Minute).Err(); err != nil {
				logger.Log.Warn("failed to cache discounts", zap.Error(err))
			}
		}
	}
	return discounts, nil
}

func (s *DiscountService) ListAll() ([]model.Discount, error) {
	return s.Repo.ListAll()
}

func (s *DiscountService) Delete(id uint) error {
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

func (s *DiscountService) invalidateCache() {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), discountCacheKey).Err(); err != nil {
		logger.Log.Warn("failed to invalidate discount cache", zap.Error(err))
	}
}
