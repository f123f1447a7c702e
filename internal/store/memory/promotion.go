package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/lunawallet/luna/internal/models"
)

type PromotionRepositoryImpl struct {
	store *Store
}

func (repo *PromotionRepositoryImpl) Insert(promotion *models.Promotion) (string, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if promotion.ID == "" {
		promotion.ID = uuid.NewString()
	}
	if promotion.CreatedAt.IsZero() {
		promotion.CreatedAt = time.Now()
	}

	repo.store.promotions = append(repo.store.promotions, *promotion)

	return promotion.ID, nil
}

func (repo *PromotionRepositoryImpl) GetAllActive() ([]models.Promotion, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	now := time.Now()

	var result []models.Promotion
	for _, promo := range repo.store.promotions {
		if promo.EndsAt.After(now) {
			result = append(result, promo)
		}
	}

	return result, nil
}
