package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lunawallet/luna/internal/models"
)

type PromotionRepositoryImpl struct {
	db sqlx.ExtContext
}

func (repo *PromotionRepositoryImpl) Insert(promotion *models.Promotion) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO promotions (title, description, image_url, ends_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := sqlx.GetContext(ctx, repo.db, &id, query,
		promotion.Title,
		promotion.Description,
		promotion.ImageURL,
		promotion.EndsAt,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *PromotionRepositoryImpl) GetAllActive() ([]models.Promotion, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var promotions []models.Promotion

	query := `
        SELECT id, title, description, image_url, ends_at, created_at
        FROM promotions WHERE ends_at > NOW() ORDER BY ends_at ASC`

	err := sqlx.SelectContext(ctx, repo.db, &promotions, query)
	if err != nil {
		return nil, err
	}

	return promotions, nil
}
