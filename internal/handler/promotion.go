package handler

import (
	"net/http"
	"time"

	"github.com/lunawallet/luna/internal/errHandler"
	"github.com/lunawallet/luna/internal/response"
	"github.com/lunawallet/luna/internal/store"
)

type PromotionResponseData struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	EndsAt      time.Time `json:"ends_at"`
}

type promotionHandler struct {
	promotionRepo store.PromotionRepository
	errHandler    *errHandler.ErrorHandler
}

func NewPromotionHandler(promotionRepo store.PromotionRepository, errHandler *errHandler.ErrorHandler) *promotionHandler {
	return &promotionHandler{
		promotionRepo: promotionRepo,
		errHandler:    errHandler,
	}
}

func (h *promotionHandler) HandleActivePromotions(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.promotionRepo.GetAllActive()
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	data := make([]*PromotionResponseData, len(promotions))
	for i, promo := range promotions {
		data[i] = &PromotionResponseData{
			ID:          promo.ID,
			Title:       promo.Title,
			Description: promo.Description,
			ImageURL:    promo.ImageURL,
			EndsAt:      promo.EndsAt,
		}
	}

	message := "Promotions fetched successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
