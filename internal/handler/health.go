package handler

import (
	"net/http"

	"github.com/lunawallet/luna/internal/errHandler"
	"github.com/lunawallet/luna/internal/response"
	"github.com/lunawallet/luna/internal/version"
)

type healthCheckHandler struct {
	errHandler *errHandler.ErrorHandler
}

func NewHealthCheckHandler(errHandler *errHandler.ErrorHandler) *healthCheckHandler {
	return &healthCheckHandler{
		errHandler: errHandler,
	}
}
func (h *healthCheckHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	message := "Up and grateful"

	data := map[string]string{
		"version": version.Get(),
	}

	err := response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
