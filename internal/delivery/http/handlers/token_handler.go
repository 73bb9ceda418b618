package handlers

import (
	"media-pipeline/internal/usecases"
	"media-pipeline/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type TokenHandler struct {
	tokenService usecases.TokenService
}

func NewTokenHandler(tokenService usecases.TokenService) *TokenHandler {
	return &TokenHandler{tokenService: tokenService}
}

// ContentProtectionToken
//
// @Summary      Content Protection Token
// @Description  Issues a short-lived HS256 token for license acquisition
// @Tags         Token
// @Produce      json
// @Success      200  {string}  string "Signed token"
// @Failure      500  {object}  dto.InternalErrorResponse
// @Router       /content-protection-token [post]
// @Router       /content-protection-token [get]
func (h *TokenHandler) ContentProtectionToken(c *fiber.Ctx) error {
	token, err := h.tokenService.Issue()
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(token)
}
