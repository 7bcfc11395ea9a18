package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/finance/api/http/presenter"
	"github.com/artem13815/finance/pkg/auth"
	"github.com/artem13815/finance/pkg/security/jwt"
)

type UserHandler struct {
	uc auth.ProfileUseCase
}

func NewUserHandler(uc auth.ProfileUseCase) *UserHandler { return &UserHandler{uc: uc} }

type updateProfileRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Bio       *string `json:"bio"`
}

// Me возвращает профиль текущего пользователя.
// @Summary  Current profile
// @Tags     users
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} auth.Account
// @Failure  401 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /users/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	id, ok := jwt.AccountID(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	acc, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, acc)
}

// Update меняет имя, фамилию и bio.
// @Summary  Update profile
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    input body updateProfileRequest true "profile fields"
// @Security BearerAuth
// @Success  200 {object} auth.Account
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /users/me [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, ok := jwt.AccountID(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	acc, err := h.uc.Update(c.UserContext(), id, auth.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, acc)
}

// Delete удаляет аккаунт вместе с транзакциями и refresh-токенами.
// @Summary     Delete account
// @Description Deletes the account with all of its transactions and refresh tokens.
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} presenter.MessageResponse
// @Failure     404 {object} presenter.ErrorResponse
// @Router      /users/me [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, ok := jwt.AccountID(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, presenter.MessageResponse{Message: "account deleted"})
}
