package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/artem13815/finance/api/http/presenter"
	"github.com/artem13815/finance/pkg/apperr"
	"github.com/artem13815/finance/pkg/ledger"
	"github.com/artem13815/finance/pkg/security/jwt"
)

type TransactionHandler struct {
	uc ledger.UseCase
}

func NewTransactionHandler(uc ledger.UseCase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

type transactionRequest struct {
	Type     string          `json:"type" example:"despesa"`
	Title    string          `json:"title" example:"groceries"`
	Amount   decimal.Decimal `json:"amount" swaggertype:"string" example:"50.00"`
	Category string          `json:"category" example:"food"`
	Date     ledger.Date     `json:"date" swaggertype:"string" example:"2024-01-15"`
}

func (r transactionRequest) input() ledger.Input {
	return ledger.Input{
		Type:     r.Type,
		Title:    r.Title,
		Amount:   r.Amount,
		Category: r.Category,
		Date:     r.Date,
	}
}

// Create создаёт транзакцию текущего пользователя; знак суммы задаётся типом.
// @Summary     Create transaction
// @Description "despesa" (expense) amounts are stored negative, "receita" (income) positive.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       input body transactionRequest true "transaction"
// @Security    BearerAuth
// @Success     201 {object} ledger.Entry
// @Failure     400 {object} presenter.ErrorResponse
// @Failure     404 {object} presenter.ErrorResponse "account no longer exists"
// @Router      /transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	owner, ok := jwt.AccountID(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	var req transactionRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	e, err := h.uc.Create(c.UserContext(), owner, req.input())
	if err != nil {
		return presenter.FromError(c, err)
	}
	c.Location("/api/v1/transactions/" + e.ID.String())
	return presenter.JSON(c, http.StatusCreated, e)
}

// List возвращает транзакции пользователя с фильтрами по периоду и категории.
// @Summary  List transactions
// @Tags     transactions
// @Produce  json
// @Param    startDate query string false "inclusive lower bound (YYYY-MM-DD)"
// @Param    endDate   query string false "inclusive upper bound (YYYY-MM-DD)"
// @Param    category  query string false "exact category"
// @Security BearerAuth
// @Success  200 {array}  ledger.Entry
// @Failure  400 {object} presenter.ErrorResponse
// @Router   /transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	owner, ok := jwt.AccountID(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	period, err := parsePeriod(c)
	if err != nil {
		return presenter.FromError(c, err)
	}
	entries, err := h.uc.List(c.UserContext(), owner, ledger.Filter{
		Period:   period,
		Category: strings.TrimSpace(c.Query("category")),
	})
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, entries)
}

// Get возвращает транзакцию по id (только владелец).
// @Summary  Get transaction
// @Tags     transactions
// @Produce  json
// @Param    id path string true "transaction id (UUID)"
// @Security BearerAuth
// @Success  200 {object} ledger.Entry
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /transactions/{id} [get]
func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	owner, ok := jwt.AccountID(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := parseID(c)
	if err != nil {
		return presenter.FromError(c, err)
	}
	e, err := h.uc.Get(c.UserContext(), owner, id)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, e)
}

// Update перезаписывает транзакцию целиком.
// @Summary  Update transaction
// @Tags     transactions
// @Accept   json
// @Produce  json
// @Param    id    path string             true "transaction id (UUID)"
// @Param    input body transactionRequest true "transaction"
// @Security BearerAuth
// @Success  200 {object} ledger.Entry
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /transactions/{id} [put]
func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	owner, ok := jwt.AccountID(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := parseID(c)
	if err != nil {
		return presenter.FromError(c, err)
	}
	var req transactionRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	e, err := h.uc.Update(c.UserContext(), owner, id, req.input())
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, e)
}

// Delete удаляет транзакцию.
// @Summary  Delete transaction
// @Tags     transactions
// @Produce  json
// @Param    id path string true "transaction id (UUID)"
// @Security BearerAuth
// @Success  200 {object} presenter.MessageResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	owner, ok := jwt.AccountID(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := parseID(c)
	if err != nil {
		return presenter.FromError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), owner, id); err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, presenter.MessageResponse{Message: "transaction deleted"})
}

// Summary считает доходы, расходы и баланс за период.
// @Summary  Income, expense and balance totals
// @Tags     transactions
// @Produce  json
// @Param    startDate query string false "inclusive lower bound (YYYY-MM-DD)"
// @Param    endDate   query string false "inclusive upper bound (YYYY-MM-DD)"
// @Security BearerAuth
// @Success  200 {object} ledger.Summary
// @Failure  400 {object} presenter.ErrorResponse
// @Router   /transactions/summary [get]
func (h *TransactionHandler) Summary(c *fiber.Ctx) error {
	owner, ok := jwt.AccountID(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	period, err := parsePeriod(c)
	if err != nil {
		return presenter.FromError(c, err)
	}
	s, err := h.uc.Summary(c.UserContext(), owner, period)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, s)
}

// Categories возвращает категории, которые встречаются у пользователя.
// @Summary  Distinct categories in use
// @Tags     transactions
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} string
// @Router   /transactions/categories [get]
func (h *TransactionHandler) Categories(c *fiber.Ctx) error {
	owner, ok := jwt.AccountID(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	cats, err := h.uc.Categories(c.UserContext(), owner)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, cats)
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperr.Invalid("id", "must be a UUID")
	}
	return id, nil
}

func parsePeriod(c *fiber.Ctx) (ledger.Period, error) {
	var p ledger.Period
	for _, q := range []struct {
		name string
		dst  **ledger.Date
	}{{"startDate", &p.Start}, {"endDate", &p.End}} {
		raw := strings.TrimSpace(c.Query(q.name))
		if raw == "" {
			continue
		}
		d, err := ledger.ParseDate(raw)
		if err != nil {
			return ledger.Period{}, apperr.Invalid(q.name, "must be a date (YYYY-MM-DD)")
		}
		*q.dst = &d
	}
	return p, nil
}
