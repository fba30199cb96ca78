package handler

import (
	"errors"
	"net/http"

	"github.com/mrinmay27/the149-store/internal/apierror"
	"github.com/mrinmay27/the149-store/internal/middleware"
	"github.com/mrinmay27/the149-store/internal/model"
	"github.com/mrinmay27/the149-store/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidation, "invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// actorFromClaims rebuilds the acting profile from the verified JWT so
// services never need a DB round trip just to know who is calling.
func actorFromClaims(c *gin.Context) *model.Profile {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.UserID)
	return &model.Profile{
		ID:       id,
		Phone:    claims.Phone,
		Name:     claims.Name,
		Role:     claims.Role,
		IsAdmin:  claims.IsAdmin,
		Approved: claims.Approved,
	}
}

// writeServiceError maps a typed service error to its stable wire code and
// HTTP status. The client dispatcher branches on the code to decide whether
// to roll back an optimistic update, so every domain failure must land on a
// distinct code rather than a free-text message.
func writeServiceError(c *gin.Context, err error) {
	var stockErr *service.InsufficientStockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusConflict, apierror.New(apierror.CodeInsufficientStock, stockErr.Error()))
		return
	}

	var balErr *service.InsufficientBalanceError
	if errors.As(err, &balErr) {
		code := apierror.CodeInsufficientShopBalance
		if balErr.Account == "bank" {
			code = apierror.CodeInsufficientBankBalance
		}
		c.JSON(http.StatusConflict, apierror.New(code, balErr.Error()))
		return
	}

	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, apierror.New(apierror.CodeCategoryNotFound, err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New(apierror.CodeNotFound, err.Error()))
	case errors.Is(err, service.ErrDuplicatePrice):
		c.JSON(http.StatusConflict, apierror.New(apierror.CodeDuplicatePrice, err.Error()))
	case errors.Is(err, service.ErrPaymentMismatch):
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodePaymentMismatch, err.Error()))
	case errors.Is(err, service.ErrOwnerRequired):
		c.JSON(http.StatusForbidden, apierror.New(apierror.CodeForbidden, err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, apierror.New(apierror.CodeUnauthorized, err.Error()))
	case errors.Is(err, service.ErrNotApproved):
		c.JSON(http.StatusForbidden, apierror.New(apierror.CodeUnapproved, err.Error()))
	default:
		// Unknown errors go through the error middleware for logging.
		_ = c.Error(err)
	}
}

// parseID pulls a UUID path parameter, writing the 400 response on failure.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidation, "invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
