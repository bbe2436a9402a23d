package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	domainErrors "github.com/polkiloo/gopherpos/internal/domain/errors"
	"github.com/polkiloo/gopherpos/internal/server/http/dto"
	"github.com/polkiloo/gopherpos/internal/server/http/middleware"
)

// CurrentOperatorID extracts the operator identifier set by middleware.Operator.
func CurrentOperatorID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.OperatorIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// bindAndValidate binds the JSON body into out and validates it. On failure it
// writes a 400 and returns the error so the handler can stop.
func bindAndValidate(c *gin.Context, out any, v *validatorv10.Validate) error {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request_body", Msg: err.Error()})
		return err
	}
	if err := v.Struct(out); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation_failed", Fields: validationErrorsToMap(err)})
		return err
	}
	return nil
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.StructNamespace()] = fe.Error()
		}
		return out
	}
	out["error"] = err.Error()
	return out
}

// writeError maps a domain error onto an HTTP status and error body.
func writeError(c *gin.Context, err error) {
	var stock *domainErrors.InsufficientStockError
	switch {
	case errors.As(err, &stock):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: "insufficient_stock",
			Msg:   err.Error(),
			Stock: &dto.StockShortage{
				Kind:      stock.Kind,
				ID:        stock.ID,
				Name:      stock.Name,
				Required:  stock.Required,
				Available: stock.Available,
				Unit:      stock.Unit,
			},
		})
	case errors.Is(err, domainErrors.ErrInvalidCart), errors.Is(err, domainErrors.ErrUnknownUnit):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_cart", Msg: err.Error()})
	case errors.Is(err, domainErrors.ErrInvalidOrderNumber):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_order_number", Msg: err.Error()})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not_found", Msg: err.Error()})
	case errors.Is(err, domainErrors.ErrTotalMismatch):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "total_mismatch", Msg: err.Error()})
	case errors.Is(err, domainErrors.ErrOrderNumberExhausted):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "order_number_exhausted", Msg: err.Error()})
	case errors.Is(err, domainErrors.ErrLockTimeout):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "stock_locked", Msg: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal_error"})
	}
}
