package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/polkiloo/gopherpos/internal/domain/model"
	"github.com/polkiloo/gopherpos/internal/server/http/dto"
)

// CheckoutHandler serves the till checkout endpoint.
type CheckoutHandler struct {
	facade    CheckoutFacade
	validator *validatorv10.Validate
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade) *CheckoutHandler {
	return &CheckoutHandler{facade: facade, validator: dto.NewValidator()}
}

// Checkout handles POST /api/checkout.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := bindAndValidate(c, &req, h.validator); err != nil {
		return
	}

	result, err := h.facade.Checkout(c.Request.Context(), toCheckoutRequest(req, CurrentOperatorID(c)))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutResponse{
		Order:    toOrderResponse(result.Order),
		Attempts: result.Attempts,
		Warnings: result.Warnings,
	})
}

func toCheckoutRequest(req dto.CheckoutRequest, operatorID int64) model.CheckoutRequest {
	lines := make([]model.CartLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		line := model.CartLine{ProductID: l.ProductID, RecipeID: l.RecipeID, WeightGrams: l.WeightGrams}
		if l.Quantity != nil {
			line.Quantity = *l.Quantity
		}
		lines = append(lines, line)
	}
	return model.CheckoutRequest{
		Lines:         lines,
		MemberID:      req.MemberID,
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		OperatorID:    operatorID,
		QuotedTotal:   req.QuotedTotal,
	}
}
