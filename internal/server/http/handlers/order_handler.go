package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/gopherpos/internal/domain/model"
	"github.com/polkiloo/gopherpos/internal/server/http/dto"
)

// OrderHandler manages order lookup.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Get handles GET /api/orders/:number.
func (h *OrderHandler) Get(c *gin.Context) {
	number := strings.TrimSpace(c.Param("number"))
	order, err := h.facade.Order(c.Request.Context(), number)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		Number:        order.Number,
		MemberID:      order.MemberID,
		OperatorID:    order.OperatorID,
		Lines:         make([]dto.OrderLineResponse, 0, len(order.Lines)),
		Subtotal:      order.Subtotal,
		Discount:      order.Discount,
		Total:         order.Total,
		PaymentMethod: string(order.PaymentMethod),
		PointsStatus:  string(order.PointsStatus),
		PointsEarned:  order.PointsEarned,
		CreatedAt:     order.CreatedAt,
	}
	for _, l := range order.Lines {
		line := dto.OrderLineResponse{
			Kind:        string(l.Kind),
			ProductID:   l.ProductID,
			RecipeID:    l.RecipeID,
			Name:        l.Name,
			WeightGrams: l.WeightGrams,
			UnitPrice:   l.UnitPrice,
			Amount:      l.Amount,
			Consumption: l.Consumption,
		}
		if l.Kind == model.LineProduct {
			qty := l.Quantity
			line.Quantity = &qty
		}
		resp.Lines = append(resp.Lines, line)
	}
	return resp
}
