package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"repairhub/internal/apperr"
	"repairhub/internal/metrics"
	"repairhub/internal/payment"
	"repairhub/internal/service"
	"repairhub/internal/store"
	"repairhub/internal/templates"
)

var (
	errPaymentInit        = apperr.BadRequest("Failed to payment")
	errInvalidTransaction = apperr.BadRequest("Invalid transaction")
	errNotPayable         = apperr.BadRequest("The order has no amount to pay yet")
	errNoDefaultAddress   = apperr.BadRequest("Please add an address before paying")
)

// InitPayment opens a hosted checkout for one of the caller's orders.
func InitPayment(users store.UserStore, orders *service.OrderService, gateway payment.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /payments/:orderId"

		user, ok := currentUser(c, route, users)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := orders.Get(ctx, c.Param("orderId"), user.ID, false)
		if err != nil {
			if apperr.Is(err, http.StatusNotFound) {
				err = apperr.BadRequest(service.MsgInvalidOrderID)
			}
			respondError(c, route, err)
			return
		}
		if order.Amount == nil {
			respondError(c, route, errNotPayable)
			return
		}
		addr, ok := user.DefaultUserAddress()
		if !ok {
			respondError(c, route, errNoDefaultAddress)
			return
		}

		link, err := gateway.InitSession(ctx, payment.SessionRequest{
			OrderID:      order.ID.Hex(),
			UserID:       user.ID.Hex(),
			Amount:       decimal.NewFromFloat(*order.Amount),
			Category:     order.Category,
			CategoryType: order.CategoryType,
			ProductName:  order.Brand + " " + order.Model,
			ShipName:     order.Name,
			ShipAddress:  order.Address,
			Customer: payment.Customer{
				Name:    user.Name,
				Email:   user.Email,
				Phone:   firstNonEmpty(user.Phone, addr.Phone),
				Address: addr.Address + ", " + addr.Area,
				City:    addr.City,
				Region:  addr.Region,
			},
		})
		if err != nil {
			metrics.PaymentEvents.WithLabelValues("init", "failed").Inc()
			respondError(c, route, errPaymentInit.WithCause(err))
			return
		}
		metrics.PaymentEvents.WithLabelValues("init", "ok").Inc()
		c.JSON(http.StatusOK, gin.H{"GatewayPageURL": link})
	}
}

// PaymentSuccess is called by the gateway. The posted result is only a
// val_id; the transaction itself is fetched from the gateway.
func PaymentSuccess(orders *service.OrderService, gateway payment.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payments/paymentSuccess"

		ctx, cancel := requestContext(c)
		defer cancel()

		result, err := gateway.Validate(ctx, c.PostForm("val_id"))
		if err != nil {
			metrics.PaymentEvents.WithLabelValues("validate", "failed").Inc()
			respondError(c, route, errInvalidTransaction.WithCause(err))
			return
		}
		metrics.PaymentEvents.WithLabelValues("validate", "ok").Inc()

		order, err := orders.CompletePayment(ctx, result.OrderID, result.Payment())
		if err != nil {
			respondError(c, route, err)
			return
		}
		if order.UserID.Hex() != result.UserID {
			zap.L().Named("payments").Warn("payment owner differs from order owner",
				zap.String("order", order.ID.Hex()),
				zap.String("tran_id", result.TranID),
			)
		}
		c.HTML(http.StatusOK, templates.PaymentSuccess, nil)
	}
}

func PaymentFail() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.PaymentEvents.WithLabelValues("callback", "fail").Inc()
		c.HTML(http.StatusOK, templates.PaymentFail, nil)
	}
}

func PaymentCancel() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.PaymentEvents.WithLabelValues("callback", "cancel").Inc()
		c.HTML(http.StatusOK, templates.PaymentCancel, nil)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
