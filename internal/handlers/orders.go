package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"repairhub/internal/middleware"
	"repairhub/internal/service"
	"repairhub/internal/validation"
)

// ListOrders pages through every order, pending ones first.
func ListOrders(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"

		pageNumber, pageSize := parsePaginationParams(c, 10)

		ctx, cancel := requestContext(c)
		defer cancel()

		list, count, err := orders.List(ctx, strings.TrimSpace(c.Query("name")), pageNumber, pageSize)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": "Orders are fetched successfully",
			"data":    list,
			"count":   count,
		})
	}
}

func GetOrder(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := orders.Get(ctx, c.Param("id"), middleware.UserID(c), middleware.IsAdmin(c))
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondSuccess(c, "Order is fetched successfully", order)
	}
}

func CreateOrder(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"

		var req validation.CreateOrderRequest
		if !bindAndValidate(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := orders.Create(ctx, middleware.UserID(c), req)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondSuccess(c, "Order is successfully added", order)
	}
}

func AcceptOrder(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/accept/:orderId"

		var req validation.AcceptOrderRequest
		if !bindAndValidate(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := orders.Accept(ctx, c.Param("orderId"), req)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondSuccess(c, "Order is Accepted", order)
	}
}

func AssignOrder(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/assigned/:orderId"

		var req validation.AssignOrderRequest
		if !bindAndValidate(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := orders.Assign(ctx, c.Param("orderId"), req)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondSuccess(c, "Agent and Technician are assigned to the order", order)
	}
}

func RepairedOrder(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/repaired/:orderId"

		var req validation.RepairedOrderRequest
		if !bindAndValidate(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := orders.MarkRepaired(ctx, c.Param("orderId"), req)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondSuccess(c, "Order is marked as repaired", order)
	}
}

/* =========================
   REPORTS
========================= */

func TotalProfit(reports *service.Reports) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/totalProfit"

		ctx, cancel := requestContext(c)
		defer cancel()

		total, err := reports.TotalProfit(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":     "Total Profit is fetched successfully",
			"totalProfit": total.InexactFloat64(),
		})
	}
}

func WeeklySells(reports *service.Reports) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/weeklySells"

		ctx, cancel := requestContext(c)
		defer cancel()

		count, err := reports.WeeklySells(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": "Weekly Sells is fetched successfully", "count": count})
	}
}

func SellsInMonth(reports *service.Reports) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/sellsInMonth"

		ctx, cancel := requestContext(c)
		defer cancel()

		months, err := reports.SellsInMonth(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": "Sells in Month is fetched successfully", "month": months})
	}
}

func PendingOrders(reports *service.Reports) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/pendingOrder"

		ctx, cancel := requestContext(c)
		defer cancel()

		count, err := reports.PendingOrders(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": "Pending orders are fetched successfully", "count": count})
	}
}

func CountOrderCategory(reports *service.Reports) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/countOrderCategory"

		ctx, cancel := requestContext(c)
		defer cancel()

		counts, err := reports.CategoryCounts(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": "Categorized orders count is fetched successfully", "count": counts})
	}
}
