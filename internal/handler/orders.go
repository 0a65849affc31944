package handler

import (
	"net/http"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/dto"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler { return &OrdersHandler{svc: svc} }

// Create godoc
// @Summary Settles a cart into a numbered order
// @Tags orders
// @Accept json
// @Produce json
// @Param body body dto.CreateOrderRequest true "Cart and payment"
// @Success 201 {object} dto.OrderResponse
// @Failure 409 {object} apierror.APIError "day is closed"
// @Failure 422 {object} apierror.ValidationError
// @Failure 503 {object} apierror.APIError "sequence unavailable"
// @Router /v1/orders [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Lists orders with a count/total summary
// @Tags orders
// @Produce json
// @Param branch_id query string false "Branch"
// @Param customer_id query string false "Customer"
// @Param aggregator_id query string false "Delivery aggregator"
// @Param sales_type query []string false "restaurant | online | membership"
// @Param order_type query []string false "DineIn | TakeAway | Delivery"
// @Param status query string false "paid | unpaid"
// @Param canceled query bool false "Canceled filter"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Param search query string false "Invoice, order number or customer"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} dto.OrderListResponse
// @Router /v1/orders [get]
func (h *OrdersHandler) List(c *gin.Context) {
	var f dto.OrderFilter
	if !bindQueryAndValidate(c, &f) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Returns an order, with membership stats for meal plans
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/orders/{id} [get]
func (h *OrdersHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary Cancels an order
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body dto.CancelOrderRequest true "Reason"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} apierror.APIError "already canceled"
// @Router /v1/orders/{id}/cancel [post]
func (h *OrdersHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.CancelOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancel(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Soft-deletes an order
// @Tags orders
// @Param id path string true "Order ID"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/orders/{id} [delete]
func (h *OrdersHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Hold godoc
// @Summary Pauses a membership plan from today
// @Tags membership
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} apierror.APIError "not a membership order"
// @Router /v1/orders/{id}/membership/hold [post]
func (h *OrdersHandler) Hold(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Hold(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Unhold godoc
// @Summary Resumes a paused membership plan as of today
// @Tags membership
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} apierror.APIError "not a membership order"
// @Router /v1/orders/{id}/membership/unhold [post]
func (h *OrdersHandler) Unhold(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Unhold(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
