package handler

import (
	"net/http"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/apierror"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/dto"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/service"

	"github.com/gin-gonic/gin"
)

type DayCloseHandler struct{ svc service.DayCloseService }

func NewDayCloseHandler(svc service.DayCloseService) *DayCloseHandler {
	return &DayCloseHandler{svc: svc}
}

// Start godoc
// @Summary Opens a trading period for a branch
// @Tags day-close
// @Accept json
// @Produce json
// @Param body body dto.StartPeriodRequest true "Branch"
// @Success 201 {object} dto.PeriodResponse
// @Failure 409 {object} apierror.APIError "period already open"
// @Router /v1/day-close/start [post]
func (h *DayCloseHandler) Start(c *gin.Context) {
	var req dto.StartPeriodRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.StartPeriod(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary Closes the open period and reconciles the cash count
// @Description A retried close of an already closed period returns 200 with already_closed=true.
// @Tags day-close
// @Accept json
// @Produce json
// @Param body body dto.ClosePeriodRequest true "End, denominations, scope"
// @Success 200 {object} dto.ClosePeriodResponse
// @Failure 409 {object} apierror.APIError "no open period"
// @Failure 422 {object} apierror.APIError
// @Router /v1/day-close/close [post]
func (h *DayCloseHandler) Close(c *gin.Context) {
	var req dto.ClosePeriodRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ClosePeriod(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Current godoc
// @Summary Returns the open period of a branch
// @Tags day-close
// @Produce json
// @Param branch_id query string true "Branch"
// @Success 200 {object} dto.PeriodResponse
// @Failure 409 {object} apierror.APIError "no open period"
// @Router /v1/day-close/current [get]
func (h *DayCloseHandler) Current(c *gin.Context) {
	branchID := c.Query("branch_id")
	if branchID == "" {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"branch_id": "required"}))
		return
	}
	resp, err := h.svc.CurrentOpenPeriod(c.Request.Context(), branchID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
