package membership

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gymdesk/internal/api"
	"gymdesk/internal/apperr"
	"gymdesk/internal/logger"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Renew godoc
// @Summary      Renew membership
// @Description  Inserts a new paid membership term extending the current one. Admin only.
// @Tags         memberships
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        membershipID  path      int           true  "Membership ID"
// @Param        request       body      RenewRequest  true  "Renewal parameters"
// @Success      201           {object}  RenewResponse
// @Failure      400           {object}  api.ErrorResponse
// @Failure      404           {object}  api.ErrorResponse
// @Failure      500           {object}  api.ErrorResponse
// @Router       /admin/memberships/{membershipID}/renew [post]
func (h *Handler) Renew(c *gin.Context) {
	membershipID, err := strconv.Atoi(c.Param("membershipID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid membership ID"})
		return
	}

	var req RenewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	renewed, err := h.service.Renew(c.Request.Context(), membershipID, req.DurationMonths, req.PaymentMethod)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			logger.Errorf("Renewal failed for membership %d: %v", membershipID, err)
		}
		c.JSON(apperr.StatusCode(err), api.ErrorResponse{Error: apperr.ClientMessage(err)})
		return
	}

	c.JSON(http.StatusCreated, RenewResponse{
		Membership: renewed,
		Message:    "Membership renewed until " + renewed.ExpiryDate.Format("2006-01-02"),
	})
}
