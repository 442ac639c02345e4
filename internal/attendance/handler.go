package attendance

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

// CheckOut godoc
// @Summary      Check out member
// @Description  Closes an open attendance session and records its duration. Staff only.
// @Tags         attendance
// @Security     BearerAuth
// @Produce      json
// @Param        attendanceID  path      int  true  "Attendance session ID"
// @Success      200           {object}  CheckOutResponse
// @Failure      400           {object}  api.ErrorResponse
// @Failure      404           {object}  api.ErrorResponse
// @Failure      409           {object}  api.ErrorResponse
// @Failure      500           {object}  api.ErrorResponse
// @Router       /attendance/{attendanceID}/checkout [post]
func (h *Handler) CheckOut(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("attendanceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid attendance ID"})
		return
	}

	duration, err := h.service.CheckOut(c.Request.Context(), sessionID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			logger.Errorf("Check-out failed for session %d: %v", sessionID, err)
		}
		c.JSON(apperr.StatusCode(err), api.ErrorResponse{Error: apperr.ClientMessage(err)})
		return
	}

	c.JSON(http.StatusOK, CheckOutResponse{
		Message:         "Checked out successfully",
		DurationMinutes: duration,
	})
}

// ListOpen godoc
// @Summary      List open sessions
// @Description  Returns today's open attendance sessions. Staff only.
// @Tags         attendance
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   SessionWithMember
// @Failure      500  {object}  api.ErrorResponse
// @Router       /attendance/open [get]
func (h *Handler) ListOpen(c *gin.Context) {
	sessions, err := h.service.ListOpenToday(c.Request.Context())
	if err != nil {
		logger.Errorf("Failed to list open sessions: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch open sessions"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// Delete godoc
// @Summary      Delete attendance record
// @Description  Removes an attendance session for audit correction. Admin only.
// @Tags         attendance
// @Security     BearerAuth
// @Produce      json
// @Param        attendanceID  path      int  true  "Attendance session ID"
// @Success      200           {object}  api.MessageResponse
// @Failure      400           {object}  api.ErrorResponse
// @Failure      404           {object}  api.ErrorResponse
// @Failure      500           {object}  api.ErrorResponse
// @Router       /admin/attendance/{attendanceID} [delete]
func (h *Handler) Delete(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("attendanceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid attendance ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), sessionID); err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			logger.Errorf("Failed to delete attendance %d: %v", sessionID, err)
		}
		c.JSON(apperr.StatusCode(err), api.ErrorResponse{Error: apperr.ClientMessage(err)})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Attendance record deleted"})
}
