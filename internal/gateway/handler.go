package gateway

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gymdesk/internal/api"
	"gymdesk/internal/apperr"
	"gymdesk/internal/attendance"
	"gymdesk/internal/audit"
	"gymdesk/internal/auth"
	"gymdesk/internal/entitlement"
	"gymdesk/internal/logger"
	"gymdesk/internal/member"
	"gymdesk/internal/metrics"
)

const searchLimit = 10

type Handler struct {
	resolver   entitlement.Service
	attendance attendance.Service
	members    member.Repository
	auditor    audit.Recorder
}

func NewHandler(resolver entitlement.Service, attendanceService attendance.Service, members member.Repository, auditor audit.Recorder) *Handler {
	return &Handler{
		resolver:   resolver,
		attendance: attendanceService,
		members:    members,
		auditor:    auditor,
	}
}

// ValidateMembership godoc
// @Summary      Validate membership
// @Description  Checks whether a member holds a valid paid membership. With action=checkin, also records a check-in; action=check never creates a session.
// @Tags         gateway
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      ValidateRequest  true  "Member and action"
// @Success      200      {object}  ValidateResponse
// @Failure      400      {object}  ValidateResponse
// @Failure      401      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      405      {object}  api.ErrorResponse
// @Failure      500      {object}  ValidateResponse
// @Router       /api/members/validate [post]
func (h *Handler) ValidateMembership(c *gin.Context) {
	caller, ok := auth.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ValidateResponse{
			Success: false,
			Message: "Invalid member ID",
		})
		return
	}

	action := req.Action
	if action == "" {
		action = ActionCheck
	}

	ctx := c.Request.Context()

	res, err := h.resolver.Resolve(ctx, req.MemberID)
	if err != nil {
		h.respondError(c, action, req.MemberID, err, nil)
		return
	}

	if !res.Valid {
		metrics.RecordValidation(action, "invalid")
		c.JSON(http.StatusOK, ValidateResponse{
			Success:      false,
			Message:      res.Reason,
			MemberName:   res.Member.FullName(),
			MemberStatus: string(res.Member.Status),
		})
		return
	}

	response := ValidateResponse{
		Success: true,
		Message: "Membership valid",
		Member: &MemberPayload{
			ID:     res.Member.ID,
			Name:   res.Member.FullName(),
			Status: string(res.Member.Status),
		},
		Membership: membershipPayload(res),
	}

	auditAction := "membership_validation"

	if action == ActionCheckIn {
		session, err := h.attendance.CheckIn(ctx, caller, attendance.CheckInRequest{
			MemberID: req.MemberID,
		})
		if err != nil {
			h.respondError(c, action, req.MemberID, err, res)
			return
		}

		response.Message = "Check-in successful"
		response.AttendanceID = &session.ID
		response.CheckinTime = session.CheckIn.Format("2006-01-02 15:04:05")
		auditAction = "member_checkin"
	}

	h.auditor.Record(ctx, caller.UserID, auditAction, "members", req.MemberID)
	metrics.RecordValidation(action, "valid")

	c.JSON(http.StatusOK, response)
}

// respondError maps domain failures to the boundary's stable failure shape.
// NotFound, InvalidState and Conflict ride a 200 with success=false, matching
// what the validation UI expects; only storage failures surface as 500.
func (h *Handler) respondError(c *gin.Context, action string, memberID int, err error, res *entitlement.Resolution) {
	kind := apperr.KindOf(err)

	if kind == apperr.KindInternal {
		metrics.RecordValidation(action, "error")
		logger.Errorf("Validation failed for member %d: %v", memberID, err)
		c.JSON(http.StatusInternalServerError, ValidateResponse{
			Success: false,
			Message: "Validation failed",
		})
		return
	}

	metrics.RecordValidation(action, "invalid")

	response := ValidateResponse{
		Success: false,
		Message: apperr.ClientMessage(err),
	}
	if res != nil && res.Member != nil {
		response.MemberName = res.Member.FullName()
		response.MemberStatus = string(res.Member.Status)
	}

	c.JSON(http.StatusOK, response)
}

// SearchMembers godoc
// @Summary      Search members
// @Description  Ranked substring search across name, email and phone; top 10 results.
// @Tags         gateway
// @Security     BearerAuth
// @Produce      json
// @Param        q  query     string  true  "Search term (min 2 chars)"
// @Success      200  {object}  SearchResponse
// @Failure      401  {object}  api.ErrorResponse
// @Failure      403  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /api/members/search [get]
func (h *Handler) SearchMembers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	metrics.RecordMemberSearch()

	if len(query) < 2 {
		c.JSON(http.StatusOK, SearchResponse{Success: true, Results: []SearchRow{}})
		return
	}

	results, err := h.members.Search(c.Request.Context(), query, searchLimit)
	if err != nil {
		logger.Errorf("Member search failed for %q: %v", query, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Search failed"})
		return
	}

	rows := make([]SearchRow, 0, len(results))
	for _, r := range results {
		phone := "N/A"
		if r.Phone != nil && *r.Phone != "" {
			phone = *r.Phone
		}
		rows = append(rows, SearchRow{
			ID:          r.ID,
			Name:        r.Name,
			Email:       r.Email,
			Phone:       phone,
			Status:      string(r.Status),
			StatusClass: statusClass(r.Status),
			JoinDate:    r.JoinDate.Format("2006-01-02"),
			Visits:      r.Visits,
		})
	}

	c.JSON(http.StatusOK, SearchResponse{Success: true, Results: rows})
}

func membershipPayload(res *entitlement.Resolution) *MembershipPayload {
	status := "valid"
	if res.ExpiringSoon {
		status = "warning"
	}

	return &MembershipPayload{
		ID:            res.Membership.ID,
		PlanName:      res.Membership.PlanName,
		PlanType:      res.Membership.PlanType,
		ExpiryDate:    res.Membership.ExpiryDate.Format("2006-01-02"),
		PaymentStatus: string(res.Membership.PaymentStatus),
		DaysLeft:      res.DaysLeft,
		Status:        status,
	}
}
