package handler

import (
	"net/http"

	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfilesHandler exposes the admin approval workflow.
type ProfilesHandler struct{ svc service.AuthService }

func NewProfilesHandler(svc service.AuthService) *ProfilesHandler {
	return &ProfilesHandler{svc: svc}
}

// List returns every registered profile, approved or not.
func (h *ProfilesHandler) List(c *gin.Context) {
	resp, err := h.svc.ListProfiles(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetApproval flips the approval flag on a profile. Approving sends the
// subject a notification; revoking locks them out at the next token check.
func (h *ProfilesHandler) SetApproval(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.SetApprovalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetApproval(c.Request.Context(), id, req.Approved)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
