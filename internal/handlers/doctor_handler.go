package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hrandria/hospital-api/internal/models"
)

// ListDoctors returns the booking directory: approved doctors, by name.
func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.Doctors.Directory(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if doctors == nil {
		doctors = make([]models.Doctor, 0)
	}
	c.JSON(http.StatusOK, doctors)
}

// ListPendingDoctors returns the admin review queue.
func (h *Handler) ListPendingDoctors(c *gin.Context) {
	doctors, err := h.Doctors.PendingQueue(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if doctors == nil {
		doctors = make([]models.Doctor, 0)
	}
	c.JSON(http.StatusOK, doctors)
}

type DoctorDecisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
	Note     string `json:"note"`
}

// DecideDoctor applies an admin approval or rejection on a registration.
func (h *Handler) DecideDoctor(c *gin.Context) {
	doctorUID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID"})
		return
	}

	var req DoctorDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	adminName := ""
	if admin, err := h.Store.GetUser(c.Request.Context(), adminID); err == nil {
		adminName = admin.Name
	}

	doctor, err := h.Doctors.Decide(c.Request.Context(), adminID, adminName, doctorUID, req.Decision, req.Note)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doctor)
}

// ListDoctorApprovals returns the recent decision history for a doctor.
func (h *Handler) ListDoctorApprovals(c *gin.Context) {
	doctorUID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID"})
		return
	}

	approvals, err := h.Doctors.History(c.Request.Context(), doctorUID, 10)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if approvals == nil {
		approvals = make([]models.Approval, 0)
	}
	c.JSON(http.StatusOK, approvals)
}
