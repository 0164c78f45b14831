package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hrandria/hospital-api/internal/models"
)

type CreateAppointmentRequest struct {
	DoctorID string `json:"doctorId"`
	Date     string `json:"date"` // 2006-01-02
	Time     string `json:"time"` // 15:04
}

// CreateAppointment books a pending appointment for the current patient.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	patientID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var doctorID primitive.ObjectID
	if req.DoctorID != "" {
		var err error
		if doctorID, err = primitive.ObjectIDFromHex(req.DoctorID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID"})
			return
		}
	}

	appt, err := h.Appointments.Book(c.Request.Context(), patientID, doctorID, req.Date, req.Time)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// GetMyAppointments lists the current patient's appointments, newest first.
func (h *Handler) GetMyAppointments(c *gin.Context) {
	patientID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	appointments, err := h.Appointments.ForPatient(c.Request.Context(), patientID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if appointments == nil {
		appointments = make([]models.Appointment, 0)
	}
	c.JSON(http.StatusOK, appointments)
}

// GetPendingAppointments lists the current doctor's review queue.
func (h *Handler) GetPendingAppointments(c *gin.Context) {
	doctorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	appointments, err := h.Appointments.PendingForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if appointments == nil {
		appointments = make([]models.Appointment, 0)
	}
	c.JSON(http.StatusOK, appointments)
}

// ApproveAppointment runs the transactional slot check and approves.
func (h *Handler) ApproveAppointment(c *gin.Context) {
	apptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}

	appt, err := h.Appointments.Approve(c.Request.Context(), apptID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// RejectAppointment cancels a pending appointment with an optional reason.
func (h *Handler) RejectAppointment(c *gin.Context) {
	apptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// The body is optional; a bare reject is a valid request.
	_ = c.ShouldBindJSON(&req)

	if err := h.Appointments.Reject(c.Request.Context(), apptID, req.Reason); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled successfully"})
}
