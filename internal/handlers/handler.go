package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hrandria/hospital-api/internal/services"
	"github.com/hrandria/hospital-api/internal/store"
)

// PhotoUploader is what the profile handlers need from the photo storage.
type PhotoUploader interface {
	Enabled() bool
	Upload(ctx context.Context, uid, filename, contentType string, body io.Reader) (string, error)
}

// Handler groups the HTTP endpoints with their dependencies. All handlers
// are methods on this struct.
type Handler struct {
	Store        store.Store
	Doctors      *services.DoctorService
	Appointments *services.AppointmentService
	Photos       PhotoUploader
	JWTSecret    []byte
	Logger       zerolog.Logger
}

func NewHandler(st store.Store, doctors *services.DoctorService, appointments *services.AppointmentService, photos PhotoUploader, jwtSecret []byte, logger zerolog.Logger) *Handler {
	return &Handler{
		Store:        st,
		Doctors:      doctors,
		Appointments: appointments,
		Photos:       photos,
		JWTSecret:    jwtSecret,
		Logger:       logger.With().Str("component", "http").Logger(),
	}
}

// currentUserID reads the authenticated user id set by the JWT middleware.
func (h *Handler) currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// writeError maps service and store errors onto HTTP responses.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, store.ErrUnscheduled):
		c.JSON(http.StatusNotFound, gin.H{"error": "Horaire invalide"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflit horaire: un rendez-vous est déjà approuvé pour ce créneau"})
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "Record already exists"})
	default:
		h.Logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
