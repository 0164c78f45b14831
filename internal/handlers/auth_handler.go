package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hrandria/hospital-api/internal/models"
	"github.com/hrandria/hospital-api/internal/store"
	"github.com/hrandria/hospital-api/internal/utils"
)

type RegisterUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=patient doctor"`
	// Doctor candidates also provide their credentials for review.
	Specialty string `json:"specialty"`
	License   string `json:"license"`
}

// RegisterUser creates an account. A doctor candidate gets the doctor_pending
// role plus a pending registration record for the admin queue; everyone else
// is a patient.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	role := models.RolePatient
	if req.Role == "doctor" {
		role = models.RoleDoctorPending
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  hashedPassword,
		Role:      role,
		CreatedAt: now,
	}

	if err := h.Store.InsertUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		h.writeError(c, err)
		return
	}

	if role == models.RoleDoctorPending {
		doctor := &models.Doctor{
			ID:        primitive.NewObjectID(),
			UserID:    user.ID,
			Name:      req.Name,
			Email:     req.Email,
			Specialty: req.Specialty,
			License:   req.License,
			Status:    models.DoctorStatusPending,
			CreatedAt: now,
		}
		// Non-fatal: the account exists either way, the registration record
		// can be recreated by an admin.
		if err := h.Store.InsertDoctor(c.Request.Context(), doctor); err != nil {
			h.Logger.Warn().Err(err).Str("user", user.ID.Hex()).Msg("could not create doctor registration record")
		}
	}

	c.JSON(http.StatusCreated, user)
}

// Login checks the credentials and mints a token carrying the role and the
// admin custom claim read from the user record.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := h.Store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !utils.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateJWT(h.JWTSecret, user.ID.Hex(), user.Role, user.Admin)
	if err != nil {
		h.Logger.Error().Err(err).Msg("token generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
