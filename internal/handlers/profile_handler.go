package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetProfile returns the current user's record. The password hash never
// serializes.
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	user, err := h.Store.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile lets a user change their display name.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No update fields provided"})
		return
	}

	if err := h.Store.UpdateUserName(c.Request.Context(), userID, req.Name); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// UploadProfilePhoto stores the photo at the user's deterministic key and
// records the resulting URL on the user document.
func (h *Handler) UploadProfilePhoto(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if h.Photos == nil || !h.Photos.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo storage is not configured"})
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A photo file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read the photo"})
		return
	}
	defer src.Close()

	url, err := h.Photos.Upload(c.Request.Context(), userID.Hex(), file.Filename, file.Header.Get("Content-Type"), src)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.Store.UpdateUserPhotoURL(c.Request.Context(), userID, url); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photoUrl": url})
}
