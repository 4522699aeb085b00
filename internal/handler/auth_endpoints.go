package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storyboard-server/internal/credentials"
	"storyboard-server/internal/models"
)

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, models.ErrCodeBadRequest, "Invalid request data: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		abortBadRequest(c, models.ErrCodeValidation, credentials.MsgSignUpFieldsMissing)
		return
	}

	user, td, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	registrationsTotal.Inc()
	c.JSON(http.StatusCreated, models.AuthResponse{Token: td.AccessToken, User: user})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, models.ErrCodeBadRequest, "Invalid request data: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		abortBadRequest(c, models.ErrCodeValidation, credentials.MsgLoginFieldsMissing)
		return
	}

	td, user, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		loginsTotal.WithLabelValues("failure").Inc()
		handleServiceError(c, err)
		return
	}

	loginsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, models.AuthResponse{Token: td.AccessToken, User: user})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), c.GetString(ctxAccessUUID)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
