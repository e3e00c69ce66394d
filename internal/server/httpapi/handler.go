package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

type validateRequest struct {
	Token string `json:"token"`
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *HTTPServer) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	result, err := s.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateIdentity):
			c.String(http.StatusBadRequest, "User already exists")
		case errors.Is(err, common.ErrInvalidIdentity):
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid identity"})
		default:
			s.logger.Error(c.Request.Context(), "register failed", "error", err.Error())
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, authResponse{Token: result.Token, Email: result.Identity})
}

func (s *HTTPServer) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	result, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			c.Status(http.StatusUnauthorized)
			return
		}
		s.logger.Error(c.Request.Context(), "login failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	c.JSON(http.StatusOK, authResponse{Token: result.Token, Email: result.Identity})
}

func (s *HTTPServer) validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	if !s.auth.ValidateToken(c.Request.Context(), req.Token) {
		c.JSON(http.StatusUnauthorized, validateResponse{Valid: false})
		return
	}

	c.JSON(http.StatusOK, validateResponse{Valid: true})
}

func (s *HTTPServer) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
