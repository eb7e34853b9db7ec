package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/federicodonati07/fintrack-sub001/internal/database"
	"github.com/federicodonati07/fintrack-sub001/internal/models"
)

// Auth Response Wrapper
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// POST /v1/auth/register
func (s *Server) authRegister(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.User
	if err := database.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		c.JSON(409, gin.H{"error": "user_already_exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(500, gin.H{"error": "encryption_failed"})
		return
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         input.Name,
		Plan:         models.PlanFree,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	token, err := s.jwt.Generate(&user)
	if err != nil {
		c.JSON(500, gin.H{"error": "token_generation_failed"})
		return
	}

	c.JSON(201, AuthResponse{Token: token, User: &user})
}

// POST /v1/auth/login
func (s *Server) authLogin(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error; err != nil {
		c.JSON(401, gin.H{"error": "invalid_credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(401, gin.H{"error": "invalid_credentials"})
		return
	}

	token, err := s.jwt.Generate(&user)
	if err != nil {
		c.JSON(500, gin.H{"error": "token_generation_failed"})
		return
	}

	c.JSON(200, AuthResponse{Token: token, User: &user})
}
