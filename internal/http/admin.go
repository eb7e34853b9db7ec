package http

import (
	"github.com/gin-gonic/gin"

	"github.com/federicodonati07/fintrack-sub001/internal/database"
	"github.com/federicodonati07/fintrack-sub001/internal/models"
	"github.com/federicodonati07/fintrack-sub001/internal/plan"
)

// GET /v1/admin/users
func (s *Server) adminListUsers(c *gin.Context) {
	var users []models.User
	if err := database.DB.Order("id asc").Find(&users).Error; err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, users)
}

// PUT /v1/admin/plan-limits/:plan — tune the numeric quotas of a plan tier.
// Takes effect on the next shared-account operation.
func (s *Server) adminSetPlanLimits(c *gin.Context) {
	tier := c.Param("plan")
	known := false
	for _, d := range plan.Defaults() {
		if d.Plan == tier {
			known = true
			break
		}
	}
	if !known {
		c.JSON(400, gin.H{"error": "unknown_plan"})
		return
	}

	var input struct {
		SharedAccounts             *int `json:"shared_accounts" binding:"required"`
		MaxMembersPerSharedAccount *int `json:"max_members_per_shared_account" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if *input.SharedAccounts < 0 || *input.MaxMembersPerSharedAccount < 0 ||
		*input.MaxMembersPerSharedAccount > plan.MemberCeiling {
		c.JSON(400, gin.H{"error": "limits_out_of_range"})
		return
	}

	row := models.PlanLimits{
		Plan:                       tier,
		SharedAccounts:             *input.SharedAccounts,
		MaxMembersPerSharedAccount: *input.MaxMembersPerSharedAccount,
	}
	if err := database.DB.Save(&row).Error; err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, row)
}
