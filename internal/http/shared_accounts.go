package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/federicodonati07/fintrack-sub001/internal/shared"
)

// POST /v1/shared-accounts
func (s *Server) createSharedAccount(c *gin.Context) {
	user := currentUser(c)

	var input struct {
		Name           string          `json:"name" binding:"required"`
		Description    string          `json:"description"`
		Type           string          `json:"type"`
		CurrentBalance decimal.Decimal `json:"current_balance"`
		Currency       string          `json:"currency"`
		Color          string          `json:"color"`
		IBAN           string          `json:"iban"`
		BIC            string          `json:"bic"`
		InviteEmails   []string        `json:"invite_emails"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if input.Type != "" && !accountTypes[input.Type] {
		c.JSON(400, gin.H{"error": "invalid_account_type"})
		return
	}

	res, err := s.shared.Create(c.Request.Context(), user, shared.AccountData{
		Name:           input.Name,
		Description:    input.Description,
		Type:           input.Type,
		CurrentBalance: input.CurrentBalance,
		Currency:       input.Currency,
		Color:          input.Color,
		IBAN:           input.IBAN,
		BIC:            input.BIC,
	}, input.InviteEmails)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(201, res)
}

// GET /v1/shared-accounts
func (s *Server) listSharedAccounts(c *gin.Context) {
	user := currentUser(c)

	accounts, err := s.shared.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, accounts)
}

// GET /v1/shared-accounts/:id
func (s *Server) getSharedAccount(c *gin.Context) {
	user := currentUser(c)

	account, err := s.shared.Get(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, account)
}

// DELETE /v1/shared-accounts/:id — owner only, cascades invite deletion.
func (s *Server) deleteSharedAccount(c *gin.Context) {
	user := currentUser(c)

	if err := s.shared.Delete(c.Request.Context(), c.Param("id"), user); err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "shared account deleted"})
}

// PUT /v1/shared-accounts/order
func (s *Server) reorderSharedAccounts(c *gin.Context) {
	user := currentUser(c)

	var input struct {
		AccountIDs []string `json:"account_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if err := s.shared.Reorder(c.Request.Context(), user, input.AccountIDs); err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "order updated"})
}

// POST /v1/shared-accounts/:id/invites
func (s *Server) createInvite(c *gin.Context) {
	user := currentUser(c)

	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	invite, err := s.shared.Invite(c.Request.Context(), c.Param("id"), user, input.Email)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(201, invite)
}

// POST /v1/shared-accounts/:id/leave
func (s *Server) leaveSharedAccount(c *gin.Context) {
	user := currentUser(c)

	if err := s.shared.Leave(c.Request.Context(), c.Param("id"), user); err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "left shared account"})
}

// DELETE /v1/shared-accounts/:id/members/:userId
func (s *Server) removeMember(c *gin.Context) {
	user := currentUser(c)

	memberID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid user id"})
		return
	}

	if err := s.shared.RemoveMember(c.Request.Context(), c.Param("id"), uint(memberID), user); err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "member removed"})
}

// GET /v1/invites — invites addressed to the current user.
func (s *Server) listInvites(c *gin.Context) {
	user := currentUser(c)

	invites, err := s.shared.ListInvites(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, invites)
}

// POST /v1/invites/:id/accept
func (s *Server) acceptInvite(c *gin.Context) {
	user := currentUser(c)

	account, err := s.shared.AcceptInvite(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, account)
}

// POST /v1/invites/:id/reject
func (s *Server) rejectInvite(c *gin.Context) {
	user := currentUser(c)

	if err := s.shared.RejectInvite(c.Request.Context(), c.Param("id"), user); err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "invite rejected"})
}

// DELETE /v1/invites/:id — inviter withdraws a pending invite.
func (s *Server) cancelInvite(c *gin.Context) {
	user := currentUser(c)

	if err := s.shared.CancelInvite(c.Request.Context(), c.Param("id"), user); err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "invite cancelled"})
}
