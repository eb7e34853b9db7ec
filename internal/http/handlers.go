package http

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xeipuuv/gojsonschema"

	"github.com/federicodonati07/fintrack-sub001/internal/database"
	"github.com/federicodonati07/fintrack-sub001/internal/models"
)

var accountTypes = map[string]bool{
	"checking": true, "savings": true, "investment": true,
	"wallet": true, "credit_card": true, "other": true,
}

var transactionTypes = map[string]bool{
	models.TxIncome: true, models.TxExpense: true, models.TxTransfer: true,
	models.TxPartitionCreation: true, models.TxPartitionTransferTo: true,
	models.TxPartitionTransferFrom: true,
}

func (s *Server) createAccount(c *gin.Context) {
	user := currentUser(c)

	var account models.Account
	if err := c.BindJSON(&account); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if account.Type != "" && !accountTypes[account.Type] {
		c.JSON(400, gin.H{"error": "invalid_account_type"})
		return
	}

	account.ID = 0
	account.UserID = user.ID

	if err := database.DB.Create(&account).Error; err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(201, account)
}

func (s *Server) listAccounts(c *gin.Context) {
	user := currentUser(c)

	var accounts []models.Account
	if err := database.DB.Where("user_id = ?", user.ID).Order(`"order" asc, created_at asc`).Find(&accounts).Error; err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, accounts)
}

func (s *Server) getAccount(c *gin.Context) {
	user := currentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return
	}

	var account models.Account
	if err := database.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&account).Error; err != nil {
		c.JSON(404, gin.H{"error": "account not found"})
		return
	}

	c.JSON(200, account)
}

func (s *Server) updateAccount(c *gin.Context) {
	user := currentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return
	}

	var account models.Account
	if err := database.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&account).Error; err != nil {
		c.JSON(404, gin.H{"error": "account not found"})
		return
	}

	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if v, ok := input["name"].(string); ok {
		account.Name = v
	}
	if v, ok := input["type"].(string); ok {
		if !accountTypes[v] {
			c.JSON(400, gin.H{"error": "invalid_account_type"})
			return
		}
		account.Type = v
	}
	if v, ok := input["color"].(string); ok {
		account.Color = v
	}
	if v, ok := input["currency"].(string); ok {
		account.Currency = v
	}
	if v, ok := input["is_default"].(bool); ok {
		account.IsDefault = v
	}
	if v, ok := input["balance"]; ok {
		if bal, err := decimalFrom(v); err == nil {
			account.Balance = bal
		}
	}

	if err := database.DB.Save(&account).Error; err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, account)
}

func (s *Server) deleteAccount(c *gin.Context) {
	user := currentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return
	}

	if err := database.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Account{}).Error; err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"message": "account deleted"})
}

// PUT /v1/accounts/order — ids not belonging to the user are silently skipped.
func (s *Server) reorderAccounts(c *gin.Context) {
	user := currentUser(c)

	var input struct {
		AccountIDs []uint `json:"account_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	pos := 0
	for _, id := range input.AccountIDs {
		res := database.DB.Model(&models.Account{}).
			Where("id = ? AND user_id = ?", id, user.ID).
			Update("order", pos)
		if res.Error != nil {
			c.JSON(500, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected > 0 {
			pos++
		}
	}

	c.JSON(200, gin.H{"message": "order updated"})
}

func (s *Server) createTransaction(c *gin.Context) {
	user := currentUser(c)

	var tx models.Transaction
	if err := c.BindJSON(&tx); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if !transactionTypes[tx.Type] {
		c.JSON(400, gin.H{"error": "invalid_transaction_type"})
		return
	}
	if tx.Amount.IsNegative() {
		c.JSON(400, gin.H{"error": "amount_must_be_non_negative"})
		return
	}

	tx.ID = 0
	tx.UserID = user.ID

	if err := database.DB.Create(&tx).Error; err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(201, tx)
}

func (s *Server) listTransactions(c *gin.Context) {
	user := currentUser(c)

	var txs []models.Transaction
	query := database.DB.Where("user_id = ?", user.ID).Order("date desc, created_at desc")

	if t := strings.TrimSpace(c.Query("type")); t != "" && t != "All" {
		query = query.Where("LOWER(type) = LOWER(?)", t)
	}
	if cat := strings.TrimSpace(c.Query("category")); cat != "" {
		query = query.Where("LOWER(category) = LOWER(?)", cat)
	}
	if acc := c.Query("account_id"); acc != "" {
		query = query.Where("account_id = ?", acc)
	}
	if minStr := c.Query("min_amount"); minStr != "" {
		if min, err := decimal.NewFromString(minStr); err == nil {
			query = query.Where("amount >= ?", min)
		}
	}
	if maxStr := c.Query("max_amount"); maxStr != "" {
		if max, err := decimal.NewFromString(maxStr); err == nil {
			query = query.Where("amount <= ?", max)
		}
	}
	if start := c.Query("start_date"); start != "" {
		query = query.Where("date >= ?", start)
	}
	if end := c.Query("end_date"); end != "" {
		query = query.Where("date <= ?", end)
	}

	if err := query.Find(&txs).Error; err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, txs)
}

func (s *Server) getTransaction(c *gin.Context) {
	user := currentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return
	}

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&tx).Error; err != nil {
		c.JSON(404, gin.H{"error": "transaction not found"})
		return
	}

	c.JSON(200, tx)
}

func (s *Server) updateTransaction(c *gin.Context) {
	user := currentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return
	}

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&tx).Error; err != nil {
		c.JSON(404, gin.H{"error": "transaction not found"})
		return
	}

	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if v, ok := input["type"].(string); ok {
		t := strings.ToLower(v)
		if !transactionTypes[t] {
			c.JSON(400, gin.H{"error": "invalid_transaction_type"})
			return
		}
		tx.Type = t
	}
	if v, ok := input["amount"]; ok {
		amt, err := decimalFrom(v)
		if err != nil || amt.IsNegative() {
			c.JSON(400, gin.H{"error": "invalid_amount"})
			return
		}
		tx.Amount = amt
	}
	if v, ok := input["category"].(string); ok {
		tx.Category = v
	}
	if v, ok := input["description"].(string); ok {
		tx.Description = v
	}
	if v, ok := input["is_recurring"].(bool); ok {
		tx.IsRecurring = v
	}

	if err := database.DB.Save(&tx).Error; err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, tx)
}

func (s *Server) deleteTransaction(c *gin.Context) {
	user := currentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return
	}

	if err := database.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Transaction{}).Error; err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"message": "transaction deleted"})
}

// POST /v1/transactions/import — bulk import, schema-validated before any row
// is written.
func (s *Server) importTransactions(c *gin.Context) {
	user := currentUser(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(400, gin.H{"error": "failed to read body"})
		return
	}

	res, err := s.txSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		c.JSON(500, gin.H{"error": "validation_failed"})
		return
	}
	if !res.Valid() {
		details := []string{}
		for _, e := range res.Errors() {
			details = append(details, e.String())
		}
		c.JSON(422, gin.H{"error": "schema_invalid", "details": details})
		return
	}

	var txs []models.Transaction
	if err := json.Unmarshal(body, &txs); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	for i := range txs {
		txs[i].ID = 0
		txs[i].UserID = user.ID
	}
	if len(txs) == 0 {
		c.JSON(200, gin.H{"imported": 0})
		return
	}

	if err := database.DB.Create(&txs).Error; err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(201, gin.H{"imported": len(txs)})
}

func decimalFrom(v interface{}) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(n)
	case json.Number:
		return decimal.NewFromString(n.String())
	}
	return decimal.Zero, strconv.ErrSyntax
}
