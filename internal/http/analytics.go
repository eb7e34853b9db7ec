package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/federicodonati07/fintrack-sub001/internal/analytics"
	"github.com/federicodonati07/fintrack-sub001/internal/database"
	"github.com/federicodonati07/fintrack-sub001/internal/models"
	"github.com/federicodonati07/fintrack-sub001/internal/plan"
)

// anchorBalance sums the user's live balances: personal accounts plus,
// optionally, the shared accounts they belong to.
func (s *Server) anchorBalance(c *gin.Context, userID uint, includeShared bool) (decimal.Decimal, error) {
	var accounts []models.Account
	if err := database.DB.Where("user_id = ?", userID).Find(&accounts).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}

	if includeShared {
		sharedAccounts, err := s.shared.ListForUser(c.Request.Context(), userID)
		if err != nil {
			return decimal.Zero, err
		}
		for _, a := range sharedAccounts {
			total = total.Add(a.CurrentBalance)
		}
	}
	return total, nil
}

func (s *Server) loadTransactions(userID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := database.DB.Where("user_id = ?", userID).Order("date asc").Find(&txs).Error
	return txs, err
}

func historyFeature(interval analytics.Interval, allTime bool) plan.Feature {
	if allTime {
		return plan.FeatureHistoryAllTime
	}
	switch interval {
	case analytics.IntervalMonth:
		return plan.FeatureHistoryMonthly
	case analytics.IntervalWeek:
		return plan.FeatureHistoryWeekly
	default:
		return plan.FeatureHistoryDaily
	}
}

// GET /v1/analytics/balance-history?interval=day&periods=30
// Gating happens here, where the data is served, not in the UI.
func (s *Server) balanceHistory(c *gin.Context) {
	user := currentUser(c)

	interval := analytics.Interval(c.DefaultQuery("interval", "day"))
	switch interval {
	case analytics.IntervalHour, analytics.IntervalDay, analytics.IntervalWeek, analytics.IntervalMonth:
	default:
		c.JSON(400, gin.H{"error": "invalid_interval"})
		return
	}

	periods, err := strconv.Atoi(c.DefaultQuery("periods", "30"))
	if err != nil || periods < 1 || periods > 366 {
		c.JSON(400, gin.H{"error": "invalid_periods"})
		return
	}

	allTime := c.Query("all") == "true"
	if !plan.CanAccess(user.Plan, historyFeature(interval, allTime)) {
		c.JSON(403, gin.H{"error": "plan_upgrade_required"})
		return
	}

	includeShared := c.Query("include_shared") == "true"
	anchor, err := s.anchorBalance(c, user.ID, includeShared)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	txs, err := s.loadTransactions(user.ID)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	if allTime {
		// Widen the window to cover the oldest transaction.
		interval = analytics.IntervalDay
		if len(txs) > 0 {
			days := int(now.Sub(txs[0].Date).Hours()/24) + 1
			if days > periods {
				periods = days
			}
			if periods > 3650 {
				periods = 3650
			}
		}
	}

	points := analytics.History(txs, anchor, analytics.Options{
		Interval:   interval,
		Periods:    periods,
		Now:        now,
		ClampFloor: true,
	})

	c.JSON(200, gin.H{"anchor": anchor, "interval": interval, "points": points})
}

// GET /v1/analytics/projection?months=6
func (s *Server) balanceProjection(c *gin.Context) {
	user := currentUser(c)

	if !plan.CanAccess(user.Plan, plan.FeatureProjection) {
		c.JSON(403, gin.H{"error": "plan_upgrade_required"})
		return
	}

	months, err := strconv.Atoi(c.DefaultQuery("months", "6"))
	if err != nil || months < 1 || months > 60 {
		c.JSON(400, gin.H{"error": "invalid_months"})
		return
	}

	anchor, err := s.anchorBalance(c, user.ID, c.Query("include_shared") == "true")
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	txs, err := s.loadTransactions(user.ID)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	points := analytics.Projection(txs, anchor, months, time.Now(), true)

	c.JSON(200, gin.H{
		"anchor":              anchor,
		"average_monthly_net": analytics.AverageMonthlyNet(txs),
		"points":              points,
	})
}

// GET /v1/analytics/insights
func (s *Server) getInsights(c *gin.Context) {
	user := currentUser(c)

	if !plan.CanAccess(user.Plan, plan.FeatureCategoryAnalytics) {
		c.JSON(403, gin.H{"error": "plan_upgrade_required"})
		return
	}

	txs, err := s.loadTransactions(user.ID)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	c.JSON(200, gin.H{
		"monthly_health":     analytics.Health(txs, now),
		"category_breakdown": analytics.Categories(txs, now),
	})
}
