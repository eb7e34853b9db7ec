package plan

import "github.com/federicodonati07/fintrack-sub001/internal/models"

// Feature names gate analytics surfaces. Enforcement happens where the data
// is served, not only in the UI.
type Feature string

const (
	FeatureHistoryDaily      Feature = "balance_history_daily"
	FeatureHistoryWeekly     Feature = "balance_history_weekly"
	FeatureHistoryMonthly    Feature = "balance_history_monthly"
	FeatureHistoryYearly     Feature = "balance_history_yearly"
	FeatureHistoryAllTime    Feature = "balance_history_all_time"
	FeatureProjection        Feature = "balance_projection"
	FeatureCategoryAnalytics Feature = "category_analytics"
)

var tierRank = map[string]int{
	models.PlanFree:  0,
	models.PlanPro:   1,
	models.PlanUltra: 2,
	models.PlanAdmin: 3,
}

var featureMinTier = map[Feature]string{
	FeatureHistoryDaily:      models.PlanFree,
	FeatureHistoryWeekly:     models.PlanFree,
	FeatureHistoryMonthly:    models.PlanPro,
	FeatureHistoryYearly:     models.PlanPro,
	FeatureHistoryAllTime:    models.PlanUltra,
	FeatureProjection:        models.PlanPro,
	FeatureCategoryAnalytics: models.PlanFree,
}

// CanAccess reports whether a plan tier may use a feature. Unknown plans and
// unknown features are denied.
func CanAccess(planTier string, f Feature) bool {
	min, ok := featureMinTier[f]
	if !ok {
		return false
	}
	rank, ok := tierRank[planTier]
	if !ok {
		return false
	}
	return rank >= tierRank[min]
}
