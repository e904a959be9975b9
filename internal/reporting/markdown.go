package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Revenue Forecast Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Models: %d | Scenarios: %d\n\n", r.ModelCount, len(r.Scenarios)))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Days | %d |\n", r.DataSummary.Days))
	if r.DataSummary.Days > 0 {
		sb.WriteString(fmt.Sprintf("| Date Range Start | %s |\n", r.DataSummary.DateRangeStart.Format("2006-01-02")))
		sb.WriteString(fmt.Sprintf("| Date Range End | %s |\n", r.DataSummary.DateRangeEnd.Format("2006-01-02")))
	}
	sb.WriteString(fmt.Sprintf("| Total Revenue | %.2f |\n", r.DataSummary.TotalRevenue))
	sb.WriteString(fmt.Sprintf("| Mean Daily Revenue | %.2f |\n", r.DataSummary.MeanDailyRevenue))
	sb.WriteString(fmt.Sprintf("| Promo Days | %d |\n", r.DataSummary.PromoDays))
	sb.WriteString(fmt.Sprintf("| Holiday Days | %d |\n", r.DataSummary.HolidayDays))
	sb.WriteString("\n")

	// Model Comparison
	sb.WriteString("## Model Comparison\n\n")
	if len(r.ModelComparison) > 0 {
		sb.WriteString("| Model | MAPE% | MAE | RMSE | R2 | Bias% |\n")
		sb.WriteString("|-------|-------|-----|------|----|-------|\n")
		for _, m := range r.ModelComparison {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %.4f | %.2f |\n",
				m.ModelID, m.MAPE, m.MAE, m.RMSE, m.R2, m.BiasPct))
		}
	} else {
		sb.WriteString("No model metrics available.\n")
	}
	sb.WriteString("\n")

	if r.Analysis != nil {
		renderAnalysis(&sb, r.Analysis)
	}

	// Forecasts
	sb.WriteString("## Forecasts\n\n")
	if len(r.Forecasts) > 0 {
		sb.WriteString("| Date | Point | Lower | Upper | Actual |\n")
		sb.WriteString("|------|-------|-------|-------|--------|\n")
		for _, f := range r.Forecasts {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %s | %s | %s |\n",
				f.Date.Format("2006-01-02"), f.Point,
				formatOptional(f.Lower), formatOptional(f.Upper), formatOptional(f.Actual)))
		}
	} else {
		sb.WriteString("No forecasts available.\n")
	}
	sb.WriteString("\n")

	// Scenarios
	sb.WriteString("## Scenario Impacts\n\n")
	if len(r.Scenarios) > 0 {
		sb.WriteString("| Scenario | Promo% | Oil% | Horizon | Revenue Impact% |\n")
		sb.WriteString("|----------|--------|------|---------|----------------|\n")
		for _, s := range r.Scenarios {
			sb.WriteString(fmt.Sprintf("| %s | %+.1f | %+.1f | %d | %+.2f |\n",
				s.ScenarioID, s.PromoChangePct, s.OilChangePct, s.HorizonDays, s.RevenueImpact))
		}
	} else {
		sb.WriteString("No scenario runs available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// renderAnalysis writes the statistical sections of a pipeline run.
func renderAnalysis(sb *strings.Builder, a *Analysis) {
	if len(a.FeatureImportance) > 0 {
		sb.WriteString("## Feature Importance\n\n")
		sb.WriteString("| Feature | Importance |\n")
		sb.WriteString("|---------|------------|\n")
		for _, fi := range a.FeatureImportance {
			sb.WriteString(fmt.Sprintf("| %s | %.4f |\n", fi.Feature, fi.Score))
		}
		sb.WriteString("\n")
	}

	if a.PromotionTest != nil || a.HolidayTest != nil {
		sb.WriteString("## Hypothesis Tests\n\n")
		sb.WriteString("| Test | Group A Mean | Group B Mean | t | p-value | Lift% | Cohen's d | Effect | Significant |\n")
		sb.WriteString("|------|--------------|--------------|---|---------|-------|-----------|--------|-------------|\n")
		if t := a.PromotionTest; t != nil {
			sb.WriteString(fmt.Sprintf("| Promotion vs none | %.2f | %.2f | %.3f | %.4f | %.2f | %.3f | %s | %t |\n",
				t.GroupAMean, t.GroupBMean, t.TStatistic, t.PValue, t.LiftPct, t.CohensD, t.Effect, t.Significant))
		}
		if t := a.HolidayTest; t != nil {
			sb.WriteString(fmt.Sprintf("| Holiday vs regular | %.2f | %.2f | %.3f | %.4f | %.2f | %.3f | %s | %t |\n",
				t.GroupAMean, t.GroupBMean, t.TStatistic, t.PValue, t.LiftPct, t.CohensD, t.Effect, t.Significant))
		}
		sb.WriteString("\n")
	}

	if len(a.Correlations) > 0 {
		sb.WriteString("## Revenue Correlations\n\n")
		sb.WriteString("| Feature | r | p-value | n | Significant |\n")
		sb.WriteString("|---------|---|---------|---|-------------|\n")
		for _, c := range a.Correlations {
			if !c.Defined {
				sb.WriteString(fmt.Sprintf("| %s | undefined | - | %d | - |\n", c.Feature, c.N))
				continue
			}
			sb.WriteString(fmt.Sprintf("| %s | %.4f | %.4f | %d | %t |\n",
				c.Feature, c.Correlation, c.PValue, c.N, c.Significant))
		}
		sb.WriteString("\n")
	}

	if s := a.Stationarity; s != nil {
		sb.WriteString("## Stationarity (ADF)\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| ADF Statistic | %.4f |\n", s.Statistic))
		sb.WriteString(fmt.Sprintf("| p-value | %.4f |\n", s.PValue))
		sb.WriteString(fmt.Sprintf("| Used Lag | %d |\n", s.UsedLag))
		sb.WriteString(fmt.Sprintf("| Observations | %d |\n", s.NObs))

		levels := make([]string, 0, len(s.CriticalValues))
		for level := range s.CriticalValues {
			levels = append(levels, level)
		}
		sort.Strings(levels)
		for _, level := range levels {
			sb.WriteString(fmt.Sprintf("| Critical Value (%s) | %.4f |\n", level, s.CriticalValues[level]))
		}
		sb.WriteString(fmt.Sprintf("| Stationary | %t |\n", s.Stationary))
		sb.WriteString("\n")
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
