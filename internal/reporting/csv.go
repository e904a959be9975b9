package reporting

import (
	"fmt"
	"strings"
)

// RenderForecastCSV renders forecast rows as CSV string.
func RenderForecastCSV(forecasts []ForecastRow) string {
	var sb strings.Builder

	sb.WriteString("date,point,lower,upper,actual\n")

	for _, f := range forecasts {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%s,%s,%s\n",
			f.Date.Format("2006-01-02"),
			f.Point,
			csvOptional(f.Lower),
			csvOptional(f.Upper),
			csvOptional(f.Actual),
		))
	}

	return sb.String()
}

// RenderMetricsCSV renders the model comparison as CSV string.
func RenderMetricsCSV(metrics []ModelMetricRow) string {
	var sb strings.Builder

	sb.WriteString("model_id,mape,mae,rmse,r2,bias_pct\n")

	for _, m := range metrics {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			m.ModelID, m.MAPE, m.MAE, m.RMSE, m.R2, m.BiasPct))
	}

	return sb.String()
}

func csvOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}
