package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"routelens/internal/data/history"
)

func RenderTrendTSV(report history.TrendReport) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("timestamp\tfiles_scanned\tdecorators\troutes\tunresolved\tdelta_files\tdelta_decorators\tdelta_routes\tdelta_unresolved\troute_growth_pct\tavg_routes\tavg_unresolved\twindow_hours\n")
	for _, point := range report.Points {
		buf.WriteString(fmt.Sprintf(
			"%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n",
			point.Timestamp.UTC().Format(time.RFC3339),
			point.FilesScanned,
			point.DecoratorCount,
			point.RouteCount,
			point.UnresolvedCount,
			point.DeltaFiles,
			point.DeltaDecorators,
			point.DeltaRoutes,
			point.DeltaUnresolved,
			point.RouteGrowthPct,
			point.AvgRoutes,
			point.AvgUnresolved,
			point.WindowHours,
		))
	}

	return []byte(buf.String()), nil
}

func RenderTrendJSON(report history.TrendReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
