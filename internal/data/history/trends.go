package history

import (
	"fmt"
	"math"
	"time"
)

// BuildTrendReport derives per-snapshot deltas and moving averages from a
// time-ordered snapshot list.
func BuildTrendReport(snapshots []Snapshot, window time.Duration) (TrendReport, error) {
	if len(snapshots) == 0 {
		return TrendReport{}, fmt.Errorf("no snapshots available")
	}

	points := make([]TrendPoint, 0, len(snapshots))
	for i, current := range snapshots {
		point := TrendPoint{
			Timestamp:       current.Timestamp,
			FilesScanned:    current.FilesScanned,
			DecoratorCount:  current.DecoratorCount,
			RouteCount:      current.RouteCount,
			UnresolvedCount: current.UnresolvedCount,
		}

		if i > 0 {
			prev := snapshots[i-1]
			point.DeltaFiles = current.FilesScanned - prev.FilesScanned
			point.DeltaDecorators = current.DecoratorCount - prev.DecoratorCount
			point.DeltaRoutes = current.RouteCount - prev.RouteCount
			point.DeltaUnresolved = current.UnresolvedCount - prev.UnresolvedCount
			if prev.RouteCount > 0 {
				point.RouteGrowthPct = (float64(point.DeltaRoutes) / float64(prev.RouteCount)) * 100
			}
		}

		avgRoutes, avgUnresolved := movingAverages(snapshots, i, window)
		point.AvgRoutes = round2(avgRoutes)
		point.AvgUnresolved = round2(avgUnresolved)
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		ProjectKey:    snapshots[0].ProjectKey,
		Since:         snapshots[0].Timestamp,
		Until:         snapshots[len(snapshots)-1].Timestamp,
		Window:        window.String(),
		ScanCount:     len(points),
		Points:        points,
	}, nil
}

func movingAverages(snapshots []Snapshot, index int, window time.Duration) (float64, float64) {
	if window <= 0 {
		return float64(snapshots[index].RouteCount), float64(snapshots[index].UnresolvedCount)
	}

	cutoff := snapshots[index].Timestamp.Add(-window)
	var routesTotal int
	var unresolvedTotal int
	count := 0
	for i := index; i >= 0; i-- {
		if snapshots[i].Timestamp.Before(cutoff) {
			break
		}
		routesTotal += snapshots[i].RouteCount
		unresolvedTotal += snapshots[i].UnresolvedCount
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return float64(routesTotal) / float64(count), float64(unresolvedTotal) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
