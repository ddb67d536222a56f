package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// WorkerStats are counters a worker keeps for one tile, merged into the
// global statistics as each tile result is merged
type WorkerStats struct {
	CameraRays int64
	Pixels     int64
	Tiles      int64
}

func (ws *WorkerStats) merge(other WorkerStats) {
	ws.CameraRays += other.CameraRays
	ws.Pixels += other.Pixels
	ws.Tiles += other.Tiles
}

// Stats summarizes a finished (or cancelled) render
type Stats struct {
	WorkerStats
	Workers   int
	Duration  time.Duration
	Cancelled bool
}

// Summary renders the statistics as a table
func (s Stats) Summary() string {
	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	status := "complete"
	if s.Cancelled {
		status = "cancelled (partial result)"
	}

	raysPerSec := 0.0
	if s.Duration > 0 {
		raysPerSec = float64(s.CameraRays) / s.Duration.Seconds()
	}

	table.Append([]string{"Status", status})
	table.Append([]string{"Workers", fmt.Sprintf("%d", s.Workers)})
	table.Append([]string{"Tiles", fmt.Sprintf("%d", s.Tiles)})
	table.Append([]string{"Pixels", fmt.Sprintf("%d", s.Pixels)})
	table.Append([]string{"Camera rays", fmt.Sprintf("%d", s.CameraRays)})
	table.Append([]string{"Rays/sec", fmt.Sprintf("%.0f", raysPerSec)})
	table.Append([]string{"Duration", s.Duration.Round(time.Millisecond).String()})
	table.Render()
	return buf.String()
}
