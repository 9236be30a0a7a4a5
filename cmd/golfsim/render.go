package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/openrange/backend/internal/flight"
	"github.com/openrange/backend/internal/launch"
	"github.com/openrange/backend/internal/shots"
)

const plotWidth = 72

var (
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
)

func renderSummary(n int, out shots.Outcome) string {
	sum, res := out.Summary, out.Result
	u := unitLabel(sum.Unit)

	var left, right strings.Builder
	row := func(b *strings.Builder, label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row(&left, "Carry", fmt.Sprintf("%.1f %s", sum.Carry, u))
	row(&left, "Total", fmt.Sprintf("%.1f %s", sum.Total, u))
	row(&left, "Rollout", fmt.Sprintf("%.1f %s", sum.Rollout, u))
	row(&left, "Lateral", fmt.Sprintf("%+.1f %s", sum.Lateral, u))
	row(&left, "Apex", fmt.Sprintf("%.1f %s", sum.Apex, u))

	row(&right, "Flight", fmt.Sprintf("%.2f s", res.FlightTime))
	row(&right, "Settle", fmt.Sprintf("%.2f s", res.SettleTime))
	row(&right, "Descent", fmt.Sprintf("%.1f°", res.LandingAngle))
	row(&right, "Land spin", fmt.Sprintf("%.0f rpm", res.LandingSpin))
	row(&right, "Bounces", fmt.Sprintf("%d", res.Bounces))

	title := fmt.Sprintf("Shot %d  %s  %.0f/%.0f rpm", n, out.Surface, out.Spin.Back, out.Spin.Side)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left.String(), "   ", right.String())
	parts := []string{headerStyle.Render(title), body}
	switch {
	case res.FailSafe:
		parts = append(parts, warnStyle.Render("stopped by the out-of-range guard"))
	case res.TimedOut:
		parts = append(parts, warnStyle.Render("did not settle before the time cap"))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func renderPlot(out shots.Outcome) string {
	heights := profile(out.Result.Trajectory, plotWidth)
	if len(heights) < 2 {
		return ""
	}
	u := out.Summary.Unit
	for i := range heights {
		heights[i] = launch.FromMetres(heights[i], u)
	}
	caption := fmt.Sprintf("height (%s) over %.0f %s downrange", unitLabel(u), out.Summary.Total, unitLabel(u))
	return asciigraph.Plot(heights, asciigraph.Height(10), asciigraph.Width(plotWidth), asciigraph.Caption(caption))
}

// profile resamples a trajectory to n heights at evenly spaced downrange
// distances, from the origin to the furthest sample.
func profile(samples []flight.Sample, n int) []float64 {
	if len(samples) < 2 || n < 2 {
		return nil
	}
	maxX := 0.0
	for _, s := range samples {
		if s.X > maxX {
			maxX = s.X
		}
	}
	if maxX <= 0 {
		return nil
	}

	out := make([]float64, n)
	j := 0
	for i := range out {
		x := maxX * float64(i) / float64(n-1)
		for j < len(samples)-2 && samples[j+1].X < x {
			j++
		}
		a, b := samples[j], samples[j+1]
		if b.X <= a.X {
			out[i] = b.Y
			continue
		}
		t := (x - a.X) / (b.X - a.X)
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		out[i] = a.Y + (b.Y-a.Y)*t
	}
	return out
}

func unitLabel(u launch.LengthUnit) string {
	switch u {
	case launch.Meters:
		return "m"
	case launch.Feet:
		return "ft"
	default:
		return "yd"
	}
}
