// ABOUTME: Terminal rendering of dashboard chart data.
// ABOUTME: Draws horizontal bar charts for performance, subjects, and distribution.
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/classdash/internal/models"
)

const barWidth = 30

var (
	headerColor = color.New(color.Bold, color.FgCyan)
	faintColor  = color.New(color.Faint)
	scoreColor  = color.New(color.FgMagenta)
	attendColor = color.New(color.FgCyan)
	partColor   = color.New(color.FgYellow)
	subjColor   = color.New(color.FgGreen)
	distColor   = color.New(color.FgBlue)
)

// renderChart writes all three charts followed by the headline summary.
func renderChart(w io.Writer, chart models.ChartData) {
	headerColor.Fprintln(w, "Student performance")
	if len(chart.PerformanceData) == 0 {
		faintColor.Fprintln(w, "  no data")
	}
	for _, p := range chart.PerformanceData {
		fmt.Fprintf(w, "  %s score         %s %5.1f\n", padRight(p.Month, 6), scoreColor.Sprint(bar(p.Score, 100, barWidth)), p.Score)
		fmt.Fprintf(w, "  %s attendance    %s %5.1f\n", padRight("", 6), attendColor.Sprint(bar(p.Attendance, 100, barWidth)), p.Attendance)
		fmt.Fprintf(w, "  %s participation %s %5.1f\n", padRight("", 6), partColor.Sprint(bar(p.Participation, 100, barWidth)), p.Participation)
	}

	fmt.Fprintln(w)
	headerColor.Fprintln(w, "Subjects")
	if len(chart.SubjectData) == 0 {
		faintColor.Fprintln(w, "  no data")
	}
	var maxStudents float64
	for _, s := range chart.SubjectData {
		maxStudents = max(maxStudents, float64(s.Students))
	}
	for _, s := range chart.SubjectData {
		fmt.Fprintf(w, "  %s %s %3d students  avg %5.1f %s\n",
			padRight(truncate(s.Name, 14), 14),
			subjColor.Sprint(bar(float64(s.Students), maxStudents, barWidth)),
			s.Students, s.AvgScore, faintColor.Sprint(s.Color))
	}

	fmt.Fprintln(w)
	headerColor.Fprintln(w, "Class distribution")
	if len(chart.ClassDistributionData) == 0 {
		faintColor.Fprintln(w, "  no data")
	}
	var total int
	for _, d := range chart.ClassDistributionData {
		total += d.Value
	}
	for _, d := range chart.ClassDistributionData {
		share := 0.0
		if total > 0 {
			share = float64(d.Value) / float64(total) * 100
		}
		fmt.Fprintf(w, "  %s %s %3d classes  %4.0f%% %s\n",
			padRight(truncate(d.Name, 14), 14),
			distColor.Sprint(bar(share, 100, barWidth)),
			d.Value, share, faintColor.Sprint(d.Color))
	}

	fmt.Fprintln(w)
	renderSummary(w, chart.Summary())
}

func renderSummary(w io.Writer, s models.Summary) {
	headerColor.Fprintln(w, "Summary")
	if s.LatestMonth != "" {
		fmt.Fprintf(w, "  Latest score     %.1f (%s)\n", s.LatestScore, s.LatestMonth)
		fmt.Fprintf(w, "  Avg attendance   %.1f\n", s.AvgAttendance)
	}
	fmt.Fprintf(w, "  Students         %d across %d subjects\n", s.TotalStudents, s.Subjects)
	if s.Subjects > 0 {
		fmt.Fprintf(w, "  Avg subject      %.1f\n", s.AvgSubjectScore)
	}
	fmt.Fprintf(w, "  Classes          %d in %d categories\n", s.TotalClasses, s.Categories)
}

// bar scales value against limit into a run of block characters.
func bar(value, limit float64, width int) string {
	if limit <= 0 || value <= 0 {
		return strings.Repeat(" ", width)
	}
	n := int(value / limit * float64(width))
	n = min(max(n, 0), width)
	return strings.Repeat("█", n) + strings.Repeat(" ", width-n)
}
