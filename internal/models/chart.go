// ABOUTME: Chart-ready shapes derived from dashboard records.
// ABOUTME: Renames fields for the view layer and coerces numerics.
package models

// PerformancePoint is one point on the monthly performance line chart.
type PerformancePoint struct {
	Month         string  `json:"month" yaml:"month"`
	Score         float64 `json:"score" yaml:"score"`
	Attendance    float64 `json:"attendance" yaml:"attendance"`
	Participation float64 `json:"participation" yaml:"participation"`
}

// SubjectBar is one bar on the subject chart.
type SubjectBar struct {
	Name     string  `json:"name" yaml:"name"`
	Students int     `json:"students" yaml:"students"`
	AvgScore float64 `json:"avgScore" yaml:"avgScore"`
	Color    string  `json:"color" yaml:"color"`
}

// DistributionSlice is one slice of the class distribution pie.
type DistributionSlice struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
	Color string `json:"color" yaml:"color"`
}

// ChartData groups the three chart series.
type ChartData struct {
	PerformanceData       []PerformancePoint  `json:"performanceData" yaml:"performanceData"`
	SubjectData           []SubjectBar        `json:"subjectData" yaml:"subjectData"`
	ClassDistributionData []DistributionSlice `json:"classDistributionData" yaml:"classDistributionData"`
}

// NewChartData reshapes records into chart series. Slices are never nil.
func NewChartData(perf []*PerformanceRecord, subjects []*SubjectRecord, dist []*DistributionRecord) ChartData {
	out := ChartData{
		PerformanceData:       make([]PerformancePoint, 0, len(perf)),
		SubjectData:           make([]SubjectBar, 0, len(subjects)),
		ClassDistributionData: make([]DistributionSlice, 0, len(dist)),
	}
	for _, p := range perf {
		out.PerformanceData = append(out.PerformanceData, PerformancePoint{
			Month:         p.Month,
			Score:         p.Score.Float64(),
			Attendance:    p.Attendance.Float64(),
			Participation: p.Participation.Float64(),
		})
	}
	for _, s := range subjects {
		out.SubjectData = append(out.SubjectData, SubjectBar{
			Name:     s.Name,
			Students: s.Students.Int(),
			AvgScore: s.AvgScore.Float64(),
			Color:    s.Color,
		})
	}
	for _, d := range dist {
		out.ClassDistributionData = append(out.ClassDistributionData, DistributionSlice{
			Name:  d.Name,
			Value: d.Value.Int(),
			Color: d.Color,
		})
	}
	return out
}

// Summary condenses chart data into headline numbers.
type Summary struct {
	Months          int     `json:"months" yaml:"months"`
	Subjects        int     `json:"subjects" yaml:"subjects"`
	Categories      int     `json:"categories" yaml:"categories"`
	LatestMonth     string  `json:"latest_month,omitempty" yaml:"latest_month,omitempty"`
	LatestScore     float64 `json:"latest_score" yaml:"latest_score"`
	AvgAttendance   float64 `json:"avg_attendance" yaml:"avg_attendance"`
	AvgSubjectScore float64 `json:"avg_subject_score" yaml:"avg_subject_score"`
	TotalStudents   int     `json:"total_students" yaml:"total_students"`
	TotalClasses    int     `json:"total_classes" yaml:"total_classes"`
}

// Summary computes headline numbers. The latest month is the last
// performance point in ID order.
func (c ChartData) Summary() Summary {
	s := Summary{
		Months:     len(c.PerformanceData),
		Subjects:   len(c.SubjectData),
		Categories: len(c.ClassDistributionData),
	}

	if n := len(c.PerformanceData); n > 0 {
		last := c.PerformanceData[n-1]
		s.LatestMonth = last.Month
		s.LatestScore = last.Score

		var total float64
		for _, p := range c.PerformanceData {
			total += p.Attendance
		}
		s.AvgAttendance = total / float64(n)
	}

	if n := len(c.SubjectData); n > 0 {
		var total float64
		for _, b := range c.SubjectData {
			total += b.AvgScore
			s.TotalStudents += b.Students
		}
		s.AvgSubjectScore = total / float64(n)
	}

	for _, d := range c.ClassDistributionData {
		s.TotalClasses += d.Value
	}
	return s
}
