package reports

import (
	"sort"
	"time"

	"okr/internal/domain/directory"
	"okr/internal/domain/performance"
	"okr/internal/domain/scoring"
)

type Band string

const (
	BandA Band = "A"
	BandB Band = "B"
	BandC Band = "C"
	BandD Band = "D"
	BandE Band = "E"
)

var Bands = []Band{BandA, BandB, BandC, BandD, BandE}

func BandOf(score float64) Band {
	switch {
	case score >= 90:
		return BandA
	case score >= 80:
		return BandB
	case score >= 70:
		return BandC
	case score >= 60:
		return BandD
	default:
		return BandE
	}
}

type ReportRow struct {
	Rank         int      `json:"rank"`
	EmployeeID   string   `json:"employeeId"`
	Name         string   `json:"name"`
	DepartmentID string   `json:"departmentId,omitempty"`
	Department   string   `json:"department,omitempty"`
	Self         *float64 `json:"self"`
	Leader       *float64 `json:"leader"`
	Boss         *float64 `json:"boss"`
	Final        *float64 `json:"final"`
	Band         Band     `json:"band,omitempty"`
}

type DepartmentAverage struct {
	DepartmentID string  `json:"departmentId"`
	Name         string  `json:"name"`
	Average      float64 `json:"average"`
	Count        int     `json:"count"`
}

type AssessmentReport struct {
	AssessmentID       string              `json:"assessmentId"`
	AssessmentName     string              `json:"assessmentName"`
	GeneratedAt        time.Time           `json:"generatedAt"`
	Participants       int                 `json:"participants"`
	Scored             int                 `json:"scored"`
	Average            float64             `json:"average"`
	Distribution       map[Band]int        `json:"distribution"`
	DepartmentAverages []DepartmentAverage `json:"departmentAverages"`
	Rows               []ReportRow         `json:"rows"`
}

// BuildReport ranks participants by final score, highest first. Equal scores
// share a rank. Participants without a final score follow with rank 0.
func BuildReport(assessment performance.Assessment, scores []performance.FinalScore, users map[string]directory.User, departments map[string]directory.Department, now time.Time) AssessmentReport {
	report := AssessmentReport{
		AssessmentID:       assessment.ID,
		AssessmentName:     assessment.Name,
		GeneratedAt:        now.UTC(),
		Participants:       len(scores),
		Distribution:       map[Band]int{},
		DepartmentAverages: []DepartmentAverage{},
		Rows:               make([]ReportRow, 0, len(scores)),
	}
	for _, band := range Bands {
		report.Distribution[band] = 0
	}

	for _, score := range scores {
		user := users[score.EmployeeID]
		row := ReportRow{
			EmployeeID:   score.EmployeeID,
			Name:         user.Name,
			DepartmentID: user.DepartmentID,
			Department:   departments[user.DepartmentID].Name,
			Self:         score.Self,
			Leader:       score.Leader,
			Boss:         score.Boss,
			Final:        score.Final,
		}
		if row.Name == "" {
			row.Name = score.EmployeeID
		}
		if score.Final != nil {
			row.Band = BandOf(*score.Final)
		}
		report.Rows = append(report.Rows, row)
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		a, b := report.Rows[i], report.Rows[j]
		if (a.Final == nil) != (b.Final == nil) {
			return a.Final != nil
		}
		if a.Final != nil && *a.Final != *b.Final {
			return *a.Final > *b.Final
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.EmployeeID < b.EmployeeID
	})

	var finals []float64
	byDepartment := map[string][]float64{}
	for i := range report.Rows {
		row := &report.Rows[i]
		if row.Final == nil {
			continue
		}
		row.Rank = len(finals) + 1
		if i > 0 && report.Rows[i-1].Final != nil && *report.Rows[i-1].Final == *row.Final {
			row.Rank = report.Rows[i-1].Rank
		}
		finals = append(finals, *row.Final)
		report.Distribution[row.Band]++
		if row.DepartmentID != "" {
			byDepartment[row.DepartmentID] = append(byDepartment[row.DepartmentID], *row.Final)
		}
	}
	report.Scored = len(finals)
	report.Average = scoring.Round2(scoring.Average(finals))

	for id, values := range byDepartment {
		report.DepartmentAverages = append(report.DepartmentAverages, DepartmentAverage{
			DepartmentID: id,
			Name:         departments[id].Name,
			Average:      scoring.Round2(scoring.Average(values)),
			Count:        len(values),
		})
	}
	sort.Slice(report.DepartmentAverages, func(i, j int) bool {
		a, b := report.DepartmentAverages[i], report.DepartmentAverages[j]
		if a.Average != b.Average {
			return a.Average > b.Average
		}
		return a.DepartmentID < b.DepartmentID
	})
	return report
}
