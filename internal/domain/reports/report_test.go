package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"okr/internal/domain/directory"
	"okr/internal/domain/performance"
)

func floatPtr(v float64) *float64 { return &v }

func TestBandOf(t *testing.T) {
	cases := map[float64]Band{100: BandA, 90: BandA, 89.99: BandB, 80: BandB, 70: BandC, 60: BandD, 59.99: BandE, 0: BandE}
	for score, want := range cases {
		if got := BandOf(score); got != want {
			t.Fatalf("BandOf(%v) = %s, want %s", score, got, want)
		}
	}
}

func sampleReport() AssessmentReport {
	scores := []performance.FinalScore{
		{EmployeeID: "e1", Final: floatPtr(82)},
		{EmployeeID: "e2", Final: floatPtr(91.5)},
		{EmployeeID: "e3"},
		{EmployeeID: "e4", Final: floatPtr(82)},
		{EmployeeID: "e5", Final: floatPtr(55)},
	}
	users := map[string]directory.User{
		"e1": {ID: "e1", Name: "Bea", DepartmentID: "d1"},
		"e2": {ID: "e2", Name: "Ana", DepartmentID: "d1"},
		"e3": {ID: "e3", Name: "Cid", DepartmentID: "d2"},
		"e4": {ID: "e4", Name: "Abe", DepartmentID: "d2"},
	}
	departments := map[string]directory.Department{"d1": {ID: "d1", Name: "Sales"}, "d2": {ID: "d2", Name: "Ops"}}
	return BuildReport(performance.Assessment{ID: "a1", Name: "Q2"}, scores, users, departments, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
}

func TestBuildReportRanksAndBands(t *testing.T) {
	report := sampleReport()

	require.Equal(t, 5, report.Participants)
	require.Equal(t, 4, report.Scored)
	require.InDelta(t, 77.63, report.Average, 0.001)
	require.Equal(t, map[Band]int{BandA: 1, BandB: 2, BandC: 0, BandD: 0, BandE: 1}, report.Distribution)

	var order []string
	var ranks []int
	for _, row := range report.Rows {
		order = append(order, row.EmployeeID)
		ranks = append(ranks, row.Rank)
	}
	require.Equal(t, []string{"e2", "e4", "e1", "e5", "e3"}, order)
	require.Equal(t, []int{1, 2, 2, 4, 0}, ranks)
	require.Equal(t, "e5", report.Rows[3].Name)
	require.Equal(t, Band(""), report.Rows[4].Band)

	require.Equal(t, []DepartmentAverage{
		{DepartmentID: "d1", Name: "Sales", Average: 86.75, Count: 2},
		{DepartmentID: "d2", Name: "Ops", Average: 82, Count: 1},
	}, report.DepartmentAverages)
}

func TestRenderPDF(t *testing.T) {
	out, err := RenderPDF(sampleReport())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
