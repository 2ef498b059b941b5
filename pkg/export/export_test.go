package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/routegap/core/gap"
	"github.com/kilianp07/routegap/core/model"
)

func analyzed(t *testing.T) []model.AnalyzedRoute {
	t.Helper()
	routes, err := gap.Analyzer{CapacityPerVehicle: 14, Noun: "matatus"}.Analyze([]model.RouteRecord{
		{RouteName: "CBD-Rongai", PassengerDemand: 500, VehiclesAssigned: 20},
		{RouteName: "CBD-Thika, Exit 7", PassengerDemand: 300, VehiclesAssigned: 30},
	})
	require.NoError(t, err)
	return routes
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, analyzed(t)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"CBD-Rongai", "500", "20", "280", "220", "Add 16 matatus to CBD-Rongai (shortage of 220 seats)"}, rows[1])
	assert.Equal(t, []string{"CBD-Thika, Exit 7", "300", "30", "420", "-120", "Reallocate 8 matatus from CBD-Thika, Exit 7 (excess capacity)"}, rows[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "route,passenger_demand,vehicles_assigned,total_capacity,gap,suggestion\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	report := gap.NewReport(analyzed(t), 14)
	report.RunID = "run-1"

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, report))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got["run_id"])
	assert.EqualValues(t, 14, got["capacity_per_vehicle"])
	routes, ok := got["routes"].([]any)
	require.True(t, ok)
	assert.Len(t, routes, 2)
}
