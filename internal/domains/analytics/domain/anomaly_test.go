package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shipdomain "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
)

func readingCheckpoint(temp, humidity *float64) *shipdomain.Checkpoint {
	env := &shipdomain.EnvironmentalReading{}
	if temp != nil {
		env.Temperature = &shipdomain.Measurement{Value: *temp, Unit: "Celsius"}
	}
	if humidity != nil {
		env.Humidity = &shipdomain.Measurement{Value: *humidity, Unit: "%"}
	}
	return &shipdomain.Checkpoint{
		Location:    shipdomain.Location{Name: "Hub"},
		Environment: env,
	}
}

func f(v float64) *float64 { return &v }

func TestDetectAnomalies_HighTemperature(t *testing.T) {
	anomalies := DetectAnomalies(readingCheckpoint(f(60), nil))

	require.Len(t, anomalies, 1)
	assert.Equal(t, shipdomain.AlertTypeTemperature, anomalies[0].Type)
	assert.Equal(t, shipdomain.SeverityHigh, anomalies[0].Severity)
	assert.Contains(t, anomalies[0].Message, "60")
}

func TestDetectAnomalies_Boundaries(t *testing.T) {
	assert.Empty(t, DetectAnomalies(readingCheckpoint(f(50), nil)), "50 is in range")
	assert.Empty(t, DetectAnomalies(readingCheckpoint(f(-10), nil)), "-10 is in range")
	assert.Len(t, DetectAnomalies(readingCheckpoint(f(50.5), nil)), 1)
	assert.Len(t, DetectAnomalies(readingCheckpoint(f(-10.5), nil)), 1)

	assert.Empty(t, DetectAnomalies(readingCheckpoint(nil, f(10))))
	assert.Empty(t, DetectAnomalies(readingCheckpoint(nil, f(90))))
	assert.Len(t, DetectAnomalies(readingCheckpoint(nil, f(95))), 1)
}

func TestDetectAnomalies_HumidityIsMedium(t *testing.T) {
	anomalies := DetectAnomalies(readingCheckpoint(nil, f(5)))

	require.Len(t, anomalies, 1)
	assert.Equal(t, shipdomain.AlertTypeHumidity, anomalies[0].Type)
	assert.Equal(t, shipdomain.SeverityMedium, anomalies[0].Severity)
}

func TestDetectAnomalies_IndependentConditions(t *testing.T) {
	anomalies := DetectAnomalies(readingCheckpoint(f(55), f(95)))
	assert.Len(t, anomalies, 2)
}

func TestDetectAnomalies_NoReading(t *testing.T) {
	assert.Empty(t, DetectAnomalies(nil))
	assert.Empty(t, DetectAnomalies(&shipdomain.Checkpoint{Location: shipdomain.Location{Name: "Hub"}}))
}
