package domain

import (
	"fmt"

	shipdomain "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
)

// Anomaly flags an out-of-band environmental reading. Anomalies are computed
// per invocation and never persisted; only High/Critical ones are promoted to
// shipment alerts by the dispatcher.
type Anomaly struct {
	Type           string
	Severity       shipdomain.Severity
	Message        string
	Recommendation string
}

// Environmental tolerance bands, in the reading's own unit.
const (
	minTemperature = -10.0
	maxTemperature = 50.0
	minHumidity    = 10.0
	maxHumidity    = 90.0
)

// DetectAnomalies inspects a single checkpoint's environmental reading;
// callers pass the shipment's latest checkpoint since older ones are not
// re-scanned. A nil checkpoint or absent reading yields no anomalies.
func DetectAnomalies(cp *shipdomain.Checkpoint) []Anomaly {
	if cp == nil || cp.Environment == nil {
		return nil
	}
	var anomalies []Anomaly
	if temp := cp.Environment.Temperature; temp != nil && (temp.Value < minTemperature || temp.Value > maxTemperature) {
		anomalies = append(anomalies, Anomaly{
			Type:           shipdomain.AlertTypeTemperature,
			Severity:       shipdomain.SeverityHigh,
			Message:        fmt.Sprintf("Unusual temperature: %g %s", temp.Value, temp.Unit),
			Recommendation: "Check product integrity",
		})
	}
	if hum := cp.Environment.Humidity; hum != nil && (hum.Value < minHumidity || hum.Value > maxHumidity) {
		anomalies = append(anomalies, Anomaly{
			Type:           shipdomain.AlertTypeHumidity,
			Severity:       shipdomain.SeverityMedium,
			Message:        fmt.Sprintf("Unusual humidity: %g%s", hum.Value, hum.Unit),
			Recommendation: "Monitor moisture-sensitive products",
		})
	}
	return anomalies
}
