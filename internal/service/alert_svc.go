package service

import "github.com/Spunkeroo/scam-stream/internal/model"

var severityIcons = map[string]string{
	"critical": "🚨",
	"high":     "⚠️",
	"medium":   "🔔",
}

const defaultSeverityIcon = "⚠️"

type AlertService struct {
	catalog *Catalog
}

func NewAlertService(catalog *Catalog) *AlertService {
	return &AlertService{catalog: catalog}
}

// Ticker returns the alerts in fixture order with their severity icons.
func (s *AlertService) Ticker() []model.TickerItem {
	alerts := s.catalog.Alerts()
	items := make([]model.TickerItem, 0, len(alerts))
	for _, a := range alerts {
		icon, ok := severityIcons[a.Severity]
		if !ok {
			icon = defaultSeverityIcon
		}
		items = append(items, model.TickerItem{Severity: a.Severity, Icon: icon, Text: a.Text})
	}
	return items
}
