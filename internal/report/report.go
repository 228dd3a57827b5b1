// Package report serves the static report catalogue. Report generation is
// mocked; detail responses carry a fixed payload stamped at request time.
package report

import (
	"strings"
	"time"
)

type Summary struct {
	Label string `json:"label"`
	Code  string `json:"code"`
}

type DataPoint struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

type Detail struct {
	Summary
	GeneratedAt time.Time   `json:"generatedAt"`
	Text        string      `json:"summary"`
	DataPoints  []DataPoint `json:"dataPoints"`
}

// Catalogue is the fixed set of reports the desk offers.
type Catalogue struct {
	reports []Summary
}

func NewCatalogue() *Catalogue {
	return &Catalogue{reports: []Summary{
		{Label: "Performance - Aus Core Bond (1Y/3Y/5Y)", Code: "PERF-ACB"},
		{Label: "Attribution - Australian Equity Core", Code: "ATTR-AEC"},
		{Label: "Risk - VaR & Tracking Error by Fund", Code: "RISK-VaR-TE"},
		{Label: "Client SLA - Monthly", Code: "SLA-MONTHLY"},
		{Label: "Compliance - Attestations Due", Code: "COMP-QTR"},
	}}
}

func (c *Catalogue) List() []Summary {
	out := make([]Summary, len(c.reports))
	copy(out, c.reports)
	return out
}

// Generate looks the code up case-insensitively and stamps a mock payload.
func (c *Catalogue) Generate(code string, now time.Time) (Detail, bool) {
	for _, r := range c.reports {
		if strings.EqualFold(r.Code, code) {
			return Detail{
				Summary:     r,
				GeneratedAt: now,
				Text:        "Mock report payload for demo purposes.",
				DataPoints: []DataPoint{
					{Key: "1Y Excess Return (bps)", Value: 62},
					{Key: "3Y Excess (ann., bps)", Value: 48},
					{Key: "Tracking Error (%)", Value: 2.1},
				},
			}, true
		}
	}
	return Detail{}, false
}
