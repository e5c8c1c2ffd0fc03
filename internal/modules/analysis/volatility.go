// Package analysis implements the stateless scoring layer: portfolio
// risk analysis, investment recommendations, and technical indicators.
// Everything here works over a snapshot of store data and mutates
// nothing.
package analysis

// Simulated per-sector volatility scores, 0-100
var sectorVolatility = map[string]float64{
	"Technology": 65,
	"Healthcare": 45,
	"Financial":  55,
	"Automotive": 70,
	"E-commerce": 60,
}

const defaultVolatility = 50

// SectorVolatility returns the simulated volatility score for a sector
func SectorVolatility(sector string) float64 {
	if v, ok := sectorVolatility[sector]; ok {
		return v
	}
	return defaultVolatility
}
