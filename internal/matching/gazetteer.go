package matching

import (
	"strings"

	"fixture-matching/internal/database"
)

// Gazetteer resolves free-text port names to coordinates over an in-memory
// port table, so the engine stays pure during a matching run.
type Gazetteer struct {
	ports []database.Port
}

// NewGazetteer wraps a snapshot of the port table
func NewGazetteer(ports []database.Port) *Gazetteer {
	return &Gazetteer{ports: ports}
}

// Resolve finds the first port whose name or alternate name matches the query
// by case-insensitive substring in either direction. Lookup misses return
// false rather than an error; the engine eliminates the affected pair.
func (g *Gazetteer) Resolve(name string) (database.Port, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return database.Port{}, false
	}

	for _, port := range g.ports {
		if portNameMatches(port.Name, needle) {
			return port, true
		}
		for _, alt := range port.AltNames {
			if portNameMatches(alt, needle) {
				return port, true
			}
		}
	}
	return database.Port{}, false
}

func portNameMatches(candidate, needle string) bool {
	lower := strings.ToLower(candidate)
	return strings.Contains(lower, needle) || strings.Contains(needle, lower)
}

// Size returns the number of ports loaded
func (g *Gazetteer) Size() int {
	return len(g.ports)
}
