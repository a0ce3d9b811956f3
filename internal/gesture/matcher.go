package gesture

import (
	"math"
	"sort"
	"sync"

	"github.com/ayusman/mudra/internal/detector"
)

// Template is a recorded hand pose that names a classifier category when the
// external classifier supplies none.
type Template struct {
	ID        string             // Unique identifier for the template
	Name      string             // Category name reported on a match
	Landmarks []detector.Point3D // Normalized landmarks
	Tolerance float64            // Maximum distance for a match
}

// Match represents a matching result between input and a template.
type Match struct {
	Template *Template // The matched template
	Score    float64   // Match score (0-1, higher is better)
	Distance float64   // Summed landmark distance between input and template
}

// StaticMatcher matches hand poses against registered templates.
// Templates may be replaced from the HTTP API while the frame loop matches,
// so access is guarded.
type StaticMatcher struct {
	mu        sync.RWMutex
	templates []*Template
}

// NewStaticMatcher creates a new StaticMatcher instance.
func NewStaticMatcher() *StaticMatcher {
	return &StaticMatcher{
		templates: make([]*Template, 0),
	}
}

// AddTemplate adds a template to the matcher, replacing one with the same ID.
func (m *StaticMatcher) AddTemplate(t *Template) {
	if t == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.templates {
		if existing.ID == t.ID {
			m.templates[i] = t
			return
		}
	}
	m.templates = append(m.templates, t)
}

// SetTemplates replaces every template. Nil entries are skipped.
func (m *StaticMatcher) SetTemplates(templates []*Template) {
	kept := make([]*Template, 0, len(templates))
	for _, t := range templates {
		if t != nil {
			kept = append(kept, t)
		}
	}

	m.mu.Lock()
	m.templates = kept
	m.mu.Unlock()
}

// RemoveTemplate removes a template by its ID.
func (m *StaticMatcher) RemoveTemplate(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.templates {
		if t.ID == id {
			m.templates = append(m.templates[:i], m.templates[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered templates.
func (m *StaticMatcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.templates)
}

// Match finds matching templates for the given hand.
// Returns matches sorted by score in descending order (best matches first).
func (m *StaticMatcher) Match(hand *detector.HandFrame) []Match {
	normalized := hand.Normalize()
	if normalized == nil {
		return nil
	}
	input := normalized.Points[:]

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Match
	for _, template := range m.templates {
		if len(template.Landmarks) == 0 {
			continue
		}

		distance := euclideanDistance(input, template.Landmarks)
		if distance > template.Tolerance {
			continue
		}

		matches = append(matches, Match{
			Template: template,
			Score:    1.0 / (1.0 + distance),
			Distance: distance,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// Classify names the hand's pose with the best matching template.
func (m *StaticMatcher) Classify(hand *detector.HandFrame) (string, bool) {
	matches := m.Match(hand)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Template.Name, true
}

// euclideanDistance sums the distances between corresponding points.
func euclideanDistance(a, b []detector.Point3D) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}

	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var total float64
	for i := 0; i < n; i++ {
		dx := a[i].X - b[i].X
		dy := a[i].Y - b[i].Y
		dz := a[i].Z - b[i].Z
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}

	return total
}
