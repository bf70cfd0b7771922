// Package mapstate keeps the per-session map view: center, zoom, layer
// visibility and the selected issue. The state lives only in memory for the
// lifetime of the process; it is never persisted.
package mapstate

import (
	"sync"

	"aquawatch-be/geo"
)

// View is one session's map viewport.
type View struct {
	Center        [2]float64      `json:"center"`
	Zoom          int             `json:"zoom"`
	VisibleLayers map[string]bool `json:"visibleLayers"`
	SelectedIssue string          `json:"selectedIssue,omitempty"`
}

func defaultView() *View {
	return &View{
		Center: geo.DefaultCenter,
		Zoom:   geo.DefaultZoom,
		VisibleLayers: map[string]bool{
			"issues":      true,
			"authorities": true,
			"reservoirs":  true,
			"weather":     false,
		},
	}
}

// Store holds views keyed by session id. Safe for concurrent handlers.
type Store struct {
	mu    sync.Mutex
	views map[string]*View
}

func NewStore() *Store {
	return &Store{views: make(map[string]*View)}
}

// Get returns the session's view, creating a default one on first use. The
// layer map is copied under the lock so the caller's snapshot never aliases
// store state.
func (s *Store) Get(sessionID string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.view(sessionID)
	snapshot := *v
	snapshot.VisibleLayers = make(map[string]bool, len(v.VisibleLayers))
	for layer, visible := range v.VisibleLayers {
		snapshot.VisibleLayers[layer] = visible
	}
	return snapshot
}

// SetCenter validates, normalizes and stores a new center. It returns false
// and leaves the view unchanged when the pair fails validation.
func (s *Store) SetCenter(sessionID string, pair [2]float64) bool {
	if !geo.ValidatePair(pair) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view(sessionID).Center = geo.Normalize(pair)
	return true
}

// SetZoom clamps zoom into range, falling back to the default on invalid
// input. It never fails.
func (s *Store) SetZoom(sessionID string, zoom float64) int {
	clamped := geo.ClampZoom(zoom)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view(sessionID).Zoom = clamped
	return clamped
}

// ToggleLayer flips a named layer flag. No fetch side effects.
func (s *Store) ToggleLayer(sessionID, layer string, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view(sessionID).VisibleLayers[layer] = visible
}

// SelectIssue records UI focus; empty clears the selection.
func (s *Store) SelectIssue(sessionID, issueID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view(sessionID).SelectedIssue = issueID
}

func (s *Store) view(sessionID string) *View {
	v, ok := s.views[sessionID]
	if !ok {
		v = defaultView()
		s.views[sessionID] = v
	}
	return v
}
