package services

import (
	"sync"

	"caixa/internal/core"
)

// Default widget layout handed to every new session.
var defaultWidgets = []core.DashboardWidget{
	{ID: "summary", Visible: true, Order: 0},
	{ID: "budget", Visible: true, Order: 1},
	{ID: "transactions", Visible: true, Order: 2},
	{ID: "incomes", Visible: true, Order: 3},
	{ID: "categories", Visible: false, Order: 4},
}

// DashboardService keeps per-session widget layouts. The layout is a
// display preference tied to the session token, not durable state; it
// disappears with the session.
type DashboardService struct {
	mu      sync.Mutex
	layouts map[string][]core.DashboardWidget
}

func NewDashboardService() *DashboardService {
	return &DashboardService{
		layouts: make(map[string][]core.DashboardWidget),
	}
}

// Widgets returns the session's widget layout, seeding the default on
// first access.
func (s *DashboardService) Widgets(sess core.Session) ([]core.DashboardWidget, error) {
	if err := sess.Check(core.PermView); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	layout, ok := s.layouts[sess.Token]
	if !ok {
		layout = make([]core.DashboardWidget, len(defaultWidgets))
		copy(layout, defaultWidgets)
		s.layouts[sess.Token] = layout
	}
	out := make([]core.DashboardWidget, len(layout))
	copy(out, layout)
	return out, nil
}

// ToggleWidget flips a widget's visibility for the session.
func (s *DashboardService) ToggleWidget(sess core.Session, widgetID string) ([]core.DashboardWidget, error) {
	if _, err := s.Widgets(sess); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	layout := s.layouts[sess.Token]
	found := false
	for i := range layout {
		if layout[i].ID == widgetID {
			layout[i].Visible = !layout[i].Visible
			found = true
			break
		}
	}
	if !found {
		return nil, core.ErrNotFound
	}
	out := make([]core.DashboardWidget, len(layout))
	copy(out, layout)
	return out, nil
}

// ReorderWidgets applies a new ordering given as widget ids. Ids not in
// the layout are ignored; widgets missing from the list keep their
// relative order after the listed ones.
func (s *DashboardService) ReorderWidgets(sess core.Session, orderedIDs []string) ([]core.DashboardWidget, error) {
	if _, err := s.Widgets(sess); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	layout := s.layouts[sess.Token]

	position := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		position[id] = i
	}
	next := len(orderedIDs)
	for i := range layout {
		if pos, ok := position[layout[i].ID]; ok {
			layout[i].Order = pos
		} else {
			layout[i].Order = next
			next++
		}
	}

	out := make([]core.DashboardWidget, len(layout))
	copy(out, layout)
	return out, nil
}

// Forget drops the layout for a revoked session token.
func (s *DashboardService) Forget(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.layouts, token)
}
