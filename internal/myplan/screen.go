package myplan

import "sync"

// ScreenState is the latest output of a Session as seen by a View.
type ScreenState struct {
	Version  uint64    `json:"version"`
	Top      *TopInfo  `json:"top,omitempty"`
	Sections []Section `json:"sections"`
	Error    string    `json:"error,omitempty"`
	Playback *Playback `json:"playback,omitempty"`
}

// Screen is a View that keeps the latest display so it can be served over
// HTTP, MCP or printed by the terminal client.
type Screen struct {
	mu    sync.Mutex
	state ScreenState
}

// Display replaces the shown sections and clears any error.
func (s *Screen) Display(top *TopInfo, sections []Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Version++
	s.state.Top = top
	s.state.Sections = sections
	s.state.Error = ""
}

// ShowVideoPlayer records the requested playback.
func (s *Screen) ShowVideoPlayer(p Playback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Version++
	s.state.Playback = &p
}

// ShowError records err; the previous sections stay visible.
func (s *Screen) ShowError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Version++
	s.state.Error = err.Error()
}

// State returns a copy of the current state.
func (s *Screen) State() ScreenState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Sections = append([]Section(nil), s.state.Sections...)
	return st
}
