// Package ui holds the persisted display preferences.
package ui

import (
	"encoding/json"
	"fmt"

	"github.com/usestring/pyroscope-mcp/internal/action"
)

// Version is the current persisted schema version of State.
const Version = 1

// Color modes.
const (
	ColorModeDark  = "dark"
	ColorModeLight = "light"
)

// Action type names.
const (
	TypeCollapseSidebar   = "ui/collapseSidebar"
	TypeUncollapseSidebar = "ui/uncollapseSidebar"
	TypeSetColorMode      = "ui/setColorMode"
	TypeRehydrate         = "persist/rehydrate"
)

// State is the ui slice.
type State struct {
	SidebarCollapsed bool   `json:"sidebarCollapsed"`
	ColorMode        string `json:"colorMode"`
	Time             Time   `json:"time"`
}

// Time holds time display preferences.
type Time struct {
	// Offset from UTC in minutes.
	Offset int `json:"offset"`
}

// InitialState returns the defaults used before anything is rehydrated.
func InitialState() State {
	return State{ColorMode: ColorModeDark}
}

type CollapseSidebar struct{}

type UncollapseSidebar struct{}

// SetColorMode switches the color mode. Unknown modes are ignored.
type SetColorMode struct {
	Mode string `json:"mode"`
}

// Rehydrate replaces the slice with a previously persisted one.
type Rehydrate struct {
	State State `json:"state"`
}

func (CollapseSidebar) Type() string   { return TypeCollapseSidebar }
func (UncollapseSidebar) Type() string { return TypeUncollapseSidebar }
func (SetColorMode) Type() string      { return TypeSetColorMode }
func (Rehydrate) Type() string         { return TypeRehydrate }

// Reduce returns the state after applying a.
func Reduce(s State, a action.Action) State {
	switch a := a.(type) {
	case CollapseSidebar:
		s.SidebarCollapsed = true
	case UncollapseSidebar:
		s.SidebarCollapsed = false
	case SetColorMode:
		if ValidColorMode(a.Mode) {
			s.ColorMode = a.Mode
		}
	case Rehydrate:
		s = a.State
		if !ValidColorMode(s.ColorMode) {
			s.ColorMode = ColorModeDark
		}
	}
	return s
}

// ValidColorMode reports whether mode is a known color mode.
func ValidColorMode(mode string) bool {
	return mode == ColorModeDark || mode == ColorModeLight
}

// Migrate upgrades a persisted slice written at version to the current
// State.
func Migrate(version int, data []byte) (State, error) {
	switch {
	case version > Version:
		return State{}, fmt.Errorf("ui state version %d is newer than supported version %d", version, Version)
	case version == Version:
		s := InitialState()
		if err := json.Unmarshal(data, &s); err != nil {
			return State{}, fmt.Errorf("decoding ui state: %w", err)
		}
		return s, nil
	}

	// Version 0 stored the color mode under "theme".
	var legacy struct {
		SidebarCollapsed bool   `json:"sidebarCollapsed"`
		Theme            string `json:"theme"`
		Time             Time   `json:"time"`
	}
	if err := json.Unmarshal(data, &legacy); err != nil {
		return State{}, fmt.Errorf("decoding ui state v%d: %w", version, err)
	}
	s := State{
		SidebarCollapsed: legacy.SidebarCollapsed,
		ColorMode:        legacy.Theme,
		Time:             legacy.Time,
	}
	if !ValidColorMode(s.ColorMode) {
		s.ColorMode = ColorModeDark
	}
	return s, nil
}
