package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Board overlay IDs, in drawing order.
const (
	OverlayWalls   OverlayID = "walls"
	OverlayClosed  OverlayID = "closed"
	OverlayOpen    OverlayID = "open"
	OverlayPath    OverlayID = "path"
	OverlayCurrent OverlayID = "current"
	OverlayTree    OverlayID = "tree"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID       OverlayID // Unique identifier
	Name     string    // Display name
	Key      int32     // Keyboard key to toggle (0 = no key)
	KeyLabel string    // Key label for display (e.g., "T")
	Color    rl.Color  // Swatch shown next to the toggle
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the board overlays, all enabled.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	theme := DefaultTheme()
	r.Register(OverlayDescriptor{ID: OverlayWalls, Name: "Walls", Key: rl.KeyW, KeyLabel: "W", Color: theme.Wall})
	r.Register(OverlayDescriptor{ID: OverlayClosed, Name: "Closed set", Key: rl.KeyC, KeyLabel: "C", Color: theme.Closed})
	r.Register(OverlayDescriptor{ID: OverlayOpen, Name: "Open set", Key: rl.KeyO, KeyLabel: "O", Color: theme.Open})
	r.Register(OverlayDescriptor{ID: OverlayPath, Name: "Path", Key: rl.KeyP, KeyLabel: "P", Color: theme.Path})
	r.Register(OverlayDescriptor{ID: OverlayCurrent, Name: "Current node", Key: rl.KeyN, KeyLabel: "N", Color: theme.Current})
	r.Register(OverlayDescriptor{ID: OverlayTree, Name: "Quadtree leaves", Key: rl.KeyT, KeyLabel: "T", Color: theme.Leaf})
}

// Register adds an enabled overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = true
}

// Toggle switches an overlay on/off and returns the new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.enabled[id] = !r.enabled[id]
	return r.enabled[id]
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	if _, ok := r.byID[id]; !ok {
		return
	}
	r.enabled[id] = enabled
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// HandleKeys toggles every overlay whose key was pressed this frame.
func (r *OverlayRegistry) HandleKeys() {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			r.Toggle(desc.ID)
		}
	}
}
