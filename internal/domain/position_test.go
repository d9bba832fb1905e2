package domain

import (
	"testing"
)

func TestNewPositionUpdate(t *testing.T) {
	u := NewPositionUpdate("node1", 100.5, -200.5)

	if u.NodeID != "node1" {
		t.Errorf("expected NodeID 'node1', got %s", u.NodeID)
	}
	if u.Position.X != 100.5 {
		t.Errorf("expected X=100.5, got %f", u.Position.X)
	}
	if u.Position.Y != -200.5 {
		t.Errorf("expected Y=-200.5, got %f", u.Position.Y)
	}
}

func TestViewportNormalize(t *testing.T) {
	tests := []struct {
		name string
		zoom float64
		want float64
	}{
		{"keeps positive zoom", 2, 2},
		{"zero zoom becomes 1", 0, 1},
		{"negative zoom becomes 1", -0.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Viewport{Zoom: tt.zoom, X: 3, Y: 4}.Normalize()
			if got.Zoom != tt.want {
				t.Errorf("expected zoom %f, got %f", tt.want, got.Zoom)
			}
			if got.X != 3 || got.Y != 4 {
				t.Errorf("expected pan to be preserved, got (%f,%f)", got.X, got.Y)
			}
		})
	}
}

func TestViewportToScreen(t *testing.T) {
	vp := Viewport{Zoom: 2, X: 10, Y: 5}
	got := vp.ToScreen(Position{X: 50, Y: 0})

	if got.X != 110 {
		t.Errorf("expected X=110, got %f", got.X)
	}
	if got.Y != 5 {
		t.Errorf("expected Y=5, got %f", got.Y)
	}
}
