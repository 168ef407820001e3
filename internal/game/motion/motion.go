// Package motion integrates a companion's motion intent into its logical
// screen position, keeping it inside the configured bounds.
package motion

import (
	"fmt"
	"math"
	"time"
)

// Vec is a 2D vector in screen-pixel space. Y grows downward.
type Vec struct {
	X float64
	Y float64
}

// Cardinal facings.
var (
	None  = Vec{}
	Left  = Vec{X: -1}
	Right = Vec{X: 1}
	Up    = Vec{Y: -1}
	Down  = Vec{Y: 1}
)

// Add returns v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale returns v * k.
func (v Vec) Scale(k float64) Vec {
	return Vec{X: v.X * k, Y: v.Y * k}
}

// Neg returns -v.
func (v Vec) Neg() Vec {
	return Vec{X: -v.X, Y: -v.Y}
}

// IsZero reports whether v is the zero vector.
func (v Vec) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// String returns "(x,y)".
func (v Vec) String() string {
	return fmt.Sprintf("(%g,%g)", v.X, v.Y)
}

// ParseFacing converts a facing name to its unit vector.
//
// Postcondition: Returns an error for names other than left, right, up, down, none.
func ParseFacing(name string) (Vec, error) {
	switch name {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "none", "":
		return None, nil
	}
	return None, fmt.Errorf("unknown facing %q", name)
}

// Intent is the direction and speed a companion wants to move at this tick.
// A zero Speed or zero Direction means standing still.
type Intent struct {
	Direction Vec
	// Speed is in pixels per second.
	Speed float64
}

// Still is the intent of a companion that is not moving.
var Still = Intent{}

// Moving reports whether the intent produces any displacement.
func (i Intent) Moving() bool {
	return i.Speed != 0 && !i.Direction.IsZero()
}

// Bounds is an inclusive rectangle the position must stay within.
//
// Invariant: Min.X <= Max.X and Min.Y <= Max.Y for any Bounds that passed Validate.
type Bounds struct {
	Min Vec
	Max Vec
}

// Rect builds Bounds from two corners.
func Rect(minX, minY, maxX, maxY float64) Bounds {
	return Bounds{Min: Vec{X: minX, Y: minY}, Max: Vec{X: maxX, Y: maxY}}
}

// Validate checks that the rectangle is not inverted.
func (b Bounds) Validate() error {
	if b.Max.X < b.Min.X || b.Max.Y < b.Min.Y {
		return fmt.Errorf("bounds %v-%v are inverted", b.Min, b.Max)
	}
	return nil
}

// Contains reports whether v lies within b, edges included.
func (b Bounds) Contains(v Vec) bool {
	return v.X >= b.Min.X && v.X <= b.Max.X && v.Y >= b.Min.Y && v.Y <= b.Max.Y
}

// Clamp returns the point of b nearest to v.
//
// Postcondition: b.Contains(b.Clamp(v)) for valid b.
func (b Bounds) Clamp(v Vec) Vec {
	return Vec{
		X: math.Min(math.Max(v.X, b.Min.X), b.Max.X),
		Y: math.Min(math.Max(v.Y, b.Min.Y), b.Max.Y),
	}
}

// Inset shrinks the far edges by w and h so a sprite of that size anchored at
// its top-left corner stays fully inside the original rectangle. The result
// never inverts; an area smaller than the sprite collapses to its top-left.
func (b Bounds) Inset(w, h float64) Bounds {
	return Bounds{
		Min: b.Min,
		Max: Vec{X: math.Max(b.Min.X, b.Max.X-w), Y: math.Max(b.Min.Y, b.Max.Y-h)},
	}
}

// Step advances pos along intent for dt and keeps the result inside b. When an
// axis is clamped the matching facing component is turned to point back into
// the bounds and bumped is reported, so the behavior layer can react.
//
// Precondition: b must be valid.
// Postcondition: b.Contains(next).
func Step(pos, facing Vec, intent Intent, dt time.Duration, b Bounds) (next, turned Vec, bumped bool) {
	secs := dt.Seconds()
	if secs < 0 {
		secs = 0
	}
	next = pos
	if intent.Moving() {
		next = pos.Add(intent.Direction.Scale(intent.Speed * secs))
	}
	turned = facing

	switch {
	case next.X > b.Max.X:
		next.X = b.Max.X
		turned.X = -math.Abs(turned.X)
		bumped = true
	case next.X < b.Min.X:
		next.X = b.Min.X
		turned.X = math.Abs(turned.X)
		bumped = true
	}
	switch {
	case next.Y > b.Max.Y:
		next.Y = b.Max.Y
		turned.Y = -math.Abs(turned.Y)
		bumped = true
	case next.Y < b.Min.Y:
		next.Y = b.Min.Y
		turned.Y = math.Abs(turned.Y)
		bumped = true
	}
	return next, turned, bumped
}
