package source

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ImplicitFunction is a scalar field over space.
type ImplicitFunction interface {
	Evaluate(p r3.Vector) float64
}

// Sphere is the signed distance to a sphere.
type Sphere struct {
	Center r3.Vector
	Radius float64
}

// Evaluate returns the signed distance from p to the sphere, negative inside.
func (s Sphere) Evaluate(p r3.Vector) float64 {
	return p.Sub(s.Center).Norm() - s.Radius
}

// Plane is the signed distance to a plane.
type Plane struct {
	Origin r3.Vector
	Normal r3.Vector
}

// Evaluate returns the signed distance from p to the plane, positive on the side of the normal.
func (pl Plane) Evaluate(p r3.Vector) float64 {
	return p.Sub(pl.Origin).Dot(pl.Normal.Normalize())
}

// Box is the signed distance to an axis-aligned box.
type Box struct {
	Min r3.Vector
	Max r3.Vector
}

// Evaluate returns the signed distance from p to the box, negative inside.
func (b Box) Evaluate(p r3.Vector) float64 {
	center := b.Min.Add(b.Max).Mul(0.5)
	half := b.Max.Sub(b.Min).Mul(0.5)
	q := p.Sub(center).Abs().Sub(half)
	outside := r3.Vector{X: math.Max(q.X, 0), Y: math.Max(q.Y, 0), Z: math.Max(q.Z, 0)}.Norm()
	inside := math.Min(math.Max(q.X, math.Max(q.Y, q.Z)), 0)
	return outside + inside
}

// FunctionFromConfig returns the implicit function described by cfg.
func FunctionFromConfig(cfg Config) (ImplicitFunction, error) {
	switch cfg.Kind {
	case KindSphere:
		return Sphere{Center: vec(cfg.Center), Radius: cfg.Radius}, nil
	case KindPlane:
		return Plane{Origin: vec(cfg.Center), Normal: vec(cfg.Normal)}, nil
	case KindBox:
		return Box{Min: vec(cfg.Min), Max: vec(cfg.Max)}, nil
	default:
		return nil, errors.Errorf("%q is not an implicit function", cfg.Kind)
	}
}
