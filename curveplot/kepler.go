// curveplot/kepler.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package curveplot

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/mmp/celplot/math"
)

// KmPerAU is the length of an astronomical unit in kilometers.
const KmPerAU = 149597870.7

// OrbitalElements describes an elliptical two-body orbit. Distances are
// in kilometers, times in days, and angles in radians.
type OrbitalElements struct {
	SemiMajorAxis  float64 `json:"semi_major_axis"`
	Eccentricity   float64 `json:"eccentricity"`
	Inclination    float64 `json:"inclination"`
	AscendingNode  float64 `json:"ascending_node"`
	ArgOfPeriapsis float64 `json:"arg_of_periapsis"`
	MeanAnomaly    float64 `json:"mean_anomaly"` // at Epoch
	Epoch          float64 `json:"epoch"`
	Period         float64 `json:"period"`
}

func (el OrbitalElements) Validate() error {
	var errs []error
	if !(el.SemiMajorAxis > 0) {
		errs = append(errs, fmt.Errorf("%g: semi-major axis must be positive", el.SemiMajorAxis))
	}
	if !(el.Eccentricity >= 0 && el.Eccentricity < 1) {
		errs = append(errs, fmt.Errorf("%g: eccentricity must be in [0,1)", el.Eccentricity))
	}
	if !(el.Period > 0) {
		errs = append(errs, fmt.Errorf("%g: period must be positive", el.Period))
	}
	return errors.Join(errs...)
}

// State returns the position and velocity (km/day) at time t.
func (el OrbitalElements) State(t float64) (pos, vel math.Vec3) {
	meanMotion := 2 * gomath.Pi / el.Period
	M := el.MeanAnomaly + meanMotion*(t-el.Epoch)
	E := eccentricAnomaly(gomath.Mod(M, 2*gomath.Pi), el.Eccentricity)

	a, e := el.SemiMajorAxis, el.Eccentricity
	b := a * gomath.Sqrt(1-e*e)
	sinE, cosE := gomath.Sincos(E)
	dE := meanMotion / (1 - e*cosE)

	// Rotate from the orbital plane, with periapsis along +x, to the
	// reference frame.
	xf := math.RotationZ(el.AscendingNode).Mul(math.RotationX(el.Inclination)).Mul(math.RotationZ(el.ArgOfPeriapsis))
	pos = xf.TransformPoint(math.V3(a*(cosE-e), b*sinE, 0))
	vel = xf.TransformVector(math.V3(-a*sinE*dE, b*cosE*dE, 0))
	return
}

// eccentricAnomaly solves Kepler's equation M = E - e sin(E) for E with
// Newton's method.
func eccentricAnomaly(M, e float64) float64 {
	E := M
	if e > 0.8 {
		E = gomath.Pi
	}
	for range 32 {
		s, c := gomath.Sincos(E)
		dE := (E - e*s - M) / (1 - e*c)
		E -= dE
		if gomath.Abs(dE) < 1e-14 {
			break
		}
	}
	return E
}

// GenerateKepler returns a plot with n samples of the orbit spaced
// evenly over [t0,t1].
func GenerateKepler(el OrbitalElements, t0, t1 float64, n int) (*CurvePlot, error) {
	if err := el.Validate(); err != nil {
		return nil, err
	}
	if n < 2 || !(t1 > t0) {
		return nil, fmt.Errorf("need at least two samples over a non-empty interval (n=%d, [%g,%g])", n, t0, t1)
	}

	p := New()
	p.SetDuration(t1 - t0)
	for i := range n {
		t := math.Lerp(float64(i)/float64(n-1), t0, t1)
		pos, vel := el.State(t)
		p.AddSample(Sample{T: t, Position: pos, Velocity: vel})
	}
	return p, nil
}
