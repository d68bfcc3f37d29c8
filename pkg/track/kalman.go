// pkg/track/kalman.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package track implements the per-bogie 6-state constant-velocity
// Kalman filter (spec §4.F): state [px, py, pz, vx, vy, vz] with a 6x6
// covariance, updated on each noisy position observation.
package track

import (
	"github.com/davecgh/go-spew/spew"
	"gonum.org/v1/gonum/mat"

	"github.com/flightcore/sepcore/pkg/log"
)

// ProcessNoiseScale and MeasurementNoise are the filter's fixed tuning
// constants (spec §4.F).
const (
	ProcessNoiseScale = 0.1
	MeasurementNoise  = 2.0
	MinDT             = 0.001 // 1 ms
	MaxUncertainty    = 30.0
)

// State is one bogie's tracked kinematic state.
type State struct {
	BogieID    string
	X          *mat.VecDense // 6x1: [px, py, pz, vx, vy, vz]
	P          *mat.Dense    // 6x6 covariance
	LastUpdate float64       // seconds, caller-supplied clock
}

// Tracker holds one Kalman filter per bogie id.
type Tracker struct {
	states map[string]*State
	lg     *log.Logger
}

// NewTracker returns an empty Tracker. lg may be nil.
func NewTracker(lg *log.Logger) *Tracker {
	return &Tracker{states: make(map[string]*State), lg: lg}
}

// Observation is one noisy position report for a bogie. VX/VY/VZ are only
// meaningful when HasVelocity is set, e.g. from a Doppler-derived estimate
// on the first sighting (spec §4.F "Initialization").
type Observation struct {
	BogieID     string
	X, Y, Z     float64
	VX, VY, VZ  float64
	HasVelocity bool
	T           float64 // seconds, caller-supplied clock
}

// Update feeds one observation through the bogie's filter, creating it on
// first sight (spec §4.F "Initialization"). It returns the post-update
// state.
func (tr *Tracker) Update(obs Observation) *State {
	st, ok := tr.states[obs.BogieID]
	if !ok {
		vx, vy, vz := 0.0, 0.0, 0.0
		if obs.HasVelocity {
			vx, vy, vz = obs.VX, obs.VY, obs.VZ
		}
		st = &State{
			BogieID:    obs.BogieID,
			X:          mat.NewVecDense(6, []float64{obs.X, obs.Y, obs.Z, vx, vy, vz}),
			P:          identity(6),
			LastUpdate: obs.T,
		}
		tr.states[obs.BogieID] = st
		return st
	}

	dt := obs.T - st.LastUpdate
	if dt < MinDT {
		dt = MinDT
	}

	predict(st, dt)
	ok = update(st, obs)
	if !ok && tr.lg != nil {
		tr.lg.Debugf("track: singular innovation covariance for %s, update skipped; state=%s",
			obs.BogieID, spew.Sdump(st))
	}
	st.LastUpdate = obs.T
	return st
}

// State returns the current tracked state for id, if any.
func (tr *Tracker) State(id string) (*State, bool) {
	st, ok := tr.states[id]
	return st, ok
}

// predict advances st's state and covariance by dt under the
// constant-velocity model: F = I with F[i,i+3] = dt, Q = I*ProcessNoiseScale*dt.
func predict(st *State, dt float64) {
	f := identity(6)
	f.Set(0, 3, dt)
	f.Set(1, 4, dt)
	f.Set(2, 5, dt)

	var xPred mat.VecDense
	xPred.MulVec(f, st.X)
	st.X = &xPred

	var fp, fpft mat.Dense
	fp.Mul(f, st.P)
	fpft.Mul(&fp, f.T())

	q := identity(6)
	q.Scale(ProcessNoiseScale*dt, q)

	var pPred mat.Dense
	pPred.Add(&fpft, q)
	st.P = &pPred
}

// update performs the measurement update against a position-only
// observation (spec §4.F "Update"). It returns false, leaving st
// unmodified beyond the prior prediction, if the innovation covariance S
// is singular (spec §4.F "Failure policy").
func update(st *State, obs Observation) bool {
	h := mat.NewDense(3, 6, []float64{
		1, 0, 0, 0, 0, 0,
		0, 1, 0, 0, 0, 0,
		0, 0, 1, 0, 0, 0,
	})
	r := identity(3)
	r.Scale(MeasurementNoise, r)

	z := mat.NewVecDense(3, []float64{obs.X, obs.Y, obs.Z})

	var hx mat.VecDense
	hx.MulVec(h, st.X)
	var y mat.VecDense
	y.SubVec(z, &hx)

	var hp, hpht mat.Dense
	hp.Mul(h, st.P)
	hpht.Mul(&hp, h.T())

	var s mat.Dense
	s.Add(&hpht, r)

	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		return false
	}

	// K = P_pred * H^T * S^-1
	var pht mat.Dense
	pht.Mul(st.P, h.T())
	var kGain mat.Dense
	kGain.Mul(&pht, &sInv)

	var ky mat.VecDense
	ky.MulVec(&kGain, &y)

	var xNew mat.VecDense
	xNew.AddVec(st.X, &ky)
	st.X = &xNew

	var kh mat.Dense
	kh.Mul(&kGain, h)

	ident := identity(6)
	var imkh mat.Dense
	imkh.Sub(ident, &kh)

	var pNew mat.Dense
	pNew.Mul(&imkh, st.P)

	// Re-symmetrize to guard against finite-precision asymmetry creeping
	// into P across many updates.
	var pT mat.Dense
	pT.CloneFrom(pNew.T())
	var pSym mat.Dense
	pSym.Add(&pNew, &pT)
	pSym.Scale(0.5, &pSym)
	st.P = &pSym

	return true
}

// UncertaintyRadius returns min(MaxUncertainty, trace(P[0:3,0:3])) (spec
// §4.F "Derived uncertainty radius").
func (st *State) UncertaintyRadius() float64 {
	trace := st.P.At(0, 0) + st.P.At(1, 1) + st.P.At(2, 2)
	if trace > MaxUncertainty {
		return MaxUncertainty
	}
	return trace
}

func identity(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}
