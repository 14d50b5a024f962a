package vslib

import (
	"fmt"
	"math"
)

// contourTolerance is the largest difference in Hz between the original and
// edited contours that still counts as unchanged.
const contourTolerance = 1e-3

// ApplyPitchContour edits the pitch of item n from frame-rate F0 curves in
// Hz, where 0 marks an unvoiced frame. Both curves are sampled at the
// control-point times with linear interpolation, and read as 0 outside
// their extent. For each control point:
//
//   - if the curves agree, the edited pitch and flag revert to the analysis
//   - if the edited curve is voiced, PitEdit is set to its pitch and the
//     point is flagged voiced
//   - otherwise the point is flagged unvoiced
func (p *Project) ApplyPitchContour(n int, frameRate float64, origHz, editHz []float64) error {
	if !(frameRate > 0) || math.IsInf(frameRate, 0) {
		return opErr("ApplyPitchContour", fmt.Errorf("%w: frame rate must be positive and finite: %g", ErrInvalidParam, frameRate))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	it, err := p.lookup(n)
	if err != nil {
		return opErr("ApplyPitchContour", err)
	}

	pps := float64(it.info.CtrlPntPs)
	for i := range it.points {
		t := float64(i) / pps
		orig := sampleContour(origHz, t*frameRate)
		edit := sampleContour(editHz, t*frameRate)

		cp := &it.points[i]
		switch {
		case math.Abs(orig-edit) <= contourTolerance:
			cp.PitEdit = cp.PitOrg
			cp.PitFlgEdit = cp.PitFlgOrg
		case edit > contourTolerance:
			cp.PitEdit = max(0, min(maxPitch, Freq2Cent(edit)))
			cp.PitFlgEdit = 1
		default:
			cp.PitFlgEdit = 0
		}
	}
	return nil
}

// sampleContour interpolates curve at fractional frame pos. Positions
// outside the curve and non-finite values read as 0.
func sampleContour(curve []float64, pos float64) float64 {
	if len(curve) == 0 || pos < 0 || pos > float64(len(curve)-1) {
		return 0
	}
	k := int(pos)
	if k >= len(curve)-1 {
		return finiteOrZero(curve[len(curve)-1])
	}
	a, b := finiteOrZero(curve[k]), finiteOrZero(curve[k+1])
	return a + (b-a)*(pos-float64(k))
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
