package vslib

import (
	"fmt"
	"math"
)

// CtrlPnt returns control point i of item n.
func (p *Project) CtrlPnt(n, i int) (CtrlPnt, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	it, err := p.lookup(n)
	if err != nil {
		return CtrlPnt{}, opErr("CtrlPnt", err)
	}
	if i < 0 || i >= len(it.points) {
		return CtrlPnt{}, opErr("CtrlPnt", fmt.Errorf("%w: %d not in [0, %d)", ErrCtrlPntRange, i, len(it.points)))
	}
	return it.points[i], nil
}

// SetCtrlPnt stores the editable fields of cp as control point i of item n.
// The analysis fields DynOrg, PitAna, PitOrg and PitFlgOrg are kept and the
// values in cp are ignored.
func (p *Project) SetCtrlPnt(n, i int, cp CtrlPnt) error {
	if err := validateCtrlPnt(cp); err != nil {
		return opErr("SetCtrlPnt", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	it, err := p.lookup(n)
	if err != nil {
		return opErr("SetCtrlPnt", err)
	}
	if i < 0 || i >= len(it.points) {
		return opErr("SetCtrlPnt", fmt.Errorf("%w: %d not in [0, %d)", ErrCtrlPntRange, i, len(it.points)))
	}

	cur := it.points[i]
	cp.DynOrg = cur.DynOrg
	cp.PitAna = cur.PitAna
	cp.PitOrg = cur.PitOrg
	cp.PitFlgOrg = cur.PitFlgOrg
	it.points[i] = cp
	return nil
}

func validateCtrlPnt(cp CtrlPnt) error {
	var msg string
	switch {
	case !inRange(cp.Volume, 0, maxVolume):
		msg = fmt.Sprintf("volume must be in [0, %g]: %g", maxVolume, cp.Volume)
	case !inRange(cp.Pan, -1, 1):
		msg = fmt.Sprintf("pan must be in [-1, 1]: %g", cp.Pan)
	case math.IsNaN(cp.DynEdit) || math.IsInf(cp.DynEdit, 0) || cp.DynEdit < 0:
		msg = fmt.Sprintf("edited dynamics must be >= 0 and finite: %g", cp.DynEdit)
	case math.IsNaN(cp.SpcDyn) || math.IsInf(cp.SpcDyn, 0):
		msg = fmt.Sprintf("spectral dynamics must be finite: %g", cp.SpcDyn)
	case !inRangeInt(cp.PitEdit, 0, maxPitch):
		msg = fmt.Sprintf("edited pitch must be in [0, %d]: %d", maxPitch, cp.PitEdit)
	case !inRangeInt(cp.Formant, -maxFormant, maxFormant):
		msg = fmt.Sprintf("formant must be in [%d, %d]: %d", -maxFormant, maxFormant, cp.Formant)
	case !inRangeInt(cp.Breathiness, -maxBreath, maxBreath):
		msg = fmt.Sprintf("breathiness must be in [%d, %d]: %d", -maxBreath, maxBreath, cp.Breathiness)
	case !inRangeInt(cp.Eq1, -maxEq, maxEq) || !inRangeInt(cp.Eq2, -maxEq, maxEq):
		msg = fmt.Sprintf("eq must be in [%d, %d]: %d/%d", -maxEq, maxEq, cp.Eq1, cp.Eq2)
	case cp.PitFlgEdit != 0 && cp.PitFlgEdit != 1:
		msg = fmt.Sprintf("pitch flag must be 0 or 1: %d", cp.PitFlgEdit)
	default:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidParam, msg)
}

// shiftCents is the pitch shift a control point asks for: the edit against
// the original pitch when the edited flag is voiced, otherwise none.
func (cp CtrlPnt) shiftCents() float64 {
	if cp.PitFlgEdit != 1 {
		return 0
	}
	return float64(cp.PitEdit - cp.PitOrg)
}

// gain is Volume times the dynamics edit ratio. Points too quiet for a
// meaningful ratio keep their level.
func (cp CtrlPnt) gain() float64 {
	if cp.DynOrg < dynFloor || cp.DynEdit == cp.DynOrg {
		return cp.Volume
	}
	return cp.Volume * cp.DynEdit / cp.DynOrg
}
