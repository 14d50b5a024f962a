package vslib

import "errors"

var (
	// ErrClosed is returned by every call on a closed project.
	ErrClosed = errors.New("project is closed")
	// ErrInvalidParam reports an out-of-range or read-only parameter.
	ErrInvalidParam = errors.New("invalid parameter")
	// ErrItemNotFound reports an unknown or removed item number.
	ErrItemNotFound = errors.New("item not found")
	// ErrCtrlPntRange reports a control point index outside the item.
	ErrCtrlPntRange = errors.New("control point index out of range")
	// ErrWaveOpen reports a wave file that cannot be opened.
	ErrWaveOpen = errors.New("cannot open wave file")
	// ErrWaveFormat reports an unsupported wave format.
	ErrWaveFormat = errors.New("unsupported wave format")
	// ErrWaveEmpty reports a wave or mix without samples.
	ErrWaveEmpty = errors.New("wave has no samples")
	// ErrWaveExport reports a failure while writing the exported wave.
	ErrWaveExport = errors.New("cannot export wave file")
	// ErrProjectOpen reports a project file that cannot be loaded.
	ErrProjectOpen = errors.New("cannot open project file")
	// ErrProjectSave reports a project file that cannot be written.
	ErrProjectSave = errors.New("cannot save project file")
	// ErrTrackNotFound reports an unknown track number.
	ErrTrackNotFound = errors.New("track not found")
)

// OpError records the project operation that failed.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return "vslib: " + e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

func opErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}
