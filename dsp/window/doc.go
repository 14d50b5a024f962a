// Package window generates analysis and synthesis windows used by the
// pitch analyzer and the phase-vocoder shifter.
package window
