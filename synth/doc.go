// Package synth renders an edited item from its source samples and a
// per-control-point edit curve.
//
// The control points are grouped into segments of near-constant pitch shift.
// Each segment is shifted independently with a fresh [pitch.Shifter], using
// surrounding source material as context, and neighbouring segments are
// joined with complementary raised-cosine crossfades. Gain and pan are then
// applied as per-sample envelopes interpolated between control points.
//
// A job without pitch, gain or pan edits renders to an exact copy of its
// source.
package synth
