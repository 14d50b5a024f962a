// Package resample converts audio between sample rates with a polyphase
// windowed-sinc FIR.
//
// [Resampler] keeps state across Process calls for streaming use. [Convert]
// is a one-shot helper that removes the filter delay and returns exactly
// round(len(in)*toRate/fromRate) samples, which is what item rendering needs
// when an item's rate differs from the project rate.
package resample
