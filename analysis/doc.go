// Package analysis estimates per-control-point pitch, clarity and level of a
// mono signal.
//
// The fundamental frequency tracker is McLeod's normalized square difference
// function (NSDF). The autocorrelation term is computed through a
// zero-padded FFT, which keeps a frame at O(N log N) regardless of the lag
// range. Frames are centered on control-point times, so frame i describes the
// signal around sample i*sampleRate/CtrlPntPs.
package analysis
