// Package pitch provides the offline pitch shifters used to render edited
// control points.
//
// Two implementations share the [Shifter] interface:
//   - [WSOLA]: time-domain waveform-similarity overlap-add followed by
//     Hermite resampling. Robust on monophonic voice.
//   - [Vocoder]: STFT phase vocoder with bin shifting for small intervals
//     and stretch-plus-resample for large ones.
//
// Both are mono, one-shot buffer oriented and not safe for concurrent use.
// Output length always equals input length.
package pitch
