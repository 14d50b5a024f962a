package synth

import "math"

// segment is a run of control points rendered with one shift.
type segment struct {
	first, last int // control point indices, inclusive
	start, end  int // source sample range
	cents       float64

	// fadeIn and fadeOut are the half-lengths of the joins at start and end.
	fadeIn, fadeOut int
}

func (s segment) len() int { return s.end - s.start }

// lo and hi bound the samples the segment contributes to, joins included.
func (s segment) lo() int { return s.start - s.fadeIn }
func (s segment) hi() int { return s.end + s.fadeOut }

// identity reports whether the segment renders as a copy of the source.
func (s segment) identity() bool { return math.Abs(s.cents) < 1e-6 }

// segmentize groups consecutive points whose shift stays within tol of the
// first point of the run. Each segment shifts by the mean of its run. The
// boundary between two runs lies halfway between their adjacent points.
func segmentize(shifts []float64, length int, sampleRate, ctrlPntPs int, tol float64) []segment {
	if length <= 0 {
		return nil
	}
	if len(shifts) == 0 {
		return []segment{{first: 0, last: -1, start: 0, end: length}}
	}

	var segs []segment
	for first := 0; first < len(shifts); {
		last := first
		sum := shifts[first]
		for last+1 < len(shifts) && math.Abs(shifts[last+1]-shifts[first]) <= tol {
			last++
			sum += shifts[last]
		}
		segs = append(segs, segment{
			first: first,
			last:  last,
			cents: sum / float64(last-first+1),
		})
		first = last + 1
	}

	for i := range segs {
		if i == 0 {
			segs[i].start = 0
		} else {
			segs[i].start = segs[i-1].end
		}
		if i == len(segs)-1 {
			segs[i].end = length
			continue
		}
		b := int(math.Round((float64(segs[i].last) + 0.5) * float64(sampleRate) / float64(ctrlPntPs)))
		segs[i].end = min(length, max(segs[i].start, b))
	}

	// Runs that map to no samples (possible only past the end of the
	// signal) are dropped.
	out := segs[:0]
	for _, s := range segs {
		if s.len() > 0 {
			out = append(out, s)
		}
	}
	return out
}

// assignFades sets the join half-lengths, limited to half of the shorter
// neighbour so that a segment's two joins never overlap.
func assignFades(segs []segment, half int) {
	for i := 1; i < len(segs); i++ {
		h := min(half, segs[i-1].len()/2, segs[i].len()/2)
		segs[i-1].fadeOut = h
		segs[i].fadeIn = h
	}
}

// fade returns the raised-cosine fade-in weight at position k of a join of
// length n. fade(k, n) + fade(n-1-k, n) == 1.
func fade(k, n int) float64 {
	return 0.5 - 0.5*math.Cos(math.Pi*(float64(k)+0.5)/float64(n))
}

// weight returns the contribution of s at sample i.
func (s segment) weight(i int) float64 {
	switch {
	case s.fadeIn > 0 && i < s.start+s.fadeIn:
		return fade(i-s.lo(), 2*s.fadeIn)
	case s.fadeOut > 0 && i >= s.end-s.fadeOut:
		return 1 - fade(i-(s.end-s.fadeOut), 2*s.fadeOut)
	default:
		return 1
	}
}
