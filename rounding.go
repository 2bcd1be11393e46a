package willowmap

// roundingGuard holds the host's rounding toggle switched off until release.
// It restores the value it found rather than forcing rounding back on, so
// guards taken by nested or reentrant updates unwind in order.
type roundingGuard struct {
	m    Map
	prev bool
}

// suppressRounding switches the host's pixel rounding off. Pair every call
// with a deferred release:
//
//	defer suppressRounding(m).release()
func suppressRounding(m Map) roundingGuard {
	return roundingGuard{m: m, prev: m.SetRounding(false)}
}

func (g roundingGuard) release() {
	g.m.SetRounding(g.prev)
}
