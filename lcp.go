package lzend

// plcp computes the permuted LCP array of t into pl using the phi
// algorithm: pl[q] is the length of the longest common prefix of t[q:] and
// the suffix preceding it in the suffix array. The entry for the
// lexicographically smallest suffix is 0.
//
// The buffer is used for the phi values first and rewritten in place; the
// whole computation is O(n) because the LCP value can drop by at most one
// from one text position to the next.
func plcp(t []byte, sa []Index, pl []Index) {
	n := Index(len(t))
	if n == 0 {
		return
	}
	pl[sa[0]] = -1
	for i := Index(1); i < n; i++ {
		pl[sa[i]] = sa[i-1]
	}
	l := Index(0)
	for i := Index(0); i < n; i++ {
		k := pl[i]
		if k < 0 {
			pl[i] = 0
			l = 0
			continue
		}
		l += Index(matchLen(t[i+l:], t[k+l:]))
		pl[i] = l
		if l > 0 {
			l--
		}
	}
}

// lcpFromPLCP permutes the PLCP array into lexicographic rank order:
// lcp[i] is the longest common prefix of the suffixes at ranks i-1 and i.
func lcpFromPLCP(pl, sa, lcp []Index) {
	for i, q := range sa {
		lcp[i] = pl[q]
	}
}

// matchLen returns the length of the common prefix of p and q.
func matchLen(p, q []byte) int {
	if len(q) > len(p) {
		p, q = q, p
	}
	for i, b := range q {
		if p[i] != b {
			return i
		}
	}
	return len(q)
}
