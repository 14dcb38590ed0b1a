// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "sort"

// PMID is a PubMed unique identifier. PMIDs are numeric but travel as
// strings on the wire; ordering is by numeric value, not lexical order
// ("9" sorts before "10").
type PMID string

// Less reports whether p precedes q in numeric order. Digit strings are
// compared by length after stripping leading zeros, then lexically, which
// matches numeric order without parsing and cannot overflow.
func (p PMID) Less(q PMID) bool {
	a := trimLeadingZeros(string(p))
	b := trimLeadingZeros(string(q))
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// SortUnique returns ids deduplicated and sorted ascending by numeric
// value. The input slice is not modified.
func SortUnique(ids []PMID) []PMID {
	seen := make(map[PMID]struct{}, len(ids))
	out := make([]PMID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Less(out[j])
	})
	return out
}

func trimLeadingZeros(s string) string {
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}
