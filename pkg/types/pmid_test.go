// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"reflect"
	"testing"
)

func TestPMIDLess(t *testing.T) {
	tests := []struct {
		name string
		p, q PMID
		want bool
	}{
		{"shorter number sorts first", "9", "10", true},
		{"longer number sorts last", "10", "9", false},
		{"equal length lexical", "123", "124", true},
		{"equal values", "123", "123", false},
		{"leading zeros ignored", "007", "10", true},
		{"leading zeros equal value", "007", "7", false},
		{"large ids", "35000000", "9999999", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Less(tt.q); got != tt.want {
				t.Errorf("PMID(%q).Less(%q) = %v, want %v", tt.p, tt.q, got, tt.want)
			}
		})
	}
}

func TestSortUnique(t *testing.T) {
	tests := []struct {
		name string
		in   []PMID
		want []PMID
	}{
		{
			name: "numeric not lexical order",
			in:   []PMID{"10", "9", "100", "2"},
			want: []PMID{"2", "9", "10", "100"},
		},
		{
			name: "duplicates removed",
			in:   []PMID{"5", "3", "5", "3", "5"},
			want: []PMID{"3", "5"},
		},
		{
			name: "already sorted stays sorted",
			in:   []PMID{"1", "2", "3"},
			want: []PMID{"1", "2", "3"},
		},
		{
			name: "empty input",
			in:   nil,
			want: []PMID{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortUnique(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SortUnique(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSortUniqueDoesNotModifyInput(t *testing.T) {
	in := []PMID{"10", "9", "9"}
	SortUnique(in)
	if !reflect.DeepEqual(in, []PMID{"10", "9", "9"}) {
		t.Errorf("input modified: %v", in)
	}
}
