// Package internal holds iterator helpers shared by the mcdp packages.
package internal

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Concat2 yields the pairs of every sequence, in argument order.
func Concat2[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for k, v := range seq {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// Sorted2 yields the pairs of seq in key order.
// When a key repeats, the last value seen wins.
func Sorted2[K cmp.Ordered, V any](seq iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		all := maps.Collect(seq)
		for _, k := range slices.Sorted(maps.Keys(all)) {
			if !yield(k, all[k]) {
				return
			}
		}
	}
}
