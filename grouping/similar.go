package grouping

import (
	"sort"

	"imagedup/imageprocessor"
	"imagedup/types"
)

// HammingCutoff maps a normalized similarity threshold in [0.0, 1.0]
// (1.0 = identical fingerprints) to the inclusive Hamming-distance
// cutoff against the fixed fingerprint bit length.
func HammingCutoff(threshold float64) int {
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}
	return int((1.0-threshold)*float64(imageprocessor.FingerprintBits) + 1e-9)
}

// BuildSimilarGroups clusters records whose fingerprints are within the
// similarity threshold of each other, excluding every file already
// captured by an exact group (an exact pair would otherwise reappear as
// a trivial zero-distance similar pair).
//
// Clustering is single-linkage: if A~B and B~C are both within the
// cutoff, A, B and C join one group even when A and C alone exceed it.
// This maximizes recall for chains of slightly re-compressed copies at
// the cost of occasionally merging borderline-dissimilar images; callers
// wanting stricter groups must tighten the threshold, not the linkage.
//
// Within a group the representative (the suggested "keep") is the
// largest file, ties broken by ascending path. Singleton clusters are
// discarded. Groups are ordered by representative path.
func BuildSimilarGroups(records []types.ImageRecord, exactGroups []types.ExactGroup, threshold float64) []types.SimilarGroup {
	excluded := ExactMembers(exactGroups)

	var candidates []types.ImageRecord
	for _, r := range records {
		if !r.Accessible || !r.HasFingerprint || excluded[r.Path] {
			continue
		}
		candidates = append(candidates, r)
	}

	cutoff := HammingCutoff(threshold)
	uf := newUnionFind(len(candidates))

	// All-pairs comparison is acceptable at the tens-of-thousands scale
	// this tool targets; a 64-bit popcount per pair is cheap
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			d := imageprocessor.FingerprintDistance(candidates[i].Fingerprint, candidates[j].Fingerprint)
			if d <= cutoff {
				uf.union(i, j)
			}
		}
	}

	clusters := make(map[int][]int)
	for i := range candidates {
		root := uf.find(i)
		clusters[root] = append(clusters[root], i)
	}

	var groups []types.SimilarGroup
	for _, members := range clusters {
		if len(members) < 2 {
			continue
		}
		groups = append(groups, buildGroup(candidates, members))
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Representative < groups[j].Representative
	})

	return groups
}

// buildGroup assembles one SimilarGroup from candidate indices
func buildGroup(candidates []types.ImageRecord, members []int) types.SimilarGroup {
	// Representative: largest file size, then ascending path
	rep := members[0]
	for _, m := range members[1:] {
		if candidates[m].SizeBytes > candidates[rep].SizeBytes ||
			(candidates[m].SizeBytes == candidates[rep].SizeBytes &&
				candidates[m].Path < candidates[rep].Path) {
			rep = m
		}
	}

	maxDistance := 0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			d := imageprocessor.FingerprintDistance(
				candidates[members[i]].Fingerprint,
				candidates[members[j]].Fingerprint)
			if d > maxDistance {
				maxDistance = d
			}
		}
	}

	files := make([]string, 0, len(members))
	for _, m := range members {
		files = append(files, candidates[m].Path)
	}
	sort.Strings(files)

	return types.SimilarGroup{
		Representative: candidates[rep].Path,
		Files:          files,
		MaxDistance:    maxDistance,
	}
}
