package grouping

import (
	"sort"

	"imagedup/types"
)

// BuildExactGroups groups accessible records by exact digest. Any
// digest shared by 2 or more records forms a group; singletons are not
// groups. Groups are ordered by descending member count, then by first
// member path, so the results artifact is deterministic.
func BuildExactGroups(records []types.ImageRecord) []types.ExactGroup {
	byDigest := make(map[string][]string)
	for _, r := range records {
		if !r.Accessible || r.ExactDigest == "" {
			continue
		}
		byDigest[r.ExactDigest] = append(byDigest[r.ExactDigest], r.Path)
	}

	var groups []types.ExactGroup
	for digest, files := range byDigest {
		if len(files) < 2 {
			continue
		}
		// Records arrive in catalog (path) order, so member order is
		// already stable; keep it
		groups = append(groups, types.ExactGroup{Digest: digest, Files: files})
	}

	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Files) != len(groups[j].Files) {
			return len(groups[i].Files) > len(groups[j].Files)
		}
		return groups[i].Files[0] < groups[j].Files[0]
	})

	return groups
}

// ExactMembers returns the set of every path captured by an exact
// group, used to exclude those files from similarity clustering.
func ExactMembers(groups []types.ExactGroup) map[string]bool {
	members := make(map[string]bool)
	for _, g := range groups {
		for _, f := range g.Files {
			members[f] = true
		}
	}
	return members
}
