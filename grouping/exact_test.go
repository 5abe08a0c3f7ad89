package grouping

import (
	"testing"

	"imagedup/types"
)

func record(path, digest string, size int64) types.ImageRecord {
	return types.ImageRecord{
		Path:        path,
		SizeBytes:   size,
		ExactDigest: digest,
		Accessible:  true,
	}
}

func TestBuildExactGroupsGroupsByDigest(t *testing.T) {
	records := []types.ImageRecord{
		record("/pics/a.jpg", "d1", 100),
		record("/pics/b.jpg", "d1", 100),
		record("/pics/c.jpg", "d2", 200),
		record("/pics/d.jpg", "d2", 200),
		record("/pics/e.jpg", "d2", 200),
		record("/pics/unique.jpg", "d3", 50),
	}

	groups := BuildExactGroups(records)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	// Larger group first
	if groups[0].Digest != "d2" || len(groups[0].Files) != 3 {
		t.Errorf("first group should be d2 with 3 files, got %q with %d", groups[0].Digest, len(groups[0].Files))
	}
	if groups[1].Digest != "d1" || len(groups[1].Files) != 2 {
		t.Errorf("second group should be d1 with 2 files, got %q with %d", groups[1].Digest, len(groups[1].Files))
	}
}

func TestBuildExactGroupsSkipsSingletonsAndInaccessible(t *testing.T) {
	broken := record("/pics/broken.jpg", "d1", 100)
	broken.Accessible = false
	broken.FailReason = types.ReasonInaccessible

	records := []types.ImageRecord{
		record("/pics/a.jpg", "d1", 100),
		broken,
		record("/pics/lone.jpg", "d9", 10),
	}

	groups := BuildExactGroups(records)
	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
}

func TestBuildExactGroupsIgnoresEmptyDigest(t *testing.T) {
	records := []types.ImageRecord{
		record("/pics/a.jpg", "", 100),
		record("/pics/b.jpg", "", 100),
	}

	if groups := BuildExactGroups(records); len(groups) != 0 {
		t.Fatalf("records without digests must not group, got %d groups", len(groups))
	}
}

func TestBuildExactGroupsOrderIsDeterministic(t *testing.T) {
	records := []types.ImageRecord{
		record("/pics/m.jpg", "dB", 1),
		record("/pics/n.jpg", "dB", 1),
		record("/pics/a.jpg", "dA", 1),
		record("/pics/b.jpg", "dA", 1),
	}

	for i := 0; i < 10; i++ {
		groups := BuildExactGroups(records)
		if len(groups) != 2 {
			t.Fatalf("expected 2 groups, got %d", len(groups))
		}
		// Equal sizes: ordered by first member path
		if groups[0].Files[0] != "/pics/a.jpg" {
			t.Fatalf("run %d: expected group starting at /pics/a.jpg first, got %q", i, groups[0].Files[0])
		}
	}
}

func TestExactMembers(t *testing.T) {
	groups := []types.ExactGroup{
		{Digest: "d1", Files: []string{"/pics/a.jpg", "/pics/b.jpg"}},
		{Digest: "d2", Files: []string{"/pics/c.jpg", "/pics/d.jpg"}},
	}

	members := ExactMembers(groups)
	for _, p := range []string{"/pics/a.jpg", "/pics/b.jpg", "/pics/c.jpg", "/pics/d.jpg"} {
		if !members[p] {
			t.Errorf("path %q missing from member set", p)
		}
	}
	if members["/pics/e.jpg"] {
		t.Error("path never in a group reported as member")
	}
}
