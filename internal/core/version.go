package core

import (
	"sort"

	debversion "github.com/knqyf263/go-deb-version"

	"repo-mirror/internal/types"
)

// versionCache memoizes parsed Debian versions so sorting large mirrors
// parses each version string once.
type versionCache struct {
	deb map[string]debversion.Version
	bad map[string]struct{}
}

func newVersionCache() *versionCache {
	return &versionCache{
		deb: map[string]debversion.Version{},
		bad: map[string]struct{}{},
	}
}

// debVersion returns a parsed Debian version, caching the result.
func (c *versionCache) debVersion(value string) (debversion.Version, bool) {
	if parsed, ok := c.deb[value]; ok {
		return parsed, true
	}
	if _, ok := c.bad[value]; ok {
		return debversion.Version{}, false
	}
	parsed, err := debversion.NewVersion(value)
	if err != nil {
		c.bad[value] = struct{}{}
		return debversion.Version{}, false
	}
	c.deb[value] = parsed
	return parsed, true
}

// compare orders two version strings by Debian rules. Unparseable versions
// fall back to plain string comparison.
func (c *versionCache) compare(a string, b string) int {
	va, okA := c.debVersion(a)
	vb, okB := c.debVersion(b)
	if okA && okB {
		return va.Compare(vb)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SortPackageRecords orders records by name, then by Debian version, then by
// architecture. The input slice is sorted in place.
func SortPackageRecords(records []types.PackageRecord) []types.PackageRecord {
	cache := newVersionCache()
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		if cmp := cache.compare(records[i].Version, records[j].Version); cmp != 0 {
			return cmp < 0
		}
		return records[i].Architecture < records[j].Architecture
	})
	return records
}
