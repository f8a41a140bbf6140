package domain

import (
	"fmt"
	"strconv"
	"unicode"
)

// Version is a (major, minor, patch) tuple extracted from a tag string.
type Version [3]int

// ParseVersion pulls the first three decimal runs out of raw, defaulting
// absent components to 0. Anything non-numeric around them is ignored, so
// "v1.2.0", "1.2.0-beta" and "release-1.2" all parse.
func ParseVersion(raw string) Version {
	var v Version
	idx := 0
	run := -1

	for i, r := range raw {
		if unicode.IsDigit(r) {
			if run < 0 {
				run = i
			}
			continue
		}
		if run >= 0 {
			if idx < len(v) {
				v[idx], _ = strconv.Atoi(raw[run:i])
				idx++
			}
			run = -1
		}
	}
	if run >= 0 && idx < len(v) {
		v[idx], _ = strconv.Atoi(raw[run:])
	}

	return v
}

// NewerThan reports whether v strictly exceeds other.
func (v Version) NewerThan(other Version) bool {
	for i := range v {
		if v[i] != other[i] {
			return v[i] > other[i]
		}
	}
	return false
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}

// Release describes one entry of the release feed.
type Release struct {
	Tag     string
	HTMLURL string
	Assets  []ReleaseAsset
}

// ReleaseAsset is a downloadable artifact attached to a release.
type ReleaseAsset struct {
	Name        string
	DownloadURL string
}

func (r Release) Version() Version {
	return ParseVersion(r.Tag)
}
