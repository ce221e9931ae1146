package maven

import (
	"strings"

	"github.com/matzehuels/srcfetch/pkg/errors"
)

// Coordinate identifies a Maven artifact version.
//
// Coordinates are values; they are never modified after construction.
// Use [NewCoordinate] or [ParseCoordinate] to get a validated one.
type Coordinate struct {
	GroupID    string // e.g. "org.springframework", never contains ':'
	ArtifactID string // e.g. "spring-core", never contains ':'
	Version    string // e.g. "3.1.4.RELEASE"
}

// NewCoordinate validates the three parts and returns the coordinate.
// Returns an INVALID_COORDINATE error when a part is empty, when the group
// or artifact contains ':', or when a part could not be used as a path
// component of the local repository.
func NewCoordinate(groupID, artifactID, version string) (Coordinate, error) {
	c := Coordinate{GroupID: groupID, ArtifactID: artifactID, Version: version}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Validate checks a coordinate built as a struct literal the same way
// [NewCoordinate] does.
func (c Coordinate) Validate() error {
	if err := errors.ValidateGroupID(c.GroupID); err != nil {
		return err
	}
	if err := errors.ValidateCoordinatePart("artifactId", c.ArtifactID); err != nil {
		return err
	}
	return errors.ValidateVersion(c.Version)
}

// ParseCoordinate parses "groupId:artifactId:version".
// Exactly three non-empty fields are required.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"invalid maven coordinate %q (expected groupId:artifactId:version)", s)
	}
	return NewCoordinate(parts[0], parts[1], parts[2])
}

// String returns the canonical "groupId:artifactId:version" form.
func (c Coordinate) String() string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// Strings converts coordinates to their canonical string forms.
func Strings(coords []Coordinate) []string {
	out := make([]string, len(coords))
	for i, c := range coords {
		out[i] = c.String()
	}
	return out
}

// Merge concatenates coordinate lists, dropping repeats of an earlier
// coordinate. Order of first appearance is kept.
func Merge(lists ...[]Coordinate) []Coordinate {
	var out []Coordinate
	seen := make(map[Coordinate]bool)
	for _, list := range lists {
		for _, c := range list {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
