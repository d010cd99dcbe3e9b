package core

import (
	"strings"

	packageurl "github.com/package-url/packageurl-go"
)

// Coordinate identifies a Maven artifact independent of version.
// It is comparable and safe to use as a map key; equality is
// structural and case-sensitive.
type Coordinate struct {
	Group    string
	Artifact string
}

// String returns the canonical "group:artifact" form.
func (c Coordinate) String() string {
	return c.Group + ":" + c.Artifact
}

// GroupPath returns the group with dots replaced by slashes, as used
// in repository URL layouts.
func (c Coordinate) GroupPath() string {
	return strings.ReplaceAll(c.Group, ".", "/")
}

// ParseCoordinate parses a "group:artifact" or "group:artifact:version"
// string. The returned version is empty when the input has no third field.
func ParseCoordinate(s string) (Coordinate, string, error) {
	sep := strings.Index(s, ":")
	if sep < 0 {
		return Coordinate{}, "", &InvalidCoordinateError{Input: s, Reason: "missing ':' separator"}
	}

	group := s[:sep]
	if group == "" {
		return Coordinate{}, "", &InvalidCoordinateError{Input: s, Reason: "empty group"}
	}

	rest := s[sep+1:]
	artifact := rest
	version := ""
	if sep2 := strings.Index(rest, ":"); sep2 >= 0 {
		artifact = rest[:sep2]
		version = rest[sep2+1:]
		if version == "" {
			return Coordinate{}, "", &InvalidCoordinateError{Input: s, Reason: "empty version"}
		}
	}
	if artifact == "" {
		return Coordinate{}, "", &InvalidCoordinateError{Input: s, Reason: "empty artifact"}
	}

	return Coordinate{Group: group, Artifact: artifact}, version, nil
}

// ParseWatchTarget parses a coordinate for continuous watching.
// Watch targets observe all future versions, so an explicit version
// is a configuration error.
func ParseWatchTarget(s string) (Coordinate, error) {
	c, version, err := ParseCoordinate(s)
	if err != nil {
		return Coordinate{}, err
	}
	if version != "" {
		return Coordinate{}, &InvalidCoordinateError{Input: s, Reason: "watch targets must not include a version"}
	}
	return c, nil
}

// ParseAwaitTarget parses a coordinate for a one-shot await.
// The version names the bounded event being waited for and is required.
func ParseAwaitTarget(s string) (Coordinate, string, error) {
	c, version, err := ParseCoordinate(s)
	if err != nil {
		return Coordinate{}, "", err
	}
	if version == "" {
		return Coordinate{}, "", &InvalidCoordinateError{Input: s, Reason: "await targets must include a version"}
	}
	return c, version, nil
}

// ParsePURL parses a Maven Package URL such as
// "pkg:maven/org.apache.commons/commons-lang3@3.12.0".
// The repository_url qualifier, when present, selects a non-default
// repository and is returned alongside the coordinate.
func ParsePURL(s string) (c Coordinate, version, repositoryURL string, err error) {
	p, perr := packageurl.FromString(s)
	if perr != nil {
		return Coordinate{}, "", "", &InvalidCoordinateError{Input: s, Reason: perr.Error()}
	}
	if p.Type != "maven" {
		return Coordinate{}, "", "", &InvalidCoordinateError{Input: s, Reason: "purl type must be maven, got " + p.Type}
	}
	if p.Namespace == "" {
		return Coordinate{}, "", "", &InvalidCoordinateError{Input: s, Reason: "empty group"}
	}
	if p.Name == "" {
		return Coordinate{}, "", "", &InvalidCoordinateError{Input: s, Reason: "empty artifact"}
	}

	c = Coordinate{Group: p.Namespace, Artifact: p.Name}
	return c, p.Version, p.Qualifiers.Map()["repository_url"], nil
}

// ParseTarget accepts either a coordinate string ("g:a" or "g:a:v") or
// a Maven PURL ("pkg:maven/g/a[@v]").
func ParseTarget(s string) (c Coordinate, version, repositoryURL string, err error) {
	if strings.HasPrefix(s, "pkg:") {
		return ParsePURL(s)
	}
	c, version, err = ParseCoordinate(s)
	return c, version, "", err
}
