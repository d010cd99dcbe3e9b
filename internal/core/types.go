// Package core provides the artifact coordinate model, the seen-version
// store, and the error taxonomy shared by the watch engine.
package core

// VersionSet is the result of a successful metadata fetch for a
// published artifact.
type VersionSet struct {
	// Latest is the repository-designated release version. It is taken
	// verbatim from the metadata and is not necessarily the highest
	// version by any ordering.
	Latest string

	// Versions holds every published version, in the order the
	// repository returned them. Non-empty on a successful fetch.
	Versions []string
}

// Contains reports whether version is a member of the set.
func (v *VersionSet) Contains(version string) bool {
	for _, have := range v.Versions {
		if have == version {
			return true
		}
	}
	return false
}
