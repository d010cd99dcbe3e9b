// Package semver wraps github.com/Masterminds/semver/v3 for version
// constraint filtering of watch targets.
package semver

import (
	"fmt"

	mm "github.com/Masterminds/semver/v3"
)

// Constraint is a semantic version constraint.
//
// Examples:
// - ">=1.2.0 <2.0.0"
// - "^1.0.0"
// - "~1.4"
type Constraint struct {
	c   *mm.Constraints
	raw string
}

// ParseConstraint parses a constraint expression.
func ParseConstraint(raw string) (*Constraint, error) {
	c, err := mm.NewConstraint(raw)
	if err != nil {
		return nil, fmt.Errorf("semver: parse constraint %q: %w", raw, err)
	}
	return &Constraint{c: c, raw: raw}, nil
}

// MustParseConstraint is ParseConstraint that panics on error.
func MustParseConstraint(raw string) *Constraint {
	c, err := ParseConstraint(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Constraint) String() string {
	return c.raw
}

// Matches reports whether raw satisfies the constraint. Versions that
// do not parse as semantic versions never match.
func (c *Constraint) Matches(raw string) bool {
	v, err := mm.NewVersion(raw)
	if err != nil {
		return false
	}
	return c.c.Check(v)
}
