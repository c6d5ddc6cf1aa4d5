package ansible

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrNoControl is returned for tagged tasks whose tags carry no control
	// identifier.
	ErrNoControl = errors.New("no control identifier in tags")
	// ErrMisplacedControl is returned when a control identifier is tagged
	// but is not the first tag.
	ErrMisplacedControl = errors.New("control identifier must be the first tag")
	// ErrAmbiguousControl is returned when a task is tagged with more than one
	// control identifier.
	ErrAmbiguousControl = errors.New("more than one control identifier in tags")
)

// controlIDPattern matches identifiers such as CR-1.1, AC-2(1), SC-13 and
// requirement enhancements written as CR-2.1-RE1, SR-1.1-RE-1, CR-2.1_RE1 or
// CR 2.1 RE(1).
var controlIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*[- ]\d+(\.\d+)*(\(\d+\))*([-_ ][Rr][Ee][- ]?(\d+|\(\d+\)))?$`)

// IsControlID reports whether tag looks like a control identifier.
func IsControlID(tag string) bool {
	return controlIDPattern.MatchString(tag)
}

// ParseControlID returns the control identifier a task is tagged with. The
// identifier must be the first tag and the only one of its kind; other tags
// are ignored. Untagged tasks yield an empty identifier and no error, while
// tags without any identifier yield ErrNoControl.
func ParseControlID(tags []string) (string, error) {
	if len(tags) == 0 {
		return "", nil
	}

	var found []int
	for i, tag := range tags {
		if IsControlID(tag) {
			found = append(found, i)
		}
	}

	switch {
	case len(found) == 0:
		return "", fmt.Errorf("%w: %v", ErrNoControl, tags)
	case len(found) > 1:
		return "", fmt.Errorf("%w: %v", ErrAmbiguousControl, tags)
	case found[0] != 0:
		return "", fmt.Errorf("%w: %q in %v", ErrMisplacedControl, tags[found[0]], tags)
	}
	return tags[0], nil
}
