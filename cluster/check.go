package cluster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/complytime/complybeacon/evidencekit/evidence"
)

// ValuePlaceholder is replaced by the observed value in a Pass template.
const ValuePlaceholder = "{value}"

// ID represents the identity of a check and becomes the record's check_id.
type ID string

// Check describes one determination over the result of a single query.
type Check struct {
	ID      ID     `yaml:"id"`
	Control string `yaml:"control"`
	Query   Query  `yaml:"query"`
	Rule    Rule   `yaml:"rule"`
	Pass    string `yaml:"pass"`
	Fail    string `yaml:"fail"`
}

// Validate reports whether the check is complete enough to run.
func (c Check) Validate() error {
	switch {
	case c.ID == "":
		return errors.New("check id is required")
	case c.Query.Resource == "":
		return fmt.Errorf("check %s: query resource is required", c.ID)
	case c.Pass == "" || c.Fail == "":
		return fmt.Errorf("check %s: pass and fail details are required", c.ID)
	}
	if err := c.Rule.Validate(); err != nil {
		return fmt.Errorf("check %s: %w", c.ID, err)
	}
	return nil
}

// Record evaluates the check against a query result. A failed query yields a
// failing record carrying only the fail text.
func (c Check) Record(result Result) evidence.Record {
	if !result.OK() {
		return evidence.Record{CheckID: string(c.ID), Pass: false, Details: c.Fail}
	}

	outcome := c.Rule.Evaluate(result.Object)
	if outcome.Pass {
		return evidence.Record{
			CheckID: string(c.ID),
			Pass:    true,
			Details: strings.ReplaceAll(c.Pass, ValuePlaceholder, fmt.Sprint(outcome.Observed)),
		}
	}

	details := c.Fail
	if outcome.Observed != nil {
		details = fmt.Sprintf("%s Observed value: %v.", c.Fail, outcome.Observed)
	}
	return evidence.Record{CheckID: string(c.ID), Pass: false, Details: details}
}

// Registry holds checks in registration order.
type Registry struct {
	checks []Check
	index  map[ID]int
}

// ErrDuplicateCheck is returned when a check id is registered twice.
var ErrDuplicateCheck = errors.New("duplicate check")

// NewRegistry returns a registry populated with checks, in order.
func NewRegistry(checks ...Check) (*Registry, error) {
	r := &Registry{index: make(map[ID]int)}
	for _, c := range checks {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register validates and appends a check.
func (r *Registry) Register(c Check) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, exists := r.index[c.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCheck, c.ID)
	}
	r.index[c.ID] = len(r.checks)
	r.checks = append(r.checks, c)
	return nil
}

// Checks returns the registered checks in registration order.
func (r *Registry) Checks() []Check {
	out := make([]Check, len(r.checks))
	copy(out, r.checks)
	return out
}

func (r *Registry) Get(id ID) (Check, bool) {
	i, ok := r.index[id]
	if !ok {
		return Check{}, false
	}
	return r.checks[i], true
}

func (r *Registry) Len() int {
	return len(r.checks)
}
