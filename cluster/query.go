package cluster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	utiljson "k8s.io/apimachinery/pkg/util/json"
)

// DefaultBinary is the cluster client invoked by CommandRunner.
const DefaultBinary = "oc"

// Query is a read-only `get` of one resource (or resource list) rendered as JSON.
type Query struct {
	Resource string `yaml:"resource"`
	Name     string `yaml:"name,omitempty"`
}

// Args returns the client arguments for the query.
func (q Query) Args() []string {
	args := []string{"get", q.Resource}
	if q.Name != "" {
		args = append(args, q.Name)
	}
	return append(args, "-o", "json")
}

func (q Query) String() string {
	return strings.Join(q.Args(), " ")
}

// Runner executes the cluster client with the given arguments and returns
// its standard output.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// CommandRunner runs an external command-line client such as `oc`.
type CommandRunner struct {
	Binary string
}

var _ Runner = CommandRunner{}

// CommandError is returned when the client exits unsuccessfully.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func (r CommandRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	binary := r.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &CommandError{
			Command: strings.Join(append([]string{binary}, args...), " "),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return stdout.Bytes(), nil
}

// ErrNoData is wrapped by QueryError when the client produced no object.
var ErrNoData = errors.New("no data")

// QueryError carries the diagnostic of a query that yielded no data.
type QueryError struct {
	Query Query
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q: %v", e.Query.String(), e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a single query: either a decoded object or an error.
type Result struct {
	Query  Query
	Object map[string]interface{}
	Err    error
}

// OK reports whether the query produced an object.
func (r Result) OK() bool {
	return r.Err == nil && r.Object != nil
}

// Client issues queries through a Runner and decodes their output.
type Client struct {
	runner Runner
}

func NewClient(runner Runner) *Client {
	return &Client{runner: runner}
}

// Get runs the query. Command and decoding failures are returned inside the
// Result rather than as an error so callers decide how to degrade.
func (c *Client) Get(ctx context.Context, q Query) Result {
	out, err := c.runner.Run(ctx, q.Args()...)
	if err != nil {
		return Result{Query: q, Err: &QueryError{Query: q, Err: err}}
	}

	var obj map[string]interface{}
	if err := utiljson.Unmarshal(out, &obj); err != nil {
		return Result{Query: q, Err: &QueryError{Query: q, Err: fmt.Errorf("decoding output: %w", err)}}
	}
	if obj == nil {
		return Result{Query: q, Err: &QueryError{Query: q, Err: ErrNoData}}
	}
	return Result{Query: q, Object: obj}
}
