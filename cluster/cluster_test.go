package cluster

import (
	"context"
	"errors"
	"strings"
)

// fakeRunner answers queries from canned output keyed by the joined arguments.
// Unknown queries fail like a missing resource would.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: make(map[string]string), errs: make(map[string]error)}
}

func (f *fakeRunner) with(q Query, output string) *fakeRunner {
	f.outputs[q.String()] = output
	return f
}

func (f *fakeRunner) failing(q Query, err error) *fakeRunner {
	f.errs[q.String()] = err
	return f
}

func (f *fakeRunner) Run(_ context.Context, args ...string) ([]byte, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	out, ok := f.outputs[key]
	if !ok {
		return nil, &CommandError{Command: "oc " + key, Stderr: "error: the server doesn't have a resource type", Err: errors.New("exit status 1")}
	}
	return []byte(out), nil
}

const compliantClusterVersion = `{"spec":{"clusterID":"0b1c-cluster"}}`

const compliantOAuth = `{"spec":{"identityProviders":[{"name":"htpasswd","type":"HTPasswd"},{"name":"sso","type":"OpenID"}]}}`

const compliantConsole = `{"spec":{"customization":{"loginNotification":"Authorized use only"},"authentication":{"inactivityTimeoutSeconds":600}}}`

const compliantAPIServer = `{"spec":{"tlsSecurityProfile":{"type":"Modern"},"encryption":{"type":"aescbc"}}}`

const compliantNodes = `{"items":[
  {"metadata":{"name":"master-0","labels":{"feature.node.kubernetes.io/fips":"true"}}},
  {"metadata":{"name":"worker-0","labels":{"feature.node.kubernetes.io/fips":"true"}}}
]}`

func compliantCluster() *fakeRunner {
	return newFakeRunner().
		with(clusterVersionQuery, compliantClusterVersion).
		with(oauthQuery, compliantOAuth).
		with(consoleQuery, compliantConsole).
		with(apiserverQuery, compliantAPIServer).
		with(nodesQuery, compliantNodes)
}
