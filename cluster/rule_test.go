package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	utiljson "k8s.io/apimachinery/pkg/util/json"
)

func decode(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var obj map[string]interface{}
	require.NoError(t, utiljson.Unmarshal([]byte(raw), &obj))
	return obj
}

func TestRuleEvaluate(t *testing.T) {
	timeout := Rule{
		Kind: KindRange,
		Path: []string{"spec", "authentication", "inactivityTimeoutSeconds"},
		Min:  int64Ptr(1),
		Max:  int64Ptr(MaxInactivityTimeoutSeconds),
	}
	fips := Rule{
		Kind:  KindAllHaveKey,
		Path:  []string{"items"},
		Field: []string{"metadata", "labels"},
		Key:   FIPSLabel,
	}
	oidc := Rule{
		Kind:  KindAnyEquals,
		Path:  []string{"spec", "identityProviders"},
		Field: []string{"type"},
		Value: "OpenID",
	}
	encryption := Rule{
		Kind:  KindNotEquals,
		Path:  []string{"spec", "encryption", "type"},
		Value: "identity",
	}
	tls := Rule{
		Kind:  KindEquals,
		Path:  []string{"spec", "tlsSecurityProfile", "type"},
		Value: "Modern",
	}
	banner := Rule{
		Kind: KindPresent,
		Path: []string{"spec", "customization", "loginNotification"},
	}

	tests := []struct {
		name             string
		rule             Rule
		object           string
		expectedPass     bool
		expectedObserved interface{}
	}{
		{name: "timeout at limit", rule: timeout, object: `{"spec":{"authentication":{"inactivityTimeoutSeconds":900}}}`, expectedPass: true, expectedObserved: int64(900)},
		{name: "timeout above limit", rule: timeout, object: `{"spec":{"authentication":{"inactivityTimeoutSeconds":901}}}`, expectedObserved: int64(901)},
		{name: "timeout zero", rule: timeout, object: `{"spec":{"authentication":{"inactivityTimeoutSeconds":0}}}`, expectedObserved: int64(0)},
		{name: "timeout absent", rule: timeout, object: `{"spec":{"authentication":{}}}`},
		{name: "timeout not a number", rule: timeout, object: `{"spec":{"authentication":{"inactivityTimeoutSeconds":"600"}}}`, expectedObserved: "600"},
		{name: "fips all nodes labelled", rule: fips, object: compliantNodes, expectedPass: true, expectedObserved: "2/2"},
		{name: "fips unlabelled node", rule: fips, object: `{"items":[{"metadata":{"name":"worker-0"}}]}`, expectedObserved: "0/1"},
		{name: "fips some nodes labelled", rule: fips, object: `{"items":[{"metadata":{"labels":{"feature.node.kubernetes.io/fips":"true"}}},{"metadata":{"labels":{"role":"worker"}}}]}`, expectedObserved: "1/2"},
		{name: "fips zero nodes", rule: fips, object: `{"items":[]}`, expectedObserved: "0/0"},
		{name: "fips no items key", rule: fips, object: `{"kind":"List"}`, expectedObserved: "0/0"},
		{name: "oidc provider present", rule: oidc, object: compliantOAuth, expectedPass: true, expectedObserved: []interface{}{"HTPasswd", "OpenID"}},
		{name: "oidc provider missing", rule: oidc, object: `{"spec":{"identityProviders":[{"type":"HTPasswd"}]}}`, expectedObserved: []interface{}{"HTPasswd"}},
		{name: "no identity providers", rule: oidc, object: `{"spec":{}}`},
		{name: "encryption aescbc", rule: encryption, object: compliantAPIServer, expectedPass: true, expectedObserved: "aescbc"},
		{name: "encryption identity", rule: encryption, object: `{"spec":{"encryption":{"type":"identity"}}}`, expectedObserved: "identity"},
		{name: "encryption empty", rule: encryption, object: `{"spec":{"encryption":{"type":""}}}`, expectedObserved: ""},
		{name: "encryption absent", rule: encryption, object: `{"spec":{}}`},
		{name: "tls modern", rule: tls, object: compliantAPIServer, expectedPass: true, expectedObserved: "Modern"},
		{name: "tls intermediate", rule: tls, object: `{"spec":{"tlsSecurityProfile":{"type":"Intermediate"}}}`, expectedObserved: "Intermediate"},
		{name: "tls absent", rule: tls, object: `{"spec":{}}`},
		{name: "banner set", rule: banner, object: compliantConsole, expectedPass: true, expectedObserved: "Authorized use only"},
		{name: "banner empty", rule: banner, object: `{"spec":{"customization":{"loginNotification":""}}}`},
		{name: "banner absent", rule: banner, object: `{"spec":{"customization":{}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := tt.rule.Evaluate(decode(t, tt.object))
			assert.Equal(t, tt.expectedPass, outcome.Pass)
			assert.Equal(t, tt.expectedObserved, outcome.Observed)
		})
	}
}

func TestRuleEvaluateNilObject(t *testing.T) {
	for _, check := range DefaultChecks() {
		t.Run(string(check.ID), func(t *testing.T) {
			assert.False(t, check.Rule.Evaluate(nil).Pass)
		})
	}
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name      string
		rule      Rule
		expectErr bool
	}{
		{name: "valid equals", rule: Rule{Kind: KindEquals, Path: []string{"a"}, Value: "x"}},
		{name: "equals without value", rule: Rule{Kind: KindEquals, Path: []string{"a"}}, expectErr: true},
		{name: "empty path", rule: Rule{Kind: KindPresent}, expectErr: true},
		{name: "range without bounds", rule: Rule{Kind: KindRange, Path: []string{"a"}}, expectErr: true},
		{name: "range inverted", rule: Rule{Kind: KindRange, Path: []string{"a"}, Min: int64Ptr(10), Max: int64Ptr(1)}, expectErr: true},
		{name: "range max only", rule: Rule{Kind: KindRange, Path: []string{"a"}, Max: int64Ptr(1)}},
		{name: "anyEquals without field", rule: Rule{Kind: KindAnyEquals, Path: []string{"a"}, Value: "x"}, expectErr: true},
		{name: "allHaveKey without key", rule: Rule{Kind: KindAllHaveKey, Path: []string{"items"}}, expectErr: true},
		{name: "unknown kind", rule: Rule{Kind: "regex", Path: []string{"a"}}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.expectErr {
				assert.ErrorIs(t, err, errInvalidRule)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
