package cluster

func int64Ptr(v int64) *int64 {
	return &v
}

var (
	oauthQuery     = Query{Resource: "oauth", Name: "cluster"}
	consoleQuery   = Query{Resource: "console", Name: "cluster"}
	apiserverQuery = Query{Resource: "apiserver", Name: "cluster"}
	nodesQuery     = Query{Resource: "nodes"}
)

// FIPSLabel marks a node that runs in FIPS mode.
const FIPSLabel = "feature.node.kubernetes.io/fips"

// MaxInactivityTimeoutSeconds is the longest compliant session inactivity timeout.
const MaxInactivityTimeoutSeconds = 900

// DefaultChecks returns the built-in OpenShift checks in report order.
func DefaultChecks() []Check {
	return []Check{
		{
			ID:      "oauth_oidc_mfa_configured",
			Control: "CR-1.1",
			Query:   oauthQuery,
			Rule: Rule{
				Kind:  KindAnyEquals,
				Path:  []string{"spec", "identityProviders"},
				Field: []string{"type"},
				Value: "OpenID",
			},
			Pass: "OAuth is configured with an OIDC identity provider.",
			Fail: "OAuth is not configured with an OIDC identity provider.",
		},
		{
			ID:      "console_banner_configured",
			Control: "CR-1.12",
			Query:   consoleQuery,
			Rule: Rule{
				Kind: KindPresent,
				Path: []string{"spec", "customization", "loginNotification"},
			},
			Pass: "Console login notification banner is configured and active.",
			Fail: "Console login notification banner is not configured.",
		},
		{
			ID:      "session_timeout_set",
			Control: "CR-2.5",
			Query:   consoleQuery,
			Rule: Rule{
				Kind: KindRange,
				Path: []string{"spec", "authentication", "inactivityTimeoutSeconds"},
				Min:  int64Ptr(1),
				Max:  int64Ptr(MaxInactivityTimeoutSeconds),
			},
			Pass: "OAuth token inactivity timeout is set to {value} seconds.",
			Fail: "OAuth token inactivity timeout is not set or not compliant.",
		},
		{
			ID:      "apiserver_tls_modern",
			Control: "CR-3.1",
			Query:   apiserverQuery,
			Rule: Rule{
				Kind:  KindEquals,
				Path:  []string{"spec", "tlsSecurityProfile", "type"},
				Value: "Modern",
			},
			Pass: "APIServer is configured with the 'Modern' TLS Security Profile.",
			Fail: "APIServer is not configured with the 'Modern' TLS Security Profile.",
		},
		{
			ID:      "etcd_encryption_enabled",
			Control: "CR-4.1",
			Query:   apiserverQuery,
			Rule: Rule{
				Kind:  KindNotEquals,
				Path:  []string{"spec", "encryption", "type"},
				Value: "identity",
			},
			Pass: "etcd data encryption is enabled with the '{value}' provider.",
			Fail: "etcd data encryption is not enabled.",
		},
		{
			ID:      "fips_mode_enabled",
			Control: "CR-4.3",
			Query:   nodesQuery,
			Rule: Rule{
				Kind:  KindAllHaveKey,
				Path:  []string{"items"},
				Field: []string{"metadata", "labels"},
				Key:   FIPSLabel,
			},
			Pass: "All cluster nodes are confirmed to be running in FIPS mode.",
			Fail: "Not all nodes are confirmed to be running in FIPS mode.",
		},
	}
}

// DefaultRegistry returns a registry of DefaultChecks.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultChecks()...)
	if err != nil {
		panic(err)
	}
	return r
}
