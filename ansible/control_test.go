package ansible

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseControlID(t *testing.T) {
	tests := []struct {
		name       string
		tags       []string
		expectedID string
		expectErr  error
	}{
		{name: "no tags", tags: nil},
		{name: "empty tags", tags: []string{}},
		{name: "single control", tags: []string{"CR-7.7"}, expectedID: "CR-7.7"},
		{name: "control then other tags", tags: []string{"CR-1.1", "extra"}, expectedID: "CR-1.1"},
		{name: "enhancement", tags: []string{"AC-2(1)", "accounts"}, expectedID: "AC-2(1)"},
		{name: "nested numbering", tags: []string{"CR-1.12.3"}, expectedID: "CR-1.12.3"},
		{name: "requirement enhancement", tags: []string{"CR-2.1-RE1"}, expectedID: "CR-2.1-RE1"},
		{name: "requirement enhancement with dash", tags: []string{"SR-1.1-RE-1", "sshd"}, expectedID: "SR-1.1-RE-1"},
		{name: "requirement enhancement with underscore", tags: []string{"CR-2.1_RE1"}, expectedID: "CR-2.1_RE1"},
		{name: "requirement enhancement spelled out", tags: []string{"CR 2.1 RE(1)"}, expectedID: "CR 2.1 RE(1)"},
		{name: "enhancement of a control that is not first", tags: []string{"sshd", "CR-2.1-RE1"}, expectErr: ErrMisplacedControl},
		{name: "control and its enhancement", tags: []string{"CR-2.1", "CR-2.1-RE1"}, expectErr: ErrAmbiguousControl},
		{name: "no control among tags", tags: []string{"always", "sshd"}, expectErr: ErrNoControl},
		{name: "control not first", tags: []string{"sshd", "CR-2.5"}, expectErr: ErrMisplacedControl},
		{name: "two controls", tags: []string{"CR-2.5", "CR-2.6"}, expectErr: ErrAmbiguousControl},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseControlID(tt.tags)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Empty(t, id)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedID, id)
		})
	}
}

func TestIsControlID(t *testing.T) {
	tests := []struct {
		tag      string
		expected bool
	}{
		{tag: "CR-1.1", expected: true},
		{tag: "SC-13", expected: true},
		{tag: "ac-2(1)(2)", expected: true},
		{tag: "CR-2.1-RE1", expected: true},
		{tag: "SR-1.1-RE-1", expected: true},
		{tag: "CR-2.1_RE1", expected: true},
		{tag: "CR 2.1 RE(1)", expected: true},
		{tag: "cr-2.1-re2", expected: true},
		{tag: "CR-2.1-RE", expected: false},
		{tag: "CR-2.1-XY1", expected: false},
		{tag: "CR-", expected: false},
		{tag: "CR-1.", expected: false},
		{tag: "1-2", expected: false},
		{tag: "always", expected: false},
		{tag: "CR-1.1 ", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsControlID(tt.tag))
		})
	}
}
