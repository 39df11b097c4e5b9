package domain

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_EncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		key  *Key
	}{
		{"profile", NewProfileKey("alice-id")},
		{"conference", NewConferenceKey("alice-id", 5)},
		{"session", NewSessionKey(NewConferenceKey("alice-id", 5), 9)},
		{"user id with slash", NewConferenceKey("accounts.google.com/123", 5)},
		{"user id shaped like a path", NewConferenceKey("x/Conference:i7", 5)},
		{"user id with percent and colon", NewProfileKey("a%2Fb:c d")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeKey(tt.key.Encode())
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.key), "decoded %s, want %s", got, tt.key)
			assert.Equal(t, tt.key.Root().Name, got.Root().Name)
		})
	}
}

func TestKey_SlashInUserIDKeepsAncestorChain(t *testing.T) {
	got, err := DecodeKind(NewConferenceKey("x/Conference:i7", 5).Encode(), KindConference)
	require.NoError(t, err)

	assert.Equal(t, int64(5), got.ID)
	require.NotNil(t, got.Parent)
	assert.Equal(t, KindProfile, got.Parent.Kind)
	assert.Equal(t, "x/Conference:i7", got.Parent.Name)
	assert.Nil(t, got.Parent.Parent)
}

func TestDecodeKey_Malformed(t *testing.T) {
	enc := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

	for _, websafe := range []string{
		"",
		"!!not-base64!!",
		enc("Profile"),
		enc("Profile:s"),
		enc("Conference:i0"),
		enc("Conference:iabc"),
		enc("Profile:x1"),
		enc("Profile:s%zz"),
	} {
		_, err := DecodeKey(websafe)
		assert.ErrorIs(t, err, ErrInvalidKey, "websafe %q", websafe)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestDecodeKind(t *testing.T) {
	conf := NewConferenceKey("alice-id", 5)

	_, err := DecodeKind(conf.Encode(), KindSession)
	assert.ErrorIs(t, err, ErrInvalidKey)

	got, err := DecodeKind(conf.Encode(), KindConference)
	require.NoError(t, err)
	assert.True(t, got.Equal(conf))
}

func TestDecodeProfileKey(t *testing.T) {
	got, err := DecodeProfileKey(NewProfileKey("alice-id").Encode())
	require.NoError(t, err)
	assert.Equal(t, "alice-id", got.Name)

	nested := &Key{Parent: NewProfileKey("bob-id"), Kind: KindProfile, Name: "alice-id"}
	_, err = DecodeProfileKey(nested.Encode())
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = DecodeProfileKey(NewConferenceKey("alice-id", 1).Encode())
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestKey_HasAncestor(t *testing.T) {
	conf := NewConferenceKey("alice-id", 5)
	session := NewSessionKey(conf, 9)

	assert.True(t, session.HasAncestor(conf))
	assert.True(t, session.HasAncestor(NewProfileKey("alice-id")))
	assert.False(t, session.HasAncestor(NewConferenceKey("alice-id", 6)))
	assert.False(t, conf.HasAncestor(conf))
}
