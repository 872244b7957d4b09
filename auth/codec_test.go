package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBasicRoundTrip(t *testing.T) {
	cases := []DecodedCredential{
		{Identifier: "u1", Secret: "pw1"},
		{Identifier: "bob@example.com", Secret: "with:colons:inside"},
		{Identifier: "", Secret: ""},
		{Identifier: "ünï", Secret: "çødé"},
		{Identifier: "x", Secret: ":"},
	}
	for _, want := range cases {
		got, err := DecodeBasic(EncodeBasic(want.Identifier, want.Secret))
		require.NoError(t, err, "%+v", want)
		assert.Equal(t, want, got)
	}
}

func TestDecodeBasicSplitsOnFirstColon(t *testing.T) {
	h := "Basic " + base64.StdEncoding.EncodeToString([]byte("a:b:c"))
	got, err := DecodeBasic(h)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Identifier)
	assert.Equal(t, "b:c", got.Secret)
}

func TestDecodeBasicRejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   error
		kind   DecodeErrorKind
	}{
		{"empty", "", ErrSchemeMismatch, SchemeMismatch},
		{"bearer", "Bearer abc", ErrSchemeMismatch, SchemeMismatch},
		{"lowercase scheme", "basic " + base64.StdEncoding.EncodeToString([]byte("a:b")), ErrSchemeMismatch, SchemeMismatch},
		{"no space", "Basic" + base64.StdEncoding.EncodeToString([]byte("a:b")), ErrSchemeMismatch, SchemeMismatch},
		{"bad base64", "Basic !!!not-base64", ErrMalformedEncoding, MalformedEncoding},
		{"invalid utf8", "Basic " + base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, ':', 'x'}), ErrMalformedEncoding, MalformedEncoding},
		{"no separator", "Basic " + base64.StdEncoding.EncodeToString([]byte("nocolon")), ErrMissingSeparator, MissingSeparator},
		{"empty payload", "Basic ", ErrMissingSeparator, MissingSeparator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBasic(tt.header)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.kind, de.Kind)
		})
	}
}
