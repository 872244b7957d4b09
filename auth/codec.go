package auth

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

const basicPrefix = "Basic "

// DecodedCredential is the clear-text pair carried by a Basic header.
type DecodedCredential struct {
	Identifier string
	Secret     string
}

// DecodeBasic decodes an Authorization header value of the form
// "Basic base64(identifier:secret)". The prefix is case-sensitive and the
// pair is split on the first ':' only, so secrets may contain ':'.
func DecodeBasic(header string) (DecodedCredential, error) {
	if !strings.HasPrefix(header, basicPrefix) {
		return DecodedCredential{}, &DecodeError{Kind: SchemeMismatch}
	}
	raw, err := base64.StdEncoding.DecodeString(header[len(basicPrefix):])
	if err != nil {
		return DecodedCredential{}, &DecodeError{Kind: MalformedEncoding, Err: err}
	}
	if !utf8.Valid(raw) {
		return DecodedCredential{}, &DecodeError{Kind: MalformedEncoding}
	}
	id, secret, ok := strings.Cut(string(raw), ":")
	if !ok {
		return DecodedCredential{}, &DecodeError{Kind: MissingSeparator}
	}
	return DecodedCredential{Identifier: id, Secret: secret}, nil
}

// EncodeBasic builds the header value DecodeBasic accepts.
func EncodeBasic(identifier, secret string) string {
	return basicPrefix + base64.StdEncoding.EncodeToString([]byte(identifier+":"+secret))
}
