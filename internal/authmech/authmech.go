// Package authmech builds the go-sasl client for each AUTHENTICATE
// mechanism the engine supports, and provides the base64 helpers that
// imapclient.Authenticate uses for the client-response exchange.
package authmech

import (
	"encoding/base64"
	"fmt"

	"github.com/emersion/go-sasl"
)

// Credentials selects and parametrizes a SASL mechanism for AUTHENTICATE.
type Credentials struct {
	Mechanism string // "PLAIN", "LOGIN", "OAUTHBEARER", or "XOAUTH2"
	Username  string
	Password  string
	Token     string // OAuth2 bearer token, for XOAUTH2 and OAUTHBEARER
	Identity  string // authorization identity, for PLAIN
}

// NewClient builds the go-sasl client.Client for c.Mechanism.
func NewClient(c Credentials) (sasl.Client, error) {
	switch c.Mechanism {
	case sasl.Plain:
		return sasl.NewPlainClient(c.Identity, c.Username, c.Password), nil
	case sasl.Login:
		return sasl.NewLoginClient(c.Username, c.Password), nil
	case sasl.OAuthBearer:
		return sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{
			Username: c.Username,
			Token:    c.Token,
		}), nil
	case "XOAUTH2":
		return &xoauth2Client{username: c.Username, token: c.Token}, nil
	default:
		return nil, fmt.Errorf("authmech: unsupported mechanism %q", c.Mechanism)
	}
}

// xoauth2Client implements XOAUTH2, which go-sasl has no client for. The
// initial response is "user=" user ^A "auth=Bearer " token ^A ^A.
type xoauth2Client struct {
	username, token string
}

func (a *xoauth2Client) Start() (mech string, ir []byte, err error) {
	return "XOAUTH2", []byte("user=" + a.username + "\x01auth=Bearer " + a.token + "\x01\x01"), nil
}

// Next answers the server's error challenge with an empty response, after
// which the server completes the command with NO.
func (a *xoauth2Client) Next(challenge []byte) ([]byte, error) {
	return []byte{}, nil
}

// EncodeInitialResponse base64-encodes a SASL initial response for the
// AUTHENTICATE command's optional inline form, or returns "=" when ir is
// empty but non-nil, per RFC 4959's SASL-IR convention.
func EncodeInitialResponse(ir []byte) string {
	if ir == nil {
		return ""
	}
	if len(ir) == 0 {
		return "="
	}
	return base64.StdEncoding.EncodeToString(ir)
}

// DecodeChallenge decodes a base64 continuation payload sent by the server
// mid-exchange.
func DecodeChallenge(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// EncodeResponse base64-encodes a client response to a server challenge.
func EncodeResponse(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
