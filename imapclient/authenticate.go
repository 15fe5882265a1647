package imapclient

import (
	"fmt"

	"github.com/emersion/go-sasl"

	"github.com/anvik-dev/imapwire"
	"github.com/anvik-dev/imapwire/internal/authmech"
)

// Authenticate sends an AUTHENTICATE command, driving saslClient through the
// continuation-request/response exchange until it completes.
//
// Unlike other commands, this method blocks until the SASL exchange
// finishes.
func (c *Client) Authenticate(saslClient sasl.Client) error {
	mech, initialResp, err := saslClient.Start()
	if err != nil {
		return err
	}

	var hasSASLIR bool
	if initialResp != nil {
		hasSASLIR = c.Caps().Has(imap.CapSASLIR)
	}

	cmd := &authenticateCommand{}
	contReq := c.registerContReq(cmd)
	enc := c.beginCommand("AUTHENTICATE", cmd)
	enc.SP().Atom(mech)
	if initialResp != nil && hasSASLIR {
		enc.SP().Atom(authmech.EncodeInitialResponse(initialResp))
		initialResp = nil
	}
	enc.flush()
	defer c.encMutex.Unlock()

	for {
		challengeStr, err := contReq.Wait()
		if err != nil {
			if err := cmd.Wait(); err != nil {
				return err
			}
			c.setState(ConnStateAuthenticated)
			return nil
		}

		if challengeStr == "" {
			if initialResp == nil {
				return fmt.Errorf("imapclient: server requested a SASL initial response we don't have")
			}
			contReq = c.registerContReq(cmd)
			if err := c.writeSASLLine(authmech.EncodeResponse(initialResp)); err != nil {
				return err
			}
			initialResp = nil
			continue
		}

		challenge, err := authmech.DecodeChallenge(challengeStr)
		if err != nil {
			return err
		}
		resp, err := saslClient.Next(challenge)
		if err != nil {
			return err
		}

		contReq = c.registerContReq(cmd)
		if err := c.writeSASLLine(authmech.EncodeResponse(resp)); err != nil {
			return err
		}
	}
}

// AuthenticateCredentials builds and runs a SASL mechanism from cred via
// Authenticate, for the common PLAIN/LOGIN/XOAUTH2/OAUTHBEARER cases that
// don't need a caller-supplied sasl.Client.
func (c *Client) AuthenticateCredentials(cred authmech.Credentials) error {
	client, err := authmech.NewClient(cred)
	if err != nil {
		return err
	}
	return c.Authenticate(client)
}

func (c *Client) writeSASLLine(line string) error {
	if _, err := c.bw.WriteString(line + "\r\n"); err != nil {
		return newIoError(err)
	}
	if err := c.bw.Flush(); err != nil {
		return newIoError(err)
	}
	return nil
}

type authenticateCommand struct {
	Command
}
