// Package wallet is a stand-in for a browser wallet extension. Connecting
// produces a made-up address; nothing here talks to a chain.
package wallet

import (
	"encoding/hex"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/store"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

type state struct {
	Connected bool   `json:"connected"`
	Account   string `json:"account,omitempty"`
}

// Connector owns the wallet key. It is independent from the session: logging
// out leaves the wallet as it was.
type Connector struct {
	store store.Store
	log   hclog.Logger
	st    state
}

func NewConnector(st store.Store, log hclog.Logger) *Connector {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	c := &Connector{store: st, log: log}
	var saved state
	if st.Get(store.KeyWallet, &saved) && saved.Connected && saved.Account != "" {
		c.st = saved
	}
	return c
}

func (c *Connector) IsConnected() bool { return c.st.Connected }

func (c *Connector) Account() string { return c.st.Account }

// ShortAccount renders the account the way the navbar does: 0x12...cdef.
func (c *Connector) ShortAccount() string {
	a := c.st.Account
	if len(a) <= 8 {
		return a
	}
	return a[:4] + "..." + a[len(a)-4:]
}

// Connect returns the existing account when already connected.
func (c *Connector) Connect() string {
	if c.st.Connected {
		return c.st.Account
	}
	c.st = state{Connected: true, Account: newAccount()}
	if err := c.store.Set(store.KeyWallet, c.st); err != nil {
		c.log.Warn("wallet state not persisted", "error", err)
	}
	return c.st.Account
}

func (c *Connector) Disconnect() {
	c.st = state{}
	if err := c.store.Remove(store.KeyWallet); err != nil {
		c.log.Warn("wallet key not cleared", "error", err)
	}
}

func newAccount() string {
	a, b := uuid.New(), uuid.New()
	raw := append(a[:], b[:4]...)
	return "0x" + hex.EncodeToString(raw)
}
