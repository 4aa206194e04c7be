package wallet

import (
	"regexp"
	"testing"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var addressRe = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

func TestConnector_ConnectDisconnect(t *testing.T) {
	st := store.NewMemoryStore()
	c := NewConnector(st, nil)
	assert.False(t, c.IsConnected())
	assert.Empty(t, c.Account())

	account := c.Connect()
	assert.True(t, c.IsConnected())
	assert.Regexp(t, addressRe, account)
	assert.Equal(t, account[:4]+"..."+account[38:], c.ShortAccount())

	assert.Equal(t, account, c.Connect(), "connect is idempotent")
	assert.Equal(t, account, NewConnector(st, nil).Account(), "state is persisted")

	c.Disconnect()
	assert.False(t, c.IsConnected())
	assert.False(t, NewConnector(st, nil).IsConnected())
}

func TestConnector_IgnoresBrokenState(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(store.KeyWallet, map[string]any{"connected": true}))
	assert.False(t, NewConnector(st, nil).IsConnected())

	st.SetRaw(store.KeyWallet, []byte("???"))
	assert.False(t, NewConnector(st, nil).IsConnected())
}

func TestShortAccount_Short(t *testing.T) {
	c := NewConnector(store.NewMemoryStore(), nil)
	assert.Equal(t, "", c.ShortAccount())
}
