package handler

import (
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/middleware"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/wallet"

	"github.com/gin-gonic/gin"
)

func walletBody(w *wallet.Connector) util.Response {
	return util.Response{
		"connected": w.IsConnected(),
		"account":   w.Account(),
		"short":     w.ShortAccount(),
	}
}

func GetWallet(c *gin.Context) {
	s, ok := scopeOf(c)
	if !ok {
		return
	}
	util.Success(c, walletBody(s.Wallet))
}

// ConnectWallet attaches a mock account; connecting twice keeps the first one.
func ConnectWallet(c *gin.Context) {
	s, ok := scopeOf(c)
	if !ok {
		return
	}
	if !s.Wallet.IsConnected() {
		middleware.Describe(c, middleware.KindWallet, "wallet connected")
	}
	s.Wallet.Connect()
	util.Success(c, walletBody(s.Wallet))
}

func DisconnectWallet(c *gin.Context) {
	s, ok := scopeOf(c)
	if !ok {
		return
	}
	if s.Wallet.IsConnected() {
		middleware.Describe(c, middleware.KindWallet, "wallet disconnected")
	}
	s.Wallet.Disconnect()
	util.Success(c, walletBody(s.Wallet))
}
