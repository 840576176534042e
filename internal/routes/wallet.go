package routes

import (
	"stellarcade-backend-go/internal/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterWalletRoutes mounts the wallet endpoints; every route runs auth before its handler.
func RegisterWalletRoutes(r gin.IRoutes, auth gin.HandlerFunc, wallet *controllers.WalletController) {
	r.POST("/deposit", auth, wallet.Deposit)
	r.POST("/withdraw", auth, wallet.Withdraw)
	r.GET("/balances", auth, wallet.Balances)
	r.GET("/transactions", auth, wallet.History)
}
