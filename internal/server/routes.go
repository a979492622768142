package server

import (
	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, adminSecretHash []byte, h Handlers) {
	h.Product.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e, adminSecretHash)
	h.Cart.RegisterRoutes(e)
	h.Checkout.RegisterRoutes(e)
	h.Contact.RegisterRoutes(e)
}
