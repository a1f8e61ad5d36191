package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/submitly/backend/core/contact"
)

const msgContactReceived = "Thank you for your message. We will get back to you within 24 hours."

type contactApi struct {
	svc *contact.Service
}

func registerContactAPI(g *echo.Group, limiter echo.MiddlewareFunc, svc *contact.Service) {
	api := contactApi{svc: svc}
	g.POST("/contact", api.send, limiter)
}

func (api *contactApi) send(ctx echo.Context) error {
	var msg contact.Message
	if err := ctx.Bind(&msg); err != nil {
		return errors.Wrap(err, "binding to contact.Message")
	}
	warning, err := splitWarning(api.svc.Send(ctx.Request().Context(), msg))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: msgContactReceived, Warning: warning})
}
