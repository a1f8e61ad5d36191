package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/submitly/backend/core/pricing"
)

func registerPricingAPI(g *echo.Group) {
	pg := g.Group("/pricing")
	pg.GET("/options", pricingOptions)
	pg.POST("/estimate", estimatePrice)
}

func pricingOptions(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, pricing.Options())
}

func estimatePrice(ctx echo.Context) error {
	var in pricing.Input
	if err := ctx.Bind(&in); err != nil {
		return errors.Wrap(err, "binding to pricing.Input")
	}
	quote, err := pricing.Estimate(in)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, quote)
}
