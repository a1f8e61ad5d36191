package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/submitly/backend/core/review"
)

const maxTopReviews = 20

type reviewApi struct {
	svc *review.Service
}

func registerReviewAPI(g *echo.Group, svc *review.Service) {
	api := reviewApi{svc: svc}
	g.GET("/reviews/top", api.top)
}

// top lists the testimonials shown on the landing page. ?limit= defaults to 3.
func (api *reviewApi) top(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	if limit > maxTopReviews {
		limit = maxTopReviews
	}
	revs, err := api.svc.Top(ctx.Request().Context(), limit)
	if err != nil {
		return errors.Wrap(err, "querying top reviews")
	}
	if revs == nil {
		revs = []review.TopReview{}
	}
	return ctx.JSON(http.StatusOK, revs)
}
