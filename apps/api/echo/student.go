package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/submitly/backend/core"
	"github.com/submitly/backend/core/review"
	"github.com/submitly/backend/core/submission"
)

const msgAccessRequested = "If the email address supplied has submissions on this system, " +
	"an email will arrive in your inbox shortly with a link to your dashboard."

type studentApi struct {
	svc       *submission.Service
	reviewSvc *review.Service
	auth      *tokenAuth
	validator *core.Validator
	logger    core.Logger
}

func registerStudentAPI(
	g *echo.Group,
	jwt, limiter echo.MiddlewareFunc,
	svc *submission.Service,
	reviewSvc *review.Service,
	ta *tokenAuth,
	v *core.Validator,
	logger core.Logger,
) {
	api := studentApi{svc: svc, reviewSvc: reviewSvc, auth: ta, validator: v, logger: logger}

	sg := g.Group("/student")
	sg.POST("/access", api.requestAccess, limiter)

	// the token email is the only identity trusted here
	ag := sg.Group("", jwt, studentMiddleware())
	ag.GET("/submissions", api.querySubmissions)
	ag.POST("/reviews", api.createReview)
}

// Handlers

func (api *studentApi) requestAccess(ctx echo.Context) error {
	var data AccessRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AccessRequest")
	}
	if err := data.Validate(api.validator); err != nil {
		return err
	}

	token, err := api.auth.GenerateToken(api.auth.studentClaims(data.Email))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	if err = api.svc.SendAccessLink(ctx.Request().Context(), data.Email, token); err != nil && !core.IsNotificationFailure(err) {
		// do not reveal anything about the email
		api.logger.Error(fmt.Sprintf("sending access link: %v", err), err)
	}
	return ctx.JSON(http.StatusAccepted, SuccessResponse{Success: msgAccessRequested})
}

func (api *studentApi) querySubmissions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	subs, err := api.svc.ListByRequesterEmail(ctx.Request().Context(), claims.Email)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *studentApi) createReview(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	var data review.NewReview
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}

	rev, err := api.reviewSvc.Create(ctx.Request().Context(), claims.Email, data)
	if err != nil {
		return errors.Wrap(err, "creating review")
	}
	return ctx.JSON(http.StatusCreated, rev)
}

type (
	AccessRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
		Warning string `json:"warning,omitempty"`
	}
)

func (ar *AccessRequest) Validate(v *core.Validator) error {
	ar.Email = core.CleanString(ar.Email, true /* lower */)
	return v.Struct(ar)
}
