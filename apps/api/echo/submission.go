package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/submitly/backend/core"
	"github.com/submitly/backend/core/review"
	"github.com/submitly/backend/core/submission"
)

// multipart bodies hold both files plus the form fields
var submitBodyLimit = "40M"

type submissionApi struct {
	svc       *submission.Service
	reviewSvc *review.Service
	validator *core.Validator
}

func registerSubmissionAPI(
	g *echo.Group,
	jwt, limiter echo.MiddlewareFunc,
	svc *submission.Service,
	reviewSvc *review.Service,
	v *core.Validator,
) {
	api := submissionApi{svc: svc, reviewSvc: reviewSvc, validator: v}

	// public intake
	g.POST("/submissions", api.submit, limiter, middleware.BodyLimit(submitBodyLimit))

	// back-office
	ag := g.Group("/admin/submissions", jwt, adminMiddleware())
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.PATCH("/:id", api.updateStatus)
	ag.POST("/:id/complete", api.complete)
	ag.POST("/:id/email", api.sendUpdate)
	ag.GET("/:id/reviews", api.queryReviews)
}

// Handlers

func (api *submissionApi) submit(ctx echo.Context) error {
	assignment, err := readFormFile(ctx, submission.AssignmentFilePolicy.Field, submission.AssignmentFilePolicy.MaxSize)
	if err != nil {
		return err
	}
	proof, err := readFormFile(ctx, submission.PaymentProofPolicy.Field, submission.PaymentProofPolicy.MaxSize)
	if err != nil {
		return err
	}
	ns, deadlineErr := bindNewSubmission(ctx)

	sub, err := api.svc.Submit(ctx.Request().Context(), ns, assignment, proof)
	if err != nil && deadlineErr != nil {
		if vErr, ok := err.(*core.ValidationError); ok {
			replaceFieldError(vErr, *deadlineErr)
		}
	}
	warning, err := splitWarning(err)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, SubmissionResponse{Submission: sub, Warning: warning})
}

func (api *submissionApi) query(ctx echo.Context) error {
	filter := new(submission.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []submission.Submission{})
	}
	if filter.Status != "" {
		status, err := submission.ParseStatus(string(filter.Status), true /* allowLegacy */)
		if err != nil {
			return err
		}
		filter.Status = status
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, submission.OrderingFields)

	subs, err := api.svc.ListAll(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *submissionApi) retrieve(ctx echo.Context) error {
	sub, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) updateStatus(ctx echo.Context) error {
	var data UpdateStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatusRequest")
	}
	// an unknown submission wins over a bad status
	if _, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "getting submission")
	}
	// older admin clients still send in-progress and completed
	status, err := submission.ParseStatus(data.Status, true /* allowLegacy */)
	if err != nil {
		return err
	}

	sub, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), status, data.Notes)
	warning, err := splitWarning(err)
	if err != nil {
		return errors.Wrap(err, "updating submission status")
	}
	return ctx.JSON(http.StatusOK, SubmissionResponse{Submission: sub, Warning: warning})
}

func (api *submissionApi) complete(ctx echo.Context) error {
	sub, err := api.svc.Complete(ctx.Request().Context(), ctx.Param("id"))
	warning, err := splitWarning(err)
	if err != nil {
		return errors.Wrap(err, "completing submission")
	}
	return ctx.JSON(http.StatusOK, SubmissionResponse{Submission: sub, Warning: warning})
}

func (api *submissionApi) sendUpdate(ctx echo.Context) error {
	var data SendUpdateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SendUpdateRequest")
	}
	if err := data.Validate(api.validator); err != nil {
		return err
	}

	sub, err := api.svc.SendUpdate(ctx.Request().Context(), ctx.Param("id"), data.Notes)
	warning, err := splitWarning(err)
	if err != nil {
		return errors.Wrap(err, "sending submission update")
	}
	return ctx.JSON(http.StatusOK, SubmissionResponse{Submission: sub, Warning: warning})
}

func (api *submissionApi) queryReviews(ctx echo.Context) error {
	revs, err := api.reviewSvc.ListForSubmission(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying reviews")
	}
	return ctx.JSON(http.StatusOK, revs)
}

func replaceFieldError(vErr *core.ValidationError, fErr core.FieldError) {
	for i := range vErr.Fields {
		if vErr.Fields[i].Field == fErr.Field {
			vErr.Fields[i] = fErr
			return
		}
	}
	vErr.Fields = append(vErr.Fields, fErr)
}

type (
	// SubmissionResponse is a submission, plus a warning when a notification could not be delivered.
	SubmissionResponse struct {
		submission.Submission
		Warning string `json:"warning,omitempty"`
	}

	UpdateStatusRequest struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}

	SendUpdateRequest struct {
		Notes string `json:"notes" validate:"required,max=5000"`
	}
)

func (r *SendUpdateRequest) Validate(v *core.Validator) error {
	r.Notes = core.CleanString(r.Notes)
	return v.Struct(r)
}
