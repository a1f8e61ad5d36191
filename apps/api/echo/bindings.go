package echoapi

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/submitly/backend/core"
	"github.com/submitly/backend/core/submission"
)

var (
	orderingParam = "ordering"

	// accepted deadline layouts; the ones without a zone are read as UTC
	deadlineLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

	genericContentTypes = map[string]bool{"": true, "application/octet-stream": true}
)

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads the ordering query param (eg. "-created_at,status"), keeping the allowed fields only.
func (ord *Ordering) Bind(ctx echo.Context, allowed map[string]string) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}
	ord.Orderings = core.ParseOrdering(val, allowed)
}

func parseDeadline(val string) (time.Time, bool) {
	val = core.CleanString(val)
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// bindNewSubmission reads the submission fields of a multipart form.
// An unreadable deadline is left zero; the returned FieldError explains it better than "required".
func bindNewSubmission(ctx echo.Context) (submission.NewSubmission, *core.FieldError) {
	ns := submission.NewSubmission{
		RequesterName:  ctx.FormValue("name"),
		RequesterEmail: ctx.FormValue("email"),
		RequesterPhone: ctx.FormValue("phone"),
		Title:          ctx.FormValue("title"),
		SubjectArea:    ctx.FormValue("subject_area"),
		Category:       ctx.FormValue("category"),
		Description:    ctx.FormValue("description"),
	}
	if raw := ctx.FormValue("deadline"); raw != "" {
		deadline, ok := parseDeadline(raw)
		if !ok {
			return ns, &core.FieldError{Field: "deadline", Error: "deadline must be a date, eg. 2024-05-01T17:00"}
		}
		ns.Deadline = deadline
	}
	return ns, nil
}

// readFormFile reads an uploaded file, at most limit+1 bytes so an oversized file is still detected.
// It returns nil when the field is absent.
func readFormFile(ctx echo.Context, field string, limit int) (*submission.File, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		switch errors.Cause(err) {
		case http.ErrMissingFile:
			return nil, nil
		case http.ErrNotMultipart:
			return nil, errNotMultipart
		}
		return nil, errors.Wrapf(err, "reading %s", field)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", field)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(limit)+1))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", field)
	}

	ct := fh.Header.Get(echo.HeaderContentType)
	if genericContentTypes[ct] {
		ct = "" // let the content decide
	}
	return &submission.File{Name: fh.Filename, ContentType: ct, Data: data}, nil
}
