package submission

import (
	"fmt"
	"mime"
	"net/http"

	"github.com/pkg/errors"

	"github.com/submitly/backend/core"
)

const MiB = 1 << 20

const (
	mimePDF  = "application/pdf"
	mimeDoc  = "application/msword"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeZip  = "application/zip"
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
)

var (
	AssignmentFilePolicy = FilePolicy{
		Field:    "file",
		Required: true,
		MaxSize:  25 * MiB,
		Allowed:  []string{mimePDF, mimeDoc, mimeDocx, mimeZip, mimeJPEG, mimePNG},
	}
	PaymentProofPolicy = FilePolicy{
		Field:   "payment_proof",
		MaxSize: 10 * MiB,
		Allowed: []string{mimeJPEG, mimePNG, mimePDF},
	}

	// declared types whose content sniffs as a generic container
	sniffAliases = map[string]string{
		mimeDocx: mimeZip,
		mimeDoc:  "application/octet-stream",
	}
)

// File is an uploaded file, fully read in memory.
type File struct {
	Name        string
	ContentType string // as declared by the client
	Data        []byte
}

// FilePolicy is the size and type policy of an uploaded file.
type FilePolicy struct {
	Field    string
	Required bool
	MaxSize  int
	Allowed  []string
}

func (p FilePolicy) allows(ct string) bool {
	for _, a := range p.Allowed {
		if a == ct {
			return true
		}
	}
	return false
}

func mediaType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}

// Check validates f against the policy and returns the content type to store it with.
// f may be nil when the file was not uploaded.
func (p FilePolicy) Check(f *File) (string, *core.FieldError) {
	if f == nil || len(f.Data) == 0 {
		if p.Required {
			return "", &core.FieldError{Field: p.Field, Error: "this field is required"}
		}
		return "", nil
	}
	if len(f.Data) > p.MaxSize {
		return "", &core.FieldError{Field: p.Field, Error: fmt.Sprintf("file must be smaller than %dMB", p.MaxSize/MiB)}
	}

	sniffed := mediaType(http.DetectContentType(f.Data))
	declared := mediaType(f.ContentType)
	if declared == "" {
		declared = sniffed
	}
	invalid := &core.FieldError{Field: p.Field, Error: "file type not allowed"}
	if !p.allows(declared) {
		return "", invalid
	}
	if declared != sniffed && sniffAliases[declared] != sniffed {
		return "", invalid
	}
	return declared, nil
}

// CheckFiles applies the intake policies to an assignment file and an optional payment proof.
// Both files are checked; every violation is reported.
func CheckFiles(assignment, proof *File) error {
	var flds []core.FieldError
	if ct, fErr := AssignmentFilePolicy.Check(assignment); fErr != nil {
		flds = append(flds, *fErr)
	} else if assignment != nil {
		assignment.ContentType = ct
	}
	if ct, fErr := PaymentProofPolicy.Check(proof); fErr != nil {
		flds = append(flds, *fErr)
	} else if proof != nil {
		proof.ContentType = ct
	}
	if len(flds) > 0 {
		return core.NewValidationError(errors.New("invalid files"), flds...)
	}
	return nil
}
