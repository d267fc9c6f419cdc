package errors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
)

// Problem type URIs (RFC 7807)
const (
	TypeValidation  = "/errors/validation"
	TypeNotFound    = "/errors/not-found"
	TypeRateLimit   = "/errors/rate-limit"
	TypeInternal    = "/errors/internal"
	TypeServiceDown = "/errors/service-unavailable"
	TypeTimeout     = "/errors/timeout"
	TypeNoData      = "/errors/data/empty"
	TypeStorage     = "/errors/storage"
)

var problemTypeByCode = map[string]string{
	CodeValidation:  TypeValidation,
	CodeNotFound:    TypeNotFound,
	CodeRateLimited: TypeRateLimit,
	CodeUnavailable: TypeServiceDown,
}

var problemTypeByErrType = map[ErrorType]string{
	ErrTypeNotFound:   TypeNotFound,
	ErrTypeValidation: TypeValidation,
	ErrTypeNoData:     TypeNoData,
	ErrTypeStorage:    TypeStorage,
}

// ProblemDetails is the body of every error response
type ProblemDetails struct {
	Type     string
	Title    string
	Status   int
	Detail   string
	Instance string

	// Extensions are serialized as top-level members
	Extensions map[string]any
}

// NewProblemDetails builds a problem; title defaults to the status text
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	if title == "" {
		title = http.StatusText(status)
	}
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: map[string]any{},
	}
}

// WithExtension sets an extension member and returns pd
func (pd *ProblemDetails) WithExtension(key string, value any) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// Render implements render.Renderer
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(pd.Extensions)+5)
	for k, v := range pd.Extensions {
		m[k] = v
	}
	m["type"], m["title"], m["status"] = pd.Type, pd.Title, pd.Status
	if pd.Detail != "" {
		m["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		m["instance"] = pd.Instance
	}
	return json.Marshal(m)
}
