package exobase

import (
	"errors"
	"net/http"
)

// ErrorBody is the JSON body written for error responses.
type ErrorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Key     string `json:"key,omitempty"`
}

// NewResponse maps the outcome of a handler into a Response.
//
// A non-nil err always wins. An *Error keeps its status, message and key;
// any other error becomes an opaque 500. A Response (or *Response) result is
// returned as is, and any other result becomes the body of a 200 response.
func NewResponse(err error, result any) Response {
	if err != nil {
		return errorResponse(err)
	}

	switch r := result.(type) {
	case Response:
		if r.Headers == nil {
			r.Headers = map[string]string{}
		}
		return r
	case *Response:
		if r == nil {
			return DefaultResponse()
		}
		return NewResponse(nil, *r)
	}

	res := DefaultResponse()
	if result != nil {
		res.Body = result
	}
	return res
}

func errorResponse(err error) Response {
	var e *Error
	if !errors.As(err, &e) {
		return Response{
			Status:  http.StatusInternalServerError,
			Headers: map[string]string{},
			Body: ErrorBody{
				Status:  http.StatusInternalServerError,
				Message: "Unknown Error",
			},
		}
	}

	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return Response{
		Status:  status,
		Headers: map[string]string{},
		Body: ErrorBody{
			Status:  status,
			Message: e.Message,
			Key:     e.Key,
		},
	}
}
