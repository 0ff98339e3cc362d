package exobase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// HeaderRequestID carries the request ID in and out of the HTTP adapter.
const HeaderRequestID = "X-Request-Id"

// DefaultMaxBodyBytes caps how much of a request body is read into Props.
const DefaultMaxBodyBytes int64 = 1 << 20

// ErrBodyTooLarge is returned when a request body exceeds the configured cap.
var ErrBodyTooLarge = errors.New("request body too large")

// HTTPHandler serves an exobase Handler over net/http.
type HTTPHandler struct {
	endpoint     Handler
	logger       Logger
	maxBodyBytes int64
}

// NewHTTPHandler adapts endpoint, usually a composed hook chain, to
// http.Handler.
//
// Example:
//
//	h, err := exobase.NewHTTPHandler(
//	    exobase.Compose(cors.UseCors(nil), auth)(endpoint),
//	    exobase.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.Handle("/api/", h)
func NewHTTPHandler(endpoint Handler, opts ...Option) (*HTTPHandler, error) {
	if endpoint == nil {
		return nil, ErrHandlerNil
	}

	h := &HTTPHandler{
		endpoint:     endpoint,
		maxBodyBytes: DefaultMaxBodyBytes,
	}

	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return h, nil
}

// ServeHTTP builds Props from r, runs the endpoint and writes the Response.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := RequestFromHTTP(r, h.maxBodyBytes)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("failed to read request",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path)
		}
		status := http.StatusBadRequest
		if errors.Is(err, ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		res := Response{
			Status:  status,
			Headers: map[string]string{HeaderRequestID: req.ID},
			Body:    ErrorBody{Status: status, Message: http.StatusText(status)},
		}
		h.write(w, res)
		return
	}

	if h.logger != nil {
		h.logger.Debug("handling request",
			"request_id", req.ID,
			"method", req.Method,
			"path", req.Path)
	}

	result, err := h.endpoint(r.Context(), NewProps(req))
	res := NewResponse(err, result)
	if err != nil && h.logger != nil {
		h.logger.Warn("request failed",
			"request_id", req.ID,
			"error", err,
			"key", ErrorKey(err),
			"status", res.Status)
	}

	h.write(w, res.WithHeaders(map[string]string{HeaderRequestID: req.ID}))
}

func (h *HTTPHandler) write(w http.ResponseWriter, res Response) {
	if err := WriteResponse(w, res); err != nil && h.logger != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// RequestFromHTTP converts r into a Request. Header names are lower-cased
// and repeated values joined with ", ". At most maxBodyBytes of the body are
// read; a larger body yields ErrBodyTooLarge. The body is restored on r so
// later handlers can read it again.
func RequestFromHTTP(r *http.Request, maxBodyBytes int64) (Request, error) {
	req := Request{
		ID:      r.Header.Get(HeaderRequestID),
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   make(map[string]string, len(r.URL.Query())),
		Headers: make(map[string]string, len(r.Header)),
		IP:      remoteIP(r.RemoteAddr),
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	for name, values := range r.Header {
		req.Headers[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	for name, values := range r.URL.Query() {
		if len(values) > 0 {
			req.Query[name] = values[0]
		}
	}

	if r.Body == nil || r.Body == http.NoBody {
		return req, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return req, fmt.Errorf("reading request body: %w", err)
	}
	if int64(len(body)) > maxBodyBytes {
		return req, ErrBodyTooLarge
	}
	req.Body = body
	r.Body = io.NopCloser(bytes.NewReader(body))

	return req, nil
}

// WriteResponse writes res to w. String and []byte bodies are written as is;
// any other non-nil body is encoded as JSON.
func WriteResponse(w http.ResponseWriter, res Response) error {
	for name, value := range res.Headers {
		w.Header().Set(name, value)
	}

	var payload []byte
	switch body := res.Body.(type) {
	case nil:
	case []byte:
		payload = body
	case string:
		payload = []byte(body)
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return fmt.Errorf("encoding response body: %w", err)
		}
		payload = encoded
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
	}

	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
