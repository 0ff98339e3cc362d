// Package cors provides a hook that applies CORS headers to every response
// and answers preflight requests without calling the wrapped handler.
package cors
