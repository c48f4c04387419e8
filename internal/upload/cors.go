package upload

import "net/http"

const (
	allowedMethods  = "POST, OPTIONS"
	preflightMaxAge = "86400"
)

// PreflightHeaders returns the headers answering a CORS preflight.
// A probe missing any of Origin, Access-Control-Request-Method or
// Access-Control-Request-Headers only gets an Allow header.
func PreflightHeaders(req http.Header) http.Header {
	origin := req.Get("Origin")
	method := req.Get("Access-Control-Request-Method")
	headers := req.Get("Access-Control-Request-Headers")

	if origin == "" || method == "" || headers == "" {
		return http.Header{"Allow": {allowedMethods}}
	}

	return http.Header{
		"Access-Control-Allow-Origin":  {"*"},
		"Access-Control-Allow-Methods": {allowedMethods},
		"Access-Control-Allow-Headers": {headers},
		"Access-Control-Max-Age":       {preflightMaxAge},
	}
}

func writePreflight(w http.ResponseWriter, r *http.Request) {
	for k, v := range PreflightHeaders(r.Header) {
		w.Header()[k] = v
	}
	w.WriteHeader(http.StatusOK)
}
