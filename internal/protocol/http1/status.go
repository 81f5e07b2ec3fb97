package http1

// Status codes the server can emit.
const (
	StatusOK                          = 200
	StatusNoContent                   = 204
	StatusBadRequest                  = 400
	StatusForbidden                   = 403
	StatusNotFound                    = 404
	StatusMethodNotAllowed            = 405
	StatusRequestTimeout              = 408
	StatusContentTooLarge             = 413
	StatusTeapot                      = 418
	StatusRequestHeaderFieldsTooLarge = 431
	StatusInternalServerError         = 500
	StatusHTTPVersionNotSupported     = 505
)

var statusText = map[int]string{
	StatusOK:                          "OK",
	StatusNoContent:                   "No Content",
	StatusBadRequest:                  "Bad Request",
	StatusForbidden:                   "Forbidden",
	StatusNotFound:                    "Not Found",
	StatusMethodNotAllowed:            "Method Not Allowed",
	StatusRequestTimeout:              "Request Timeout",
	StatusContentTooLarge:             "Content Too Large",
	StatusTeapot:                      "I'm a teapot",
	StatusRequestHeaderFieldsTooLarge: "Request Header Fields Too Large",
	StatusInternalServerError:         "Internal Server Error",
	StatusHTTPVersionNotSupported:     "HTTP Version Not Supported",
}

// StatusText returns the reason phrase for code, or "" if the server never
// sends it.
func StatusText(code int) string {
	return statusText[code]
}
