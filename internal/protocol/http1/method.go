package http1

// Method is a request method recognised on the request line.
type Method uint8

const (
	MethodInvalid Method = iota
	MethodGet
	MethodPost
	MethodHead
	MethodOptions
	MethodPut
	MethodPatch
	MethodDelete
	MethodConnect
	MethodTrace
)

var methodNames = [...]string{
	MethodInvalid: "N/A",
	MethodGet:     "GET",
	MethodPost:    "POST",
	MethodHead:    "HEAD",
	MethodOptions: "OPTIONS",
	MethodPut:     "PUT",
	MethodPatch:   "PATCH",
	MethodDelete:  "DELETE",
	MethodConnect: "CONNECT",
	MethodTrace:   "TRACE",
}

// SupportedMethods is the fixed list advertised in the Allow header.
var SupportedMethods = []Method{MethodGet, MethodHead, MethodOptions}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return methodNames[MethodInvalid]
}

// Supported reports whether the server answers m with something other than 405.
func (m Method) Supported() bool {
	for _, s := range SupportedMethods {
		if m == s {
			return true
		}
	}
	return false
}

// lookupMethod matches token case-sensitively against the known methods.
func lookupMethod(token string) Method {
	for m := MethodGet; m <= MethodTrace; m++ {
		if methodNames[m] == token {
			return m
		}
	}
	return MethodInvalid
}
