package http

import "net/http"

// Request input ceilings. The body limit is tight because the largest
// legitimate payload is a push subscription, well under a kilobyte; the
// Authorization limit leaves ample headroom over typical JWT sizes.
const (
	maxAuthHeaderBytes = 8192
	maxPathBytes       = 2048
	maxBodyBytes       = 1 << 20
)

// InputValidation returns middleware that rejects oversized request inputs
// before they reach a handler.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.Header.Get("Authorization")) > maxAuthHeaderBytes {
				rejectJSON(w, http.StatusBadRequest, `{"error":"authorization header too large"}`)
				return
			}
			if len(r.URL.Path) > maxPathBytes {
				rejectJSON(w, http.StatusRequestURITooLong, `{"error":"URI too long"}`)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func rejectJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
