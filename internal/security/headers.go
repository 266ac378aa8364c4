package security

import (
	"net/http"
	"strconv"
)

// Headers attaches response hardening headers. Payment payloads are quote
// specific, so responses are also marked non-cacheable.
type Headers struct {
	Enable                bool
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
}

func (h Headers) Middleware(next http.Handler) http.Handler {
	if !h.Enable {
		return next
	}
	hsts := ""
	if h.EnableHSTS {
		maxAge := h.HSTSMaxAge
		if maxAge <= 0 {
			maxAge = 31536000
		}
		hsts = "max-age=" + strconv.Itoa(maxAge)
		if h.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "no-referrer")
		headers.Set("Cache-Control", "no-store")
		if hsts != "" && r.TLS != nil {
			headers.Set("Strict-Transport-Security", hsts)
		}
		next.ServeHTTP(w, r)
	})
}
