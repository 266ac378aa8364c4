package security

import (
	"bytes"
	"io"
	"net/http"

	"github.com/noah-isme/quotepay/internal/common"
)

// BodyLimit rejects request bodies larger than Max bytes with 413.
type BodyLimit struct {
	Max int64
}

func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	if b.Max <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Body == http.NoBody {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > b.Max {
			tooLarge(w)
			return
		}
		buf, err := io.ReadAll(io.LimitReader(r.Body, b.Max+1))
		_ = r.Body.Close()
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
			return
		}
		if int64(len(buf)) > b.Max {
			tooLarge(w)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(buf))
		r.ContentLength = int64(len(buf))
		next.ServeHTTP(w, r)
	})
}

func tooLarge(w http.ResponseWriter) {
	common.JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request entity too large", nil)
}
