package devserver

import (
	"log"
	"net/http"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func withLogging(logger *log.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Printf("REQ [%d] %s %s Origin=%q From=%s", sw.status, r.Method, r.URL.String(), r.Header.Get("Origin"), r.RemoteAddr)
		if sc := sw.Header().Get("Set-Cookie"); sc != "" {
			logger.Printf("HDR Set-Cookie: %s", sc)
		}
	})
}
