package httpapi

import (
	"log"
	"net/http"

	"github.com/jonboulle/clockwork"
)

// statusRecorder remembers the first status written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	return sr.ResponseWriter.Write(b)
}

// requestLogger logs one line per request: status, method, client, path and
// duration.
type requestLogger struct {
	next  http.Handler
	clock clockwork.Clock
}

func (rl *requestLogger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := rl.clock.Now()
	rec := &statusRecorder{ResponseWriter: w}
	rl.next.ServeHTTP(rec, r)

	status := rec.status
	if status == 0 {
		status = http.StatusOK
	}
	client := r.RemoteAddr
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		client = fwd
	}
	log.Printf("[http] %d %s %s %s (%v)", status, r.Method, client, r.URL.Path, rl.clock.Since(start))
}
