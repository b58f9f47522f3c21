package csrf

import "net/http"

// Check verifies the nonce and token submitted with r. Only the two CSRF
// fields are read from the form. A nil Authenticator rejects every request.
func Check(r *http.Request, a *Authenticator) bool {
	if a == nil {
		return false
	}
	return a.Verify(r.PostFormValue(FieldNonce), r.PostFormValue(FieldToken))
}

// Observer is notified of every check performed by Guard.
type Observer func(r *http.Request, ok bool)

type guardConfig struct {
	failure  http.Handler
	observer Observer
}

// GuardOption configures Guard.
type GuardOption func(*guardConfig)

// WithFailureHandler replaces the default 403 response for rejected requests.
func WithFailureHandler(h http.Handler) GuardOption {
	return func(c *guardConfig) {
		if h != nil {
			c.failure = h
		}
	}
}

// WithObserver registers a callback invoked with the outcome of each check.
func WithObserver(o Observer) GuardOption {
	return func(c *guardConfig) {
		c.observer = o
	}
}

func forbidden(w http.ResponseWriter, r *http.Request) {
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

// Guard rejects unsafe requests whose submitted pair does not verify.
// GET, HEAD, OPTIONS and TRACE pass through unchecked.
func Guard(a *Authenticator, opts ...GuardOption) func(http.Handler) http.Handler {
	cfg := guardConfig{failure: http.HandlerFunc(forbidden)}
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				next.ServeHTTP(w, r)
				return
			}
			ok := Check(r, a)
			if cfg.observer != nil {
				cfg.observer(r, ok)
			}
			if !ok {
				cfg.failure.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
