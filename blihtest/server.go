package blihtest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/vitalvas/blih/envelope"
)

// Request is what the fake service saw of one incoming request.
type Request struct {
	Method      string
	Path        string
	User        string
	Signature   string
	HasData     bool
	RequestID   string
	UserAgent   string
	ContentType string
	Body        []byte
}

// Repository is a repository held by the fake service.
type Repository struct {
	Name    string
	Owner   string
	Type    string
	UUID    string
	Created time.Time

	// ACL maps user names to rights ("r", "w", "rw").
	ACL map[string]string
}

type fault struct {
	status int
	body   []byte
}

// Server is a running fake service.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	resolve  envelope.TokenResolver
	repos    map[repoKey]*Repository
	keys     map[string]map[string]string
	requests []Request
	faults   []fault
}

type repoKey struct {
	owner string
	name  string
}

// NewServer starts a fake service that accepts the given users, each
// mapped to their passphrase.
func NewServer(users map[string]string) *Server {
	s := &Server{
		resolve: envelope.MapResolver(users),
		repos:   make(map[repoKey]*Repository),
		keys:    make(map[string]map[string]string),
	}

	s.Server = httptest.NewServer(s.Handler())

	return s
}

// Handler returns the service's HTTP handler without starting a listener.
func (s *Server) Handler() http.Handler {
	auth, err := envelope.Middleware(envelope.MiddlewareConfig{
		Verify: envelope.VerifyConfig{Resolver: s.resolve},
		OnError: func(w http.ResponseWriter, _ *http.Request, _ error) {
			writeError(w, http.StatusUnauthorized, "Bad token")
		},
	})
	if err != nil {
		panic(err)
	}

	r := mux.NewRouter()
	r.Use(recoveryMiddleware, requestIDMiddleware, s.recordMiddleware, s.faultMiddleware, contentTypeMiddleware, auth)

	r.HandleFunc("/repositories", s.createRepository).Methods(http.MethodPost)
	r.HandleFunc("/repositories", s.listRepositories).Methods(http.MethodGet)
	r.HandleFunc("/repository/{name}", s.repositoryInfo).Methods(http.MethodGet)
	r.HandleFunc("/repository/{name}", s.deleteRepository).Methods(http.MethodDelete)
	r.HandleFunc("/repository/{name}/acls", s.getACL).Methods(http.MethodGet)
	r.HandleFunc("/repository/{name}/acls", s.setACL).Methods(http.MethodPost)
	r.HandleFunc("/sshkeys", s.uploadSSHKey).Methods(http.MethodPost)
	r.HandleFunc("/sshkeys", s.listSSHKeys).Methods(http.MethodGet)
	r.HandleFunc("/sshkey/{comment}", s.deleteSSHKey).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, len(s.requests))
	copy(out, s.requests)

	return out
}

// Fail makes the next request receive status and body verbatim, after it
// has been recorded and before it is authenticated. Calls queue up.
func (s *Server) Fail(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.faults = append(s.faults, fault{status: status, body: []byte(body)})
}

// AddRepository stores a repository as if owner had created it.
func (s *Server) AddRepository(owner, name string) *Repository {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addRepositoryLocked(owner, name, "git")
}

// Repository returns the stored repository, if any.
func (s *Server) Repository(owner, name string) (*Repository, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo, ok := s.repos[repoKey{owner: owner, name: name}]

	return repo, ok
}

// SSHKeys returns a copy of the keys stored for user, keyed by comment.
func (s *Server) SSHKeys(user string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.keys[user]))
	for comment, key := range s.keys[user] {
		out[comment] = key
	}

	return out
}

func (s *Server) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		rec := Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			RequestID:   requestIDFromContext(r.Context()),
			UserAgent:   r.UserAgent(),
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		}

		if env, err := envelope.Decode(body); err == nil {
			rec.User = env.User
			rec.Signature = env.Signature
			rec.HasData = env.HasData()
		}

		s.mu.Lock()
		s.requests = append(s.requests, rec)
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) faultMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var f *fault
		if len(s.faults) > 0 {
			f = &s.faults[0]
			s.faults = s.faults[1:]
		}
		s.mu.Unlock()

		if f != nil {
			w.WriteHeader(f.status)
			w.Write(f.body)

			return
		}

		next.ServeHTTP(w, r)
	})
}
