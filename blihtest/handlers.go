package blihtest

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/ssh"
)

func (s *Server) addRepositoryLocked(owner, name, typ string) *Repository {
	repo := &Repository{
		Name:    name,
		Owner:   owner,
		Type:    typ,
		UUID:    uuid.New().String(),
		Created: time.Now(),
		ACL:     make(map[string]string),
	}
	s.repos[repoKey{owner: owner, name: name}] = repo

	return repo
}

func (s *Server) repoURL(owner, name string) string {
	return "git@" + strings.TrimPrefix(s.URL, "http://") + ":/" + owner + "/" + name
}

func (s *Server) createRepository(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := bindData(r, &data); err != nil || data.Name == "" {
		writeError(w, http.StatusBadRequest, "Missing repository name")
		return
	}

	if data.Type != "git" {
		writeError(w, http.StatusBadRequest, "Unsupported repository type")
		return
	}

	owner := requester(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.repos[repoKey{owner: owner, name: data.Name}]; ok {
		writeError(w, http.StatusConflict, "Repository already exists")
		return
	}

	s.addRepositoryLocked(owner, data.Name, data.Type)
	writeMessage(w, "Repository '%s' created", data.Name)
}

func (s *Server) listRepositories(w http.ResponseWriter, r *http.Request) {
	owner := requester(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	repos := make(map[string]any)
	for key, repo := range s.repos {
		if key.owner != owner {
			continue
		}

		repos[repo.Name] = map[string]any{
			"uuid": repo.UUID,
			"url":  s.repoURL(owner, repo.Name),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"repositories": repos})
}

func (s *Server) repositoryInfo(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	owner := requester(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	repo, ok := s.repos[repoKey{owner: owner, name: name}]
	if !ok {
		writeError(w, http.StatusNotFound, "No such repository")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": map[string]any{
			"name":          repo.Name,
			"uuid":          repo.UUID,
			"url":           s.repoURL(owner, repo.Name),
			"creation_time": repo.Created.Unix(),
			"public":        false,
		},
	})
}

func (s *Server) deleteRepository(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	key := repoKey{owner: requester(r), name: name}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.repos[key]; !ok {
		writeError(w, http.StatusNotFound, "No such repository")
		return
	}

	delete(s.repos, key)
	writeMessage(w, "Repository '%s' deleted", name)
}

func (s *Server) getACL(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	s.mu.Lock()
	defer s.mu.Unlock()

	repo, ok := s.repos[repoKey{owner: requester(r), name: name}]
	if !ok {
		writeError(w, http.StatusNotFound, "No such repository")
		return
	}

	acl := make(map[string]any, len(repo.ACL))
	for user, rights := range repo.ACL {
		acl[user] = rights
	}

	writeJSON(w, http.StatusOK, acl)
}

func (s *Server) setACL(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var data struct {
		User string `json:"user"`
		ACL  string `json:"acl"`
	}
	if err := bindData(r, &data); err != nil || data.User == "" {
		writeError(w, http.StatusBadRequest, "Missing user")
		return
	}

	if !validACL(data.ACL) {
		writeError(w, http.StatusBadRequest, "Invalid acl")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	repo, ok := s.repos[repoKey{owner: requester(r), name: name}]
	if !ok {
		writeError(w, http.StatusNotFound, "No such repository")
		return
	}

	if data.ACL == "" {
		delete(repo.ACL, data.User)
	} else {
		repo.ACL[data.User] = normalizeACL(data.ACL)
	}

	writeMessage(w, "ACL updated")
}

func validACL(acl string) bool {
	for _, c := range acl {
		if c != 'r' && c != 'w' {
			return false
		}
	}

	return true
}

func normalizeACL(acl string) string {
	rights := strings.Split(acl, "")
	slices.Sort(rights)

	return strings.Join(slices.Compact(rights), "")
}

func (s *Server) uploadSSHKey(w http.ResponseWriter, r *http.Request) {
	var data struct {
		SSHKey string `json:"sshkey"`
	}
	if err := bindData(r, &data); err != nil || data.SSHKey == "" {
		writeError(w, http.StatusBadRequest, "Missing key")
		return
	}

	key, err := url.PathUnescape(data.SSHKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid key encoding")
		return
	}

	_, comment, _, _, err := ssh.ParseAuthorizedKey([]byte(key))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ssh key")
		return
	}

	if comment == "" {
		writeError(w, http.StatusBadRequest, "The key needs a comment")
		return
	}

	user := requester(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keys[user] == nil {
		s.keys[user] = make(map[string]string)
	}

	s.keys[user][comment] = key
	writeMessage(w, "Public key '%s' uploaded", comment)
}

func (s *Server) listSSHKeys(w http.ResponseWriter, r *http.Request) {
	user := requester(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make(map[string]any, len(s.keys[user]))
	for comment, key := range s.keys[user] {
		keys[comment] = key
	}

	writeJSON(w, http.StatusOK, keys)
}

func (s *Server) deleteSSHKey(w http.ResponseWriter, r *http.Request) {
	comment := mux.Vars(r)["comment"]
	user := requester(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[user][comment]; !ok {
		writeError(w, http.StatusNotFound, "No such key")
		return
	}

	delete(s.keys[user], comment)
	writeMessage(w, "Public key '%s' deleted", comment)
}
