package client

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultRepositoryType is the repository type the service creates.
const DefaultRepositoryType = "git"

// ErrInvalidOperation is returned when an operation is missing a required
// argument.
var ErrInvalidOperation = errors.New("client: invalid operation")

// Operation is one request the service understands. The set of
// implementations is closed: it is exactly the types in this file.
type Operation interface {
	// Method returns the HTTP verb.
	Method() string

	// Path returns the resource path, with identifiers escaped.
	Path() string

	// Payload returns the data to sign and send, or nil.
	Payload() map[string]any

	// Validate reports missing arguments before anything is signed.
	Validate() error

	operation()
}

func requireArg(op, name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s requires %s", ErrInvalidOperation, op, name)
	}

	return nil
}

func repositoryPath(name string) string {
	return "/repository/" + url.PathEscape(name)
}

// CreateRepository creates a repository owned by the requester.
type CreateRepository struct {
	Name string

	// Type defaults to DefaultRepositoryType.
	Type string
}

func (CreateRepository) Method() string { return http.MethodPost }
func (CreateRepository) Path() string   { return "/repositories" }

func (o CreateRepository) Payload() map[string]any {
	typ := o.Type
	if typ == "" {
		typ = DefaultRepositoryType
	}

	return map[string]any{"name": o.Name, "type": typ}
}

func (o CreateRepository) Validate() error { return requireArg("repository create", "a name", o.Name) }
func (CreateRepository) operation()        {}

// DeleteRepository deletes a repository.
type DeleteRepository struct {
	Name string
}

func (DeleteRepository) Method() string          { return http.MethodDelete }
func (o DeleteRepository) Path() string          { return repositoryPath(o.Name) }
func (DeleteRepository) Payload() map[string]any { return nil }
func (o DeleteRepository) Validate() error       { return requireArg("repository delete", "a name", o.Name) }
func (DeleteRepository) operation()              {}

// RepositoryInfo fetches the description of a repository.
type RepositoryInfo struct {
	Name string
}

func (RepositoryInfo) Method() string          { return http.MethodGet }
func (o RepositoryInfo) Path() string          { return repositoryPath(o.Name) }
func (RepositoryInfo) Payload() map[string]any { return nil }
func (o RepositoryInfo) Validate() error       { return requireArg("repository info", "a name", o.Name) }
func (RepositoryInfo) operation()              {}

// ListRepositories lists the requester's repositories.
type ListRepositories struct{}

func (ListRepositories) Method() string          { return http.MethodGet }
func (ListRepositories) Path() string            { return "/repositories" }
func (ListRepositories) Payload() map[string]any { return nil }
func (ListRepositories) Validate() error         { return nil }
func (ListRepositories) operation()              {}

// GetACL fetches the access list of a repository.
type GetACL struct {
	Name string
}

func (GetACL) Method() string          { return http.MethodGet }
func (o GetACL) Path() string          { return repositoryPath(o.Name) + "/acls" }
func (GetACL) Payload() map[string]any { return nil }
func (o GetACL) Validate() error       { return requireArg("repository getacl", "a name", o.Name) }
func (GetACL) operation()              {}

// SetACL grants User the rights in ACL ("r", "w", "rw", or "" to revoke)
// on a repository.
type SetACL struct {
	Name string
	User string
	ACL  string
}

func (SetACL) Method() string { return http.MethodPost }
func (o SetACL) Path() string { return repositoryPath(o.Name) + "/acls" }

func (o SetACL) Payload() map[string]any {
	return map[string]any{"user": o.User, "acl": o.ACL}
}

func (o SetACL) Validate() error {
	if err := requireArg("repository setacl", "a name", o.Name); err != nil {
		return err
	}

	return requireArg("repository setacl", "a user", o.User)
}

func (SetACL) operation() {}

// UploadSSHKey registers a public key. Key is the authorized_keys line as
// read from disk; it is percent-encoded on the wire.
type UploadSSHKey struct {
	Key string
}

func (UploadSSHKey) Method() string { return http.MethodPost }
func (UploadSSHKey) Path() string   { return "/sshkeys" }

func (o UploadSSHKey) Payload() map[string]any {
	return map[string]any{"sshkey": QuoteKey(o.Key)}
}

func (o UploadSSHKey) Validate() error { return requireArg("sshkey upload", "a key", o.Key) }
func (UploadSSHKey) operation()        {}

// ListSSHKeys lists the requester's public keys.
type ListSSHKeys struct{}

func (ListSSHKeys) Method() string          { return http.MethodGet }
func (ListSSHKeys) Path() string            { return "/sshkeys" }
func (ListSSHKeys) Payload() map[string]any { return nil }
func (ListSSHKeys) Validate() error         { return nil }
func (ListSSHKeys) operation()              {}

// DeleteSSHKey removes the public key with the given comment.
type DeleteSSHKey struct {
	Comment string
}

func (DeleteSSHKey) Method() string          { return http.MethodDelete }
func (o DeleteSSHKey) Path() string          { return "/sshkey/" + url.PathEscape(o.Comment) }
func (DeleteSSHKey) Payload() map[string]any { return nil }
func (o DeleteSSHKey) Validate() error       { return requireArg("sshkey delete", "a comment", o.Comment) }
func (DeleteSSHKey) operation()              {}
