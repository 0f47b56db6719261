package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/blih/blihtest"
	"github.com/vitalvas/blih/envelope"
)

func newSigner(t *testing.T, user string, token envelope.Token) envelope.Signer {
	t.Helper()

	signer, err := envelope.NewHMACSHA512Signer(user, token)
	require.NoError(t, err)

	return signer
}

func newClient(t *testing.T, baseURL string, signer envelope.Signer) *Client {
	t.Helper()

	c, err := New(Config{Signer: signer, BaseURL: baseURL})
	require.NoError(t, err)

	return c
}

func TestNew(t *testing.T) {
	signer := newSigner(t, "alice", "deadbeef")

	t.Run("defaults", func(t *testing.T) {
		c, err := New(Config{Signer: signer})
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, c.BaseURL())
		assert.Equal(t, "alice", c.Identity())
		assert.Equal(t, DefaultTimeout, c.http.Timeout)
	})

	t.Run("trailing slash trimmed", func(t *testing.T) {
		c, err := New(Config{Signer: signer, BaseURL: "http://localhost:8080/"})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", c.BaseURL())
	})

	t.Run("negative timeout disables", func(t *testing.T) {
		c, err := New(Config{Signer: signer, Timeout: -1})
		require.NoError(t, err)
		assert.Zero(t, c.http.Timeout)
	})

	t.Run("nil signer", func(t *testing.T) {
		_, err := New(Config{})
		assert.ErrorIs(t, err, ErrNoSigner)
	})

	for _, raw := range []string{"ftp://example.com", "example.com", "http://", "://bad"} {
		t.Run("invalid base "+raw, func(t *testing.T) {
			_, err := New(Config{Signer: signer, BaseURL: raw})
			assert.ErrorIs(t, err, ErrInvalidBaseURL)
		})
	}
}

func TestClientWireFormat(t *testing.T) {
	type captured struct {
		method string
		path   string
		header http.Header
		body   []byte
	}

	var got captured

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = captured{method: r.Method, path: r.URL.EscapedPath(), header: r.Header.Clone(), body: body}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer server.Close()

	c, err := New(Config{
		Signer:            newSigner(t, "alice", "deadbeef"),
		BaseURL:           server.URL,
		GenerateRequestID: func() string { return "req-1" },
	})
	require.NoError(t, err)

	t.Run("create repository", func(t *testing.T) {
		resp, err := c.Do(context.Background(), CreateRepository{Name: "myrepo"})
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Message())
		assert.Equal(t, "req-1", resp.RequestID)

		assert.Equal(t, http.MethodPost, got.method)
		assert.Equal(t, "/repositories", got.path)
		assert.Equal(t, "application/json", got.header.Get("Content-Type"))
		assert.Equal(t, "blih-1.7", got.header.Get("User-Agent"))
		assert.Equal(t, "req-1", got.header.Get(RequestIDHeader))

		var body map[string]any
		require.NoError(t, json.Unmarshal(got.body, &body))
		assert.Equal(t, "alice", body["user"])
		assert.Equal(t, "95e933c29131f42db212d20ce4fe397e814e7b4f981ef697b8729f869e42564ca2d6a3718d859dfe140610451c49ac298701efcbae4a92a7a023d2c9b4602099", body["signature"])
		assert.Equal(t, map[string]any{"name": "myrepo", "type": "git"}, body["data"])
	})

	t.Run("no payload omits data", func(t *testing.T) {
		_, err := c.Do(context.Background(), ListRepositories{})
		require.NoError(t, err)

		assert.Equal(t, http.MethodGet, got.method)

		var body map[string]any
		require.NoError(t, json.Unmarshal(got.body, &body))
		assert.NotContains(t, body, "data")
		assert.Equal(t, "e4e149dad9e42151c9b1507afd84c0f488b2e2f0bf811fc341064c70a68b4de4cecf934b27e47de819d39fdf36926e97aaa9502c5bcdabfc115be92b14f52b71", body["signature"])
	})

	t.Run("key upload signs the quoted key", func(t *testing.T) {
		_, err := c.Do(context.Background(), UploadSSHKey{Key: "ssh-ed25519 AAAA+= me@host"})
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(got.body, &body))
		assert.Equal(t, map[string]any{"sshkey": "ssh-ed25519%20AAAA%2B%3D%20me%40host"}, body["data"])
		assert.Equal(t, "7fa7d0ab79651abfee2826f8f29295859cfb513d6314574d963f1723e82c1e43c64c87f263dbbb69bd3be093e5a990850dbb901a6bc181d5f60a1d262b11296c", body["signature"])
	})

	t.Run("escaped path", func(t *testing.T) {
		_, err := c.Do(context.Background(), RepositoryInfo{Name: "a/b"})
		require.NoError(t, err)
		assert.Equal(t, "/repository/a%2Fb", got.path)
	})

	t.Run("invalid operation sends nothing", func(t *testing.T) {
		got = captured{}

		_, err := c.Do(context.Background(), DeleteRepository{})
		assert.ErrorIs(t, err, ErrInvalidOperation)
		assert.Empty(t, got.method)
	})
}

func TestClientErrors(t *testing.T) {
	signer := newSigner(t, "alice", "deadbeef")

	respond := func(status int, body string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(body))
		}))
	}

	t.Run("service error", func(t *testing.T) {
		server := respond(http.StatusForbidden, `{"error":"forbidden"}`)
		defer server.Close()

		_, err := newClient(t, server.URL, signer).Do(context.Background(), ListRepositories{})

		var pe *ProtocolError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, http.StatusForbidden, pe.Status)
		assert.Equal(t, "forbidden", pe.Error())
	})

	t.Run("unparseable failure", func(t *testing.T) {
		server := respond(http.StatusInternalServerError, `Internal Server Error`)
		defer server.Close()

		_, err := newClient(t, server.URL, signer).Do(context.Background(), ListRepositories{})

		var pe *ProtocolError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, UnknownErrorMessage, pe.Message)
	})

	t.Run("success that is not json", func(t *testing.T) {
		server := respond(http.StatusOK, `not json`)
		defer server.Close()

		_, err := newClient(t, server.URL, signer).Do(context.Background(), ListRepositories{})

		var de *DecodeError
		assert.ErrorAs(t, err, &de)
	})

	t.Run("redirects are not followed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/moved" {
				w.Write([]byte(`{"message":"followed"}`))
				return
			}

			http.Redirect(w, r, "/moved", http.StatusFound)
		}))
		defer server.Close()

		_, err := newClient(t, server.URL, signer).Do(context.Background(), ListRepositories{})

		var pe *ProtocolError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, http.StatusFound, pe.Status)
	})

	t.Run("connection refused", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := ln.Addr().String()
		ln.Close()

		_, err = newClient(t, "http://"+addr, signer).Do(context.Background(), ListRepositories{})

		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "http://"+addr, te.URL)
		assert.Contains(t, err.Error(), "can't connect to http://"+addr)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			<-release
		}))
		defer server.Close()
		defer close(release)

		c, err := New(Config{Signer: signer, BaseURL: server.URL, Timeout: 50 * time.Millisecond})
		require.NoError(t, err)

		_, err = c.Do(context.Background(), ListRepositories{})

		var te *TransportError
		assert.ErrorAs(t, err, &te)
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := respond(http.StatusOK, `{}`)
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newClient(t, server.URL, signer).Do(ctx, ListRepositories{})
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestClientAgainstService(t *testing.T) {
	srv := blihtest.NewServer(map[string]string{"alice": "hunter2", "bob": "s3cret"})
	defer srv.Close()

	alice := newClient(t, srv.URL, newSigner(t, "alice", envelope.DeriveToken([]byte("hunter2"))))
	ctx := context.Background()

	t.Run("repository lifecycle", func(t *testing.T) {
		resp, err := alice.Do(ctx, CreateRepository{Name: "myrepo"})
		require.NoError(t, err)
		assert.Equal(t, "Repository 'myrepo' created", resp.Message())

		resp, err = alice.Do(ctx, ListRepositories{})
		require.NoError(t, err)

		names, err := resp.Repositories()
		require.NoError(t, err)
		assert.Equal(t, []string{"myrepo"}, names)

		resp, err = alice.Do(ctx, RepositoryInfo{Name: "myrepo"})
		require.NoError(t, err)

		info, err := resp.Object("message")
		require.NoError(t, err)
		assert.Equal(t, "myrepo", info["name"])

		_, err = alice.Do(ctx, SetACL{Name: "myrepo", User: "bob", ACL: "wr"})
		require.NoError(t, err)

		resp, err = alice.Do(ctx, GetACL{Name: "myrepo"})
		require.NoError(t, err)
		assert.Equal(t, []Entry{{Key: "bob", Value: "rw"}}, resp.Entries())

		_, err = alice.Do(ctx, DeleteRepository{Name: "myrepo"})
		require.NoError(t, err)

		_, err = alice.Do(ctx, RepositoryInfo{Name: "myrepo"})

		var pe *ProtocolError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, http.StatusNotFound, pe.Status)
		assert.Equal(t, "No such repository", pe.Message)
	})

	t.Run("ssh keys", func(t *testing.T) {
		line, _ := generateAuthorizedKey(t, "me@host")

		_, err := alice.Do(ctx, UploadSSHKey{Key: line})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"me@host": line}, srv.SSHKeys("alice"))

		resp, err := alice.Do(ctx, ListSSHKeys{})
		require.NoError(t, err)
		assert.Equal(t, []Entry{{Key: "me@host", Value: line}}, resp.Entries())

		_, err = alice.Do(ctx, DeleteSSHKey{Comment: "me@host"})
		require.NoError(t, err)
		assert.Empty(t, srv.SSHKeys("alice"))
	})

	t.Run("wrong token", func(t *testing.T) {
		mallory := newClient(t, srv.URL, newSigner(t, "alice", envelope.DeriveToken([]byte("guess"))))

		_, err := mallory.Do(ctx, ListRepositories{})

		var pe *ProtocolError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, http.StatusUnauthorized, pe.Status)
		assert.Equal(t, "Bad token", pe.Message)
	})

	t.Run("request id echoed", func(t *testing.T) {
		c, err := New(Config{
			Signer:            newSigner(t, "bob", envelope.DeriveToken([]byte("s3cret"))),
			BaseURL:           srv.URL,
			GenerateRequestID: func() string { return "trace-42" },
		})
		require.NoError(t, err)

		resp, err := c.Do(ctx, ListSSHKeys{})
		require.NoError(t, err)
		assert.Equal(t, "trace-42", resp.RequestID)

		reqs := srv.Requests()
		require.NotEmpty(t, reqs)

		last := reqs[len(reqs)-1]
		assert.Equal(t, "trace-42", last.RequestID)
		assert.Equal(t, "bob", last.User)
		assert.False(t, last.HasData)
		assert.Equal(t, DefaultUserAgent, last.UserAgent)
	})
}
