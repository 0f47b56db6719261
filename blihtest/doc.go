// Package blihtest runs an in-process imitation of the repository service
// for tests.
//
// The fake service verifies every envelope exactly like the real one,
// serves the nine endpoints from memory, and records each request it
// receives so tests can assert on headers and signatures:
//
//	srv := blihtest.NewServer(map[string]string{"alice": "hunter2"})
//	defer srv.Close()
//
//	c, err := client.New(client.Config{BaseURL: srv.URL, Signer: signer})
package blihtest
