// Package client dispatches signed operations to the repository service
// and classifies its responses.
//
// Every operation the service offers is a value of one of the types in
// operations.go; Operation is sealed, so the set is closed at compile time.
// Each call builds a fresh envelope, sends it as the JSON body with a fixed
// user agent, and returns either the decoded response or one of the typed
// failures:
//
//   - *TransportError: the service could not be reached or timed out
//   - *ProtocolError: the service answered with a non-200 status
//   - *DecodeError: a 200 answer whose body is not a JSON object
//
// No request is ever retried.
//
// # Usage
//
//	c, err := client.New(client.Config{
//	    Signer: signer,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := c.Do(ctx, client.CreateRepository{Name: "myrepo"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(resp.Message())
//
// Point BaseURL at a test server to exercise the client without the real
// service (see package blihtest).
package client
