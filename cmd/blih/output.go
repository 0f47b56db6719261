package main

import (
	"fmt"
	"io"

	"github.com/vitalvas/blih/client"
)

func printMessage(w io.Writer, resp *client.Response) {
	if msg := resp.Message(); msg != "" {
		fmt.Fprintln(w, msg)
	}
}

func printLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// printEntries prints "key : value" lines.
func printEntries(w io.Writer, entries []client.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s : %s\n", e.Key, e.Value)
	}
}

// printKeys prints "key comment" lines for entries keyed by comment,
// followed by the key fingerprint when withFingerprint is set.
func printKeys(w io.Writer, entries []client.Entry, withFingerprint bool) {
	for _, e := range entries {
		if !withFingerprint {
			fmt.Fprintf(w, "%s %s\n", e.Value, e.Key)
			continue
		}

		fp, err := client.Fingerprint(e.Value)
		if err != nil {
			fp = "-"
		}

		fmt.Fprintf(w, "%s %s %s\n", e.Value, e.Key, fp)
	}
}
