package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mle-tools/mle-monitor/internal/protocol"
)

// promptTimeout bounds how long interactive prompts wait for input before
// giving up and leaving state unchanged.
const promptTimeout = 60 * time.Second

// readLine reads one line from stdin with a timeout. ok=false on timeout
// or closed input.
func readLine(timeout time.Duration) (string, bool) {
	lines := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()
	select {
	case line, ok := <-lines:
		return line, ok
	case <-time.After(timeout):
		return "", false
	}
}

// promptPurpose asks for the experiment purpose, falling back to the
// default after the timeout.
func promptPurpose() string {
	fmt.Printf("%s Purpose of experiment? ", time.Now().Format("01/02/2006 03:04:05 PM"))
	purpose, ok := readLine(promptTimeout)
	if !ok || purpose == "" {
		return "default"
	}
	return purpose
}

// promptExperimentIDs repeatedly asks for experiment IDs and applies the
// given action. Unknown IDs re-prompt instead of aborting; entering N or
// hitting the timeout stops the loop.
func promptExperimentIDs(db *protocol.Protocol, action string, apply func(id string) error) error {
	timestamp := func() string { return time.Now().Format("01/02/2006 03:04:05 PM") }
	fmt.Printf("%s Want to %s an experiment? - state its id: [e_id/N] ", timestamp(), action)

	known := make(map[string]bool)
	for _, id := range db.IDs() {
		known[id] = true
	}

	for {
		id, ok := readLine(promptTimeout)
		if !ok || id == "N" {
			return nil
		}
		if !known[id] {
			fmt.Printf("%s The id is not in the protocol db. Please try again: [e_id/N] ", timestamp())
			continue
		}
		if err := apply(id); err != nil {
			return err
		}
		delete(known, id)
		fmt.Printf("%s Another one? - state the next id: [e_id/N] ", timestamp())
	}
}
