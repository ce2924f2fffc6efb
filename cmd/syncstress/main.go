// Package main implements the syncstress CLI tool.
//
// syncstress drives the threadsync primitives under load and checks their
// invariants while they run:
//
//	syncstress condition     # ping-pong handoffs through a Condition
//	syncstress rwlock        # readers and writers on one RWLock
//	syncstress barrier       # workers cycling through a CyclicBarrier
//	syncstress thread        # spawn/finalize churn against a thread budget
//	syncstress all           # every scenario in turn
//
// Scenario sizes come from flags or from a YAML profile given with --config;
// explicit flags win over the profile. A non-zero exit status means at least
// one invariant was broken.
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
