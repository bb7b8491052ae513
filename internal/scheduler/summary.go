// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scheduler

import "github.com/matt-FFFFFF/syncloop/internal/runbatch"

// Summary holds cumulative totals across rounds.
type Summary struct {
	Rounds       int  // rounds executed
	Waits        int  // interval waits started
	Total        int  // commands executed across all rounds
	Success      int  // successful commands across all rounds
	FailedRounds int  // rounds with at least one failure
	Stopped      bool // the loop ended on a stop request or cancellation
}

// Failed returns the number of failed commands across all rounds.
func (s *Summary) Failed() int {
	return s.Total - s.Success
}

// ExitCode returns the process exit code for a finite run: the failed command
// count, capped so it stays below the codes reserved by shells.
func (s *Summary) ExitCode() int {
	return min(s.Failed(), maxExitCode)
}

func (s *Summary) add(res *runbatch.BatchResult) {
	s.Rounds++
	s.Total += res.Total
	s.Success += res.Success

	if res.HasError() {
		s.FailedRounds++
	}
}
