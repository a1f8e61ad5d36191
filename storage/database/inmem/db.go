// Package inmemdb implements the repositories in memory. Data is lost on restart.
package inmemdb

import (
	"sync"

	"github.com/submitly/backend/core/review"
	"github.com/submitly/backend/core/submission"
)

type (
	DB struct {
		submission *submissionTable
		review     *reviewTable
	}

	submissionTable struct {
		sync.RWMutex
		table map[string]submission.Submission
	}

	reviewTable struct {
		sync.RWMutex
		rows []review.Review
	}
)

func Open() *DB {
	return &DB{
		submission: &submissionTable{table: make(map[string]submission.Submission)},
		review:     &reviewTable{},
	}
}
