package sampletrials

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/fieldtrials/internal/domain/scoring"
)

// ErrRankingMismatch reports a remote decision matrix that disagrees with
// the local computation.
var ErrRankingMismatch = errors.New("ranking mismatch")

// VerifyRanking checks that remote ranks the same groups in the same order
// with the same scores as local.
func VerifyRanking(local, remote []scoring.Row) error {
	if len(local) != len(remote) {
		return fmt.Errorf("%w: %d local rows, %d remote rows", ErrRankingMismatch, len(local), len(remote))
	}
	for i := range local {
		l, r := local[i], remote[i]
		switch {
		case l.GroupID != r.GroupID:
			return fmt.Errorf("%w: position %d is %s locally and %s remotely", ErrRankingMismatch, i+1, l.GroupID, r.GroupID)
		case l.Rank != r.Rank:
			return fmt.Errorf("%w: %s has rank %d locally and %d remotely", ErrRankingMismatch, l.GroupID, l.Rank, r.Rank)
		case math.Abs(l.FinalScore-r.FinalScore) > scoreTolerance:
			return fmt.Errorf("%w: %s scores %.6f locally and %.6f remotely", ErrRankingMismatch, l.GroupID, l.FinalScore, r.FinalScore)
		}
	}
	return nil
}
