package subscriber

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const seenPruneThreshold = 4096

type logKey struct {
	block uint64
	tx    common.Hash
	index uint
}

// seenLogs remembers recently delivered logs so a backfill overlapping the
// live stream does not deliver a log twice.
type seenLogs struct {
	keys   map[logKey]struct{}
	window uint64
}

func newSeenLogs(window uint64) *seenLogs {
	return &seenLogs{keys: make(map[logKey]struct{}), window: window}
}

// add returns false when the log was already delivered.
func (s *seenLogs) add(log types.Log) bool {
	key := logKey{block: log.BlockNumber, tx: log.TxHash, index: log.Index}
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// prune drops keys older than window blocks before head once the set grows large.
func (s *seenLogs) prune(head uint64) {
	if len(s.keys) < seenPruneThreshold || head <= s.window {
		return
	}
	floor := head - s.window
	for key := range s.keys {
		if key.block < floor {
			delete(s.keys, key)
		}
	}
}
