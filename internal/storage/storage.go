// Package storage implements core.PlayerStore on PostgreSQL and in memory.
//
// Both stores apply a batch atomically, key players on their lower-cased
// email, and check every group a batch names before writing anything.
package storage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cssbattle/championship/internal/core"
)

// Options controls how a store treats groups it has not seen before.
type Options struct {
	// CreateMissingGroups creates unknown groups on save. When false, a
	// batch naming an unknown group fails with core.ErrUnknownGroup.
	CreateMissingGroups bool
}

// emailKey is the uniqueness key for a player.
func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// dedupe collapses records sharing an email key. The last row wins, kept
// at the position of the first occurrence.
func dedupe(records []core.PlayerRecord) []core.PlayerRecord {
	index := make(map[string]int, len(records))
	out := make([]core.PlayerRecord, 0, len(records))
	for _, rec := range records {
		key := emailKey(rec.Email)
		if i, ok := index[key]; ok {
			out[i] = rec
			continue
		}
		index[key] = len(out)
		out = append(out, rec)
	}
	return out
}

// groupNames returns the distinct group names in records, sorted.
func groupNames(records []core.PlayerRecord) []string {
	seen := make(map[string]struct{}, len(records))
	var names []string
	for _, rec := range records {
		if _, ok := seen[rec.GroupName]; ok {
			continue
		}
		seen[rec.GroupName] = struct{}{}
		names = append(names, rec.GroupName)
	}
	sort.Strings(names)
	return names
}

func unknownGroupError(missing []string) error {
	return fmt.Errorf("%w: %s", core.ErrUnknownGroup, strings.Join(missing, ", "))
}
