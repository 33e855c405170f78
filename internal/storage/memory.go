package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cssbattle/championship/internal/core"
	"github.com/google/uuid"
)

// Memory is a core.PlayerStore kept in process memory.
type Memory struct {
	mu      sync.RWMutex
	opts    Options
	groups  map[string]struct{}
	players map[string]core.Player // by email key
	now     func() time.Time
}

var _ core.PlayerStore = (*Memory)(nil)

// NewMemory creates an empty store that knows the given groups.
func NewMemory(opts Options, groups ...string) *Memory {
	m := &Memory{
		opts:    opts,
		groups:  make(map[string]struct{}, len(groups)),
		players: make(map[string]core.Player),
		now:     time.Now,
	}
	for _, g := range groups {
		m.groups[g] = struct{}{}
	}
	return m
}

// SavePlayers upserts records. Nothing is written if any group is unknown.
func (m *Memory) SavePlayers(ctx context.Context, records []core.PlayerRecord) (core.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return core.SaveResult{}, err
	}

	records = dedupe(records)

	m.mu.Lock()
	defer m.mu.Unlock()

	var missing []string
	for _, name := range groupNames(records) {
		if _, ok := m.groups[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 && !m.opts.CreateMissingGroups {
		return core.SaveResult{}, unknownGroupError(missing)
	}

	var result core.SaveResult
	for _, name := range missing {
		m.groups[name] = struct{}{}
		result.GroupsCreated++
	}

	now := m.now()
	for _, rec := range records {
		key := emailKey(rec.Email)
		if existing, ok := m.players[key]; ok {
			existing.PlayerRecord = rec
			existing.UpdatedAt = now
			m.players[key] = existing
			result.Updated++
			continue
		}
		m.players[key] = core.Player{
			ID:           uuid.New().String(),
			PlayerRecord: rec,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		result.Inserted++
	}

	return result, nil
}

// ListPlayers returns players ordered by group then name. An empty group
// returns every player.
func (m *Memory) ListPlayers(ctx context.Context, group string) ([]core.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	players := make([]core.Player, 0, len(m.players))
	for _, p := range m.players {
		if group == "" || p.GroupName == group {
			players = append(players, p)
		}
	}
	sortPlayers(players)
	return players, nil
}

// ListGroups returns the known group names, sorted.
func (m *Memory) ListGroups(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.groups))
	for g := range m.groups {
		names = append(names, g)
	}
	sort.Strings(names)
	return names, nil
}

func sortPlayers(players []core.Player) {
	sort.Slice(players, func(i, j int) bool {
		if players[i].GroupName != players[j].GroupName {
			return players[i].GroupName < players[j].GroupName
		}
		if players[i].FullName != players[j].FullName {
			return players[i].FullName < players[j].FullName
		}
		return players[i].Email < players[j].Email
	})
}
