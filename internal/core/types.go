// Package core provides the business logic for player roster imports.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"time"
)

// Field names a canonical player attribute, independent of header text.
type Field string

const (
	FieldFullName    Field = "full_name"
	FieldEmail       Field = "email"
	FieldGroupName   Field = "group_name"
	FieldPhone       Field = "phone"
	FieldProfileLink Field = "profile_link"
	FieldVerified    Field = "verified"
)

// FieldSpec defines how a canonical field is located in an uploaded sheet.
type FieldSpec struct {
	Field    Field
	Aliases  []string // Accepted header spellings, highest priority first
	Required bool     // Row is rejected when the resolved value is empty
}

// PlayerRecord is one validated roster entry produced by an import.
type PlayerRecord struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	GroupName   string `json:"group_name"`
	Phone       string `json:"phone,omitempty"`
	ProfileLink string `json:"profile_link,omitempty"`
	Verified    bool   `json:"verified"`
}

// Player is a PlayerRecord as kept by a PlayerStore.
type Player struct {
	ID string `json:"id"`
	PlayerRecord
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveResult reports what a PlayerStore did with a batch of records.
type SaveResult struct {
	Inserted      int `json:"inserted"`
	Updated       int `json:"updated"`
	GroupsCreated int `json:"groups_created"`
}

// PlayerStore persists imported players. Implementations must apply a
// batch atomically: either every record is saved or none is.
type PlayerStore interface {
	SavePlayers(ctx context.Context, records []PlayerRecord) (SaveResult, error)
	ListPlayers(ctx context.Context, group string) ([]Player, error)
	ListGroups(ctx context.Context) ([]string, error)
}

// ImportResult contains the final result of an import operation.
// Rows counts the data rows read from the file. Total counts the players
// saved, which is lower than Rows when the file repeats an email.
type ImportResult struct {
	ImportID      string         `json:"import_id"`
	FileName      string         `json:"file_name"`
	Rows          int            `json:"rows"`
	Total         int            `json:"total"`
	Inserted      int            `json:"inserted"`
	Updated       int            `json:"updated"`
	GroupsCreated int            `json:"groups_created"`
	Players       []PlayerRecord `json:"players"`
	Duration      time.Duration  `json:"duration_ns"`
}

// ImportOutcome labels how an import attempt ended, for metrics.
type ImportOutcome string

const (
	OutcomeSuccess  ImportOutcome = "success"
	OutcomeInvalid  ImportOutcome = "invalid"
	OutcomeRejected ImportOutcome = "rejected"
	OutcomeFailed   ImportOutcome = "failed"
)

// Metrics receives import observations. A nil Metrics is never called.
type Metrics interface {
	ObserveImport(outcome ImportOutcome, rows int, d time.Duration)
	ObserveTemplateDownload()
}
