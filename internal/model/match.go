package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// MatchType classifies a cohort record against the identity store.
type MatchType int

const (
	MatchEmailExact MatchType = iota + 1
	MatchNameUnique
	MatchNameAmbiguous
	MatchNone
)

// MatchTypes lists every classification in priority order.
var MatchTypes = []MatchType{MatchEmailExact, MatchNameUnique, MatchNameAmbiguous, MatchNone}

func (m MatchType) String() string {
	switch m {
	case MatchEmailExact:
		return "EmailExact"
	case MatchNameUnique:
		return "NameUniqueMatch"
	case MatchNameAmbiguous:
		return "NameAmbiguous"
	case MatchNone:
		return "NoMatch"
	default:
		return fmt.Sprintf("MatchType(%d)", int(m))
	}
}

// Valid reports whether m is one of the known classifications.
func (m MatchType) Valid() bool {
	switch m {
	case MatchEmailExact, MatchNameUnique, MatchNameAmbiguous, MatchNone:
		return true
	default:
		return false
	}
}

// MarshalJSON encodes the classification by name.
func (m MatchType) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("unknown match type %d", int(m))
	}
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a classification name.
func (m *MatchType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, t := range MatchTypes {
		if t.String() == s {
			*m = t
			return nil
		}
	}
	return fmt.Errorf("unknown match type %q", s)
}

// Action is the change a migration intends to apply for a record.
type Action int

const (
	ActionUpdateExisting Action = iota + 1
	ActionCreateNew
)

func (a Action) String() string {
	switch a {
	case ActionUpdateExisting:
		return "UpdateExisting"
	case ActionCreateNew:
		return "CreateNew"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// MarshalJSON encodes the action by name.
func (a Action) MarshalJSON() ([]byte, error) {
	switch a {
	case ActionUpdateExisting, ActionCreateNew:
		return json.Marshal(a.String())
	default:
		return nil, fmt.Errorf("unknown action %d", int(a))
	}
}

// UnmarshalJSON decodes an action name.
func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case ActionUpdateExisting.String():
		*a = ActionUpdateExisting
	case ActionCreateNew.String():
		*a = ActionCreateNew
	default:
		return fmt.Errorf("unknown action %q", s)
	}
	return nil
}

// MatchResult is the classification of one record and, for mutating runs,
// the outcome of applying it.
type MatchResult struct {
	Record     CohortRecord `json:"record"`
	MatchType  MatchType    `json:"matchType"`
	Identity   *Identity    `json:"-"`
	Candidates int          `json:"candidates"`
	Action     Action       `json:"intendedAction"`
	Errors     []string     `json:"errors,omitempty"`
	Failed     bool         `json:"failed"`
	Applied    bool         `json:"applied"`
	IdentityID uuid.UUID    `json:"identityId"`
}

// AddError attaches a message to the result.
func (r *MatchResult) AddError(err error) {
	r.Errors = append(r.Errors, err.Error())
}

// MutationError is a failed store write for a single record.
type MutationError struct {
	Email string
	Op    string
	Err   error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Email, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// AmbiguousMatchError explains why a record was not merged into any candidate.
type AmbiguousMatchError struct {
	Name       string
	Candidates int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("name %q matches %d identities, creating a new identity instead of merging", e.Name, e.Candidates)
}
