package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/crease/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrUnknownFormat      = "E200" // format not recognised
	ErrTeamCount          = "E201" // exactly two teams required
	ErrDuplicateTeam      = "E202" // team id used twice
	ErrDuplicatePlayer    = "E203" // player id used twice across both squads
	ErrSquadSizeMismatch  = "E204" // roster length differs from squad_size
	ErrInvalidOvers       = "E205" // overs out of range for the format
	ErrInvalidTestConfig  = "E206" // multi-day settings missing or invalid
	ErrEmptyPlayerID      = "E207" // player id is blank
	ErrEmptyTeamID        = "E208" // team id is blank
	ErrSquadTooSmall      = "E209" // fewer than two players
	ErrTestConfigMisplace = "E210" // test settings on a limited-overs match
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled match config for rules the schema cannot
// express. Returns all errors found (does not fail-fast).
func Validate(cfg *ir.MatchConfig) []ValidationError {
	var errs []ValidationError

	// E200: format
	if !ir.ValidFormats[cfg.Format] {
		errs = append(errs, ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unknown format %q", cfg.Format),
			Code:    ErrUnknownFormat,
		})
	}

	// E205: overs
	switch {
	case cfg.Overs < 0:
		errs = append(errs, ValidationError{
			Field:   "overs",
			Message: "overs must be positive",
			Code:    ErrInvalidOvers,
		})
	case cfg.Format == ir.FormatTest && cfg.Overs > 0:
		errs = append(errs, ValidationError{
			Field:   "overs",
			Message: "TEST matches have no overs limit per innings",
			Code:    ErrInvalidOvers,
		})
	case cfg.Format == ir.FormatCustom && cfg.Overs == 0:
		errs = append(errs, ValidationError{
			Field:   "overs",
			Message: "CUSTOM matches must set overs",
			Code:    ErrInvalidOvers,
		})
	}

	errs = append(errs, validateTest(cfg)...)
	errs = append(errs, validateTeams(cfg)...)
	return errs
}

func validateTest(cfg *ir.MatchConfig) []ValidationError {
	if !cfg.IsTest() {
		// E210
		if cfg.Test != nil {
			return []ValidationError{{
				Field:   "test",
				Message: fmt.Sprintf("test settings only apply to TEST matches, not %s", cfg.Format),
				Code:    ErrTestConfigMisplace,
			}}
		}
		return nil
	}

	// E206
	if cfg.Test == nil {
		return []ValidationError{{
			Field:   "test",
			Message: "TEST matches require test settings",
			Code:    ErrInvalidTestConfig,
		}}
	}
	var errs []ValidationError
	if cfg.Test.MaxDays <= 0 {
		errs = append(errs, ValidationError{
			Field:   "test.max_days",
			Message: "max_days must be positive",
			Code:    ErrInvalidTestConfig,
		})
	}
	if cfg.Test.OversPerDay <= 0 {
		errs = append(errs, ValidationError{
			Field:   "test.overs_per_day",
			Message: "overs_per_day must be positive",
			Code:    ErrInvalidTestConfig,
		})
	}
	if cfg.Test.FollowOnMargin < 0 {
		errs = append(errs, ValidationError{
			Field:   "test.follow_on_margin",
			Message: "follow_on_margin cannot be negative",
			Code:    ErrInvalidTestConfig,
		})
	}
	return errs
}

func validateTeams(cfg *ir.MatchConfig) []ValidationError {
	var errs []ValidationError

	// E201
	if len(cfg.Teams) != 2 {
		errs = append(errs, ValidationError{
			Field:   "teams",
			Message: fmt.Sprintf("a match needs exactly 2 teams, got %d", len(cfg.Teams)),
			Code:    ErrTeamCount,
		})
	}
	if cfg.SquadSize != 0 && cfg.SquadSize < 2 {
		errs = append(errs, ValidationError{
			Field:   "squad_size",
			Message: "squad_size must be at least 2",
			Code:    ErrSquadTooSmall,
		})
	}

	teamSeen := make(map[string]bool)
	playerSeen := make(map[string]string) // player id -> team id
	for i, team := range cfg.Teams {
		field := fmt.Sprintf("teams[%d]", i)
		if strings.TrimSpace(team.ID) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: "team id is required",
				Code:    ErrEmptyTeamID,
			})
		} else {
			field = "teams." + team.ID
			if teamSeen[team.ID] {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("duplicate team id %q", team.ID),
					Code:    ErrDuplicateTeam,
				})
			}
			teamSeen[team.ID] = true
		}

		n := len(team.Players)
		switch {
		case n < 2:
			errs = append(errs, ValidationError{
				Field:   field + ".players",
				Message: fmt.Sprintf("a squad needs at least 2 players, got %d", n),
				Code:    ErrSquadTooSmall,
			})
		case !cfg.FlexibleSquad && n != cfg.Squad():
			errs = append(errs, ValidationError{
				Field:   field + ".players",
				Message: fmt.Sprintf("expected %d players, got %d (set flexible_squad to allow)", cfg.Squad(), n),
				Code:    ErrSquadSizeMismatch,
			})
		}

		for j, p := range team.Players {
			if strings.TrimSpace(p.ID) == "" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.players[%d].id", field, j),
					Message: "player id is required",
					Code:    ErrEmptyPlayerID,
				})
				continue
			}
			if other, ok := playerSeen[p.ID]; ok {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.players[%d].id", field, j),
					Message: fmt.Sprintf("player %q already listed in %s", p.ID, other),
					Code:    ErrDuplicatePlayer,
				})
				continue
			}
			playerSeen[p.ID] = team.ID
		}
	}
	return errs
}
