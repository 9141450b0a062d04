package compiler

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/crease/internal/ir"
)

//go:embed schema/match.cue
var schemaSource string

// CompileMatch parses a CUE value into a MatchConfig.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value is unified with the #Match schema first, so type errors,
// unknown fields and out-of-range numbers are reported with their CUE
// source position. Teams keep their declaration order.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`match: { format: "T20", teams: { ... } }`)
//	cfg, err := CompileMatch(v.LookupPath(cue.ParsePath("match")))
func CompileMatch(v cue.Value) (*ir.MatchConfig, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if !v.Exists() {
		return nil, &CompileError{Field: "match", Message: "match is required"}
	}

	schema := v.Context().CompileString(schemaSource, cue.Filename("schema/match.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile match schema: %w", err)
	}
	m := schema.LookupPath(cue.ParsePath("#Match")).Unify(v)
	if err := m.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := &ir.MatchConfig{}
	var err error
	if cfg.Name, err = optionalString(m, "name"); err != nil {
		return nil, err
	}
	format, err := m.LookupPath(cue.ParsePath("format")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	cfg.Format = ir.Format(format)

	if cfg.Overs, err = optionalInt(m, "overs"); err != nil {
		return nil, err
	}
	if cfg.SquadSize, err = optionalInt(m, "squad_size"); err != nil {
		return nil, err
	}
	if cfg.SquadSize == 0 {
		cfg.SquadSize = ir.DefaultSquadSize
	}
	if fv := m.LookupPath(cue.ParsePath("flexible_squad")); fv.Exists() {
		if cfg.FlexibleSquad, err = fv.Bool(); err != nil {
			return nil, formatCUEError(err)
		}
	}

	if tv := m.LookupPath(cue.ParsePath("test")); tv.Exists() {
		cfg.Test, err = parseTest(tv)
		if err != nil {
			return nil, err
		}
	} else if cfg.Format == ir.FormatTest {
		cfg.Test = &ir.TestConfig{MaxDays: 5, OversPerDay: 90, FollowOnMargin: ir.DefaultFollowOnMargin}
	}

	cfg.Teams, err = parseTeams(m)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseTest(v cue.Value) (*ir.TestConfig, error) {
	t := &ir.TestConfig{MaxDays: 5, OversPerDay: 90, FollowOnMargin: ir.DefaultFollowOnMargin}
	for field, dst := range map[string]*int{
		"max_days":         &t.MaxDays,
		"overs_per_day":    &t.OversPerDay,
		"follow_on_margin": &t.FollowOnMargin,
	} {
		fv := v.LookupPath(cue.ParsePath(field))
		if !fv.Exists() {
			continue
		}
		n, err := fv.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		*dst = int(n)
	}
	return t, nil
}

// parseTeams reads the teams struct; the label is the team id.
func parseTeams(m cue.Value) ([]ir.Team, error) {
	tv := m.LookupPath(cue.ParsePath("teams"))
	iter, err := tv.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var teams []ir.Team
	for iter.Next() {
		team := ir.Team{ID: iter.Selector().Unquoted()}
		if team.Name, err = optionalString(iter.Value(), "name"); err != nil {
			return nil, err
		}
		if team.Name == "" {
			team.Name = team.ID
		}

		pv := iter.Value().LookupPath(cue.ParsePath("players"))
		if err := pv.Decode(&team.Players); err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("teams.%s.players", team.ID),
				Message: err.Error(),
				Pos:     pv.Pos(),
			}
		}
		for i := range team.Players {
			if team.Players[i].Name == "" {
				team.Players[i].Name = team.Players[i].ID
			}
		}
		teams = append(teams, team)
	}
	return teams, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalInt(v cue.Value, field string) (int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
