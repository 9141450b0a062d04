package engine

import (
	"github.com/roach88/crease/internal/ir"
)

// Execute dispatches one transport command to the matching engine method
// and returns the resulting snapshot. Only malformed commands fail.
func (e *Engine) Execute(cmd ir.Command) (ir.MatchState, error) {
	if err := Validate(cmd); err != nil {
		return e.Snapshot(), err
	}

	switch cmd.Type {
	case ir.CmdDelivery, ir.CmdWicket:
		e.ApplyDelivery(cmd.Delivery())
	case ir.CmdUndo:
		e.Undo()
	case ir.CmdEdit:
		e.EditBall(cmd.Timestamp, *cmd.Patch)
	case ir.CmdCorrectIdentity:
		e.CorrectIdentity(cmd.OldID, cmd.NewID, cmd.Role)
	case ir.CmdRetire:
		e.RetireBatter(cmd.PlayerID, cmd.Retirement)
	case ir.CmdReplaceBowler:
		e.ReplaceBowlerMidOver(cmd.BowlerID)
	case ir.CmdSelectPlayers:
		e.SelectPlayers(cmd.StrikerID, cmd.NonStrikerID, cmd.BowlerID)
	case ir.CmdSubstitute:
		e.Substitute(cmd.OutID, cmd.InID)
	case ir.CmdPenalty:
		e.AwardPenalty(cmd.Runs)
	case ir.CmdDeclare:
		e.DeclareInnings()
	case ir.CmdConclude:
		e.ConcludeInnings()
	case ir.CmdStartInnings:
		e.StartInnings(cmd.BattingTeamID, cmd.BowlingTeamID, cmd.Target, cmd.FollowOn)
	case ir.CmdEndInnings:
		e.EndInnings(cmd.Complete)
	case ir.CmdConcludeMatch:
		e.ConcludeMatch(cmd.Result)
	case ir.CmdLoseOvers:
		e.LoseOvers(cmd.Overs)
	case ir.CmdNextDay:
		e.AdvanceDay()
	case ir.CmdPauseTimer:
		e.PauseTimer()
	case ir.CmdResumeTimer:
		e.ResumeTimer()
	case ir.CmdAddAllowance:
		e.AddAllowance(cmd.Seconds)
	case ir.CmdUpdateMetadata:
		e.UpdateMetadata(*cmd.Metadata)
	}
	return e.Snapshot(), nil
}

// Validate checks a command's shape without touching any state.
func Validate(cmd ir.Command) error {
	typ := string(cmd.Type)
	switch cmd.Type {
	case ir.CmdDelivery:
		if !validExtra(cmd.ExtraKind) {
			return invalidValue(typ, "extra_kind", string(cmd.ExtraKind))
		}
	case ir.CmdWicket:
		if cmd.WicketKind == "" {
			return missingField(typ, "wicket_kind")
		}
		if !validExtra(cmd.ExtraKind) {
			return invalidValue(typ, "extra_kind", string(cmd.ExtraKind))
		}
	case ir.CmdEdit:
		if cmd.Timestamp == 0 {
			return missingField(typ, "timestamp")
		}
		if cmd.Patch == nil {
			return missingField(typ, "patch")
		}
		if cmd.Patch.ExtraKind != nil && !validExtra(*cmd.Patch.ExtraKind) {
			return invalidValue(typ, "patch.extra_kind", string(*cmd.Patch.ExtraKind))
		}
	case ir.CmdCorrectIdentity:
		if cmd.OldID == "" {
			return missingField(typ, "old_id")
		}
		if cmd.NewID == "" {
			return missingField(typ, "new_id")
		}
		switch cmd.Role {
		case "", ir.RoleStriker, ir.RoleNonStriker, ir.RoleBowler:
		default:
			return invalidValue(typ, "role", string(cmd.Role))
		}
	case ir.CmdRetire:
		if cmd.PlayerID == "" {
			return missingField(typ, "player_id")
		}
		if cmd.Retirement != ir.RetiredHurt && cmd.Retirement != ir.RetiredOut {
			return invalidValue(typ, "retirement", string(cmd.Retirement))
		}
	case ir.CmdReplaceBowler:
		if cmd.BowlerID == "" {
			return missingField(typ, "bowler_id")
		}
	case ir.CmdSelectPlayers:
		if cmd.StrikerID == "" && cmd.NonStrikerID == "" && cmd.BowlerID == "" {
			return missingField(typ, "striker_id")
		}
	case ir.CmdSubstitute:
		if cmd.OutID == "" {
			return missingField(typ, "out_id")
		}
		if cmd.InID == "" {
			return missingField(typ, "in_id")
		}
	case ir.CmdPenalty:
		if cmd.Runs <= 0 {
			return missingField(typ, "runs")
		}
	case ir.CmdStartInnings:
		if cmd.BattingTeamID == "" {
			return missingField(typ, "batting_team_id")
		}
		if cmd.BowlingTeamID == "" {
			return missingField(typ, "bowling_team_id")
		}
	case ir.CmdLoseOvers:
		if cmd.Overs == 0 {
			return missingField(typ, "overs")
		}
	case ir.CmdAddAllowance:
		if cmd.Seconds <= 0 {
			return missingField(typ, "seconds")
		}
	case ir.CmdUpdateMetadata:
		if cmd.Metadata == nil {
			return missingField(typ, "metadata")
		}
	case ir.CmdUndo, ir.CmdDeclare, ir.CmdConclude, ir.CmdEndInnings,
		ir.CmdConcludeMatch, ir.CmdNextDay, ir.CmdPauseTimer, ir.CmdResumeTimer:
	default:
		return &CommandError{Code: ErrCodeUnknownCommand, Type: typ, Message: "unknown command type"}
	}
	return nil
}

func validExtra(k ir.ExtraKind) bool {
	switch k.Normalize() {
	case ir.ExtraNone, ir.ExtraWide, ir.ExtraNoBall, ir.ExtraBye, ir.ExtraLegBye:
		return true
	default:
		return false
	}
}
