package ir

// DismissalKind names how a batter was dismissed. Values are display names.
type DismissalKind string

const (
	DismissalBowled      DismissalKind = "Bowled"
	DismissalCaught      DismissalKind = "Caught"
	DismissalLBW         DismissalKind = "LBW"
	DismissalStumped     DismissalKind = "Stumped"
	DismissalHitWicket   DismissalKind = "Hit Wicket"
	DismissalRunOut      DismissalKind = "Run Out"
	DismissalRetiredHurt DismissalKind = "Retired Hurt"
	DismissalRetiredOut  DismissalKind = "Retired Out"
	DismissalObstructing DismissalKind = "Obstructing the Field"
	DismissalHitTwice    DismissalKind = "Hit the Ball Twice"
	DismissalTimedOut    DismissalKind = "Timed Out"
	DismissalHandled     DismissalKind = "Handled the Ball"
)

// Dismissal describes the credit semantics of one dismissal kind.
type Dismissal struct {
	Kind            DismissalKind `json:"kind"`
	CreditsBowler   bool          `json:"credits_bowler"`
	CountsAsWicket  bool          `json:"counts_as_wicket"`
	BallFaced       bool          `json:"ball_faced"`
	FielderInvolved bool          `json:"fielder_involved"`
	Short           string        `json:"short"` // scorebook abbreviation
}

// Dismissals is the static taxonomy, keyed by kind.
var Dismissals = map[DismissalKind]Dismissal{
	DismissalBowled:      {Kind: DismissalBowled, CreditsBowler: true, CountsAsWicket: true, BallFaced: true, Short: "b"},
	DismissalCaught:      {Kind: DismissalCaught, CreditsBowler: true, CountsAsWicket: true, BallFaced: true, FielderInvolved: true, Short: "c"},
	DismissalLBW:         {Kind: DismissalLBW, CreditsBowler: true, CountsAsWicket: true, BallFaced: true, Short: "lbw"},
	DismissalStumped:     {Kind: DismissalStumped, CreditsBowler: true, CountsAsWicket: true, BallFaced: true, FielderInvolved: true, Short: "st"},
	DismissalHitWicket:   {Kind: DismissalHitWicket, CreditsBowler: true, CountsAsWicket: true, BallFaced: true, Short: "hw"},
	DismissalRunOut:      {Kind: DismissalRunOut, CountsAsWicket: true, BallFaced: true, FielderInvolved: true, Short: "run out"},
	DismissalRetiredHurt: {Kind: DismissalRetiredHurt, Short: "retired hurt"},
	DismissalRetiredOut:  {Kind: DismissalRetiredOut, CountsAsWicket: true, Short: "retired out"},
	DismissalObstructing: {Kind: DismissalObstructing, CountsAsWicket: true, BallFaced: true, Short: "obstructing the field"},
	DismissalHitTwice:    {Kind: DismissalHitTwice, CountsAsWicket: true, BallFaced: true, Short: "hit the ball twice"},
	DismissalTimedOut:    {Kind: DismissalTimedOut, CountsAsWicket: true, Short: "timed out"},
	DismissalHandled:     {Kind: DismissalHandled, CountsAsWicket: true, BallFaced: true, Short: "handled the ball"},
}

// LookupDismissal returns the taxonomy entry for a kind. Unknown kinds count
// as a team wicket with no bowler credit.
func LookupDismissal(kind DismissalKind) Dismissal {
	if d, ok := Dismissals[kind]; ok {
		return d
	}
	return Dismissal{Kind: kind, CountsAsWicket: true, BallFaced: true, Short: string(kind)}
}

// ValidDismissal reports whether kind is part of the taxonomy.
func ValidDismissal(kind DismissalKind) bool {
	_, ok := Dismissals[kind]
	return ok
}
