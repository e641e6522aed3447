package engine

import "fmt"

// Color is the side a piece belongs to.
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(text []byte) error {
	parsed, ok := ParseColor(string(text))
	if !ok {
		return fmt.Errorf("invalid color %q", string(text))
	}
	*c = parsed
	return nil
}

func ParseColor(s string) (Color, bool) {
	switch s {
	case "white":
		return White, true
	case "black":
		return Black, true
	default:
		return White, false
	}
}

// PieceType enumerates the six chessmen. The zero value means "unspecified"
// so that optional promotion arguments can be left empty.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (p PieceType) String() string {
	switch p {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return ""
	}
}

// Letter is the algebraic-notation prefix for the piece; empty for pawns.
func (p PieceType) Letter() string {
	switch p {
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return ""
	}
}

func (p PieceType) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *PieceType) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = NoPieceType
		return nil
	}
	parsed, ok := ParsePieceType(string(text))
	if !ok {
		return fmt.Errorf("invalid piece type %q", string(text))
	}
	*p = parsed
	return nil
}

func ParsePieceType(s string) (PieceType, bool) {
	switch s {
	case "pawn":
		return Pawn, true
	case "knight":
		return Knight, true
	case "bishop":
		return Bishop, true
	case "rook":
		return Rook, true
	case "queen":
		return Queen, true
	case "king":
		return King, true
	default:
		return NoPieceType, false
	}
}

// Square addresses a board cell. X is the column (file) and Y the row
// (rank), both 1..8. Row 1 is White's back rank.
type Square struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s Square) Valid() bool {
	return s.X >= 1 && s.X <= 8 && s.Y >= 1 && s.Y <= 8
}

func (s Square) String() string {
	return fmt.Sprintf("%c%d", 'a'+s.X-1, s.Y)
}

// Piece is a chessman on the board. ID is assigned at creation and never
// changes, even when a magic move rewrites Type; the time-reversal rule
// relies on recognizing a piece across a type change.
type Piece struct {
	ID    int       `json:"id"`
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

// MoveRecord captures the most recent ply, as retained by the match layer
// and fed back into the magic-move validator.
type MoveRecord struct {
	PieceID  int    `json:"pieceId"`
	From     Square `json:"from"`
	To       Square `json:"to"`
	Captured *Piece `json:"captured,omitempty"`
}

// Move is a from/to pair, used when enumerating legal moves.
type Move struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

// Reason classifies why an operation was refused. Refusals are results,
// not faults: the engine never panics on a structurally valid request.
type Reason string

const (
	ReasonNone                        Reason = ""
	ReasonInvalidSquare               Reason = "InvalidSquare"
	ReasonWrongColor                  Reason = "WrongColor"
	ReasonWrongOwnership              Reason = "WrongOwnership"
	ReasonPathBlocked                 Reason = "PathBlocked"
	ReasonPatternViolation            Reason = "PatternViolation"
	ReasonSelfCheck                   Reason = "SelfCheck"
	ReasonNoPieceAtTarget             Reason = "NoPieceAtTarget"
	ReasonDisallowedTransformation    Reason = "DisallowedTransformation"
	ReasonImmediateCheckmateForbidden Reason = "ImmediateCheckmateForbidden"
)

// MagicAction selects which half of the transformation lattice applies.
type MagicAction uint8

const (
	ActionUpgrade MagicAction = iota
	ActionDowngrade
)

func (a MagicAction) String() string {
	if a == ActionUpgrade {
		return "upgrade"
	}
	return "downgrade"
}

func (a MagicAction) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *MagicAction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "upgrade":
		*a = ActionUpgrade
	case "downgrade":
		*a = ActionDowngrade
	default:
		return fmt.Errorf("invalid magic action %q", string(text))
	}
	return nil
}
