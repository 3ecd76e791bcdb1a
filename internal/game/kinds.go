package game

// Kind names one of the platform's canvas mini-games. The coordinator treats
// gameplay as opaque; the kind only selects which client bundle a room runs.
type Kind string

const (
	KindSarpniti   Kind = "sarpniti"
	KindClimb      Kind = "climb"
	KindColorMatch Kind = "colormatch"
	KindTargetTaps Kind = "targettaps"
	KindWhackMole  Kind = "whackmole"
)

var kinds = map[Kind]bool{
	KindSarpniti:   true,
	KindClimb:      true,
	KindColorMatch: true,
	KindTargetTaps: true,
	KindWhackMole:  true,
}

func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	return k, kinds[k]
}

func (k Kind) Valid() bool {
	return kinds[k]
}
