package domain

const (
	MinLevel = 0
	MaxLevel = 5
)

var levelLabels = [...]string{
	"Never seen",
	"Not acquired",
	"Fragile",
	"Being acquired",
	"Acquired",
	"Exceeded",
}

// ClampLevel bounds level to [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

func LevelLabel(level int) string {
	return levelLabels[ClampLevel(level)]
}
