package valueobject

type Level string

const (
	LevelRookie    Level = "Rookie"
	LevelPro       Level = "Pro"
	LevelLocalHero Level = "Local Hero"
)

// Пороги XP, после которых меняется уровень.
const (
	ProLevelXP       int64 = 500
	LocalHeroLevelXP int64 = 1000
)

// LevelForXP вычисляет уровень по накопленному опыту.
func LevelForXP(xp int64) Level {
	switch {
	case xp >= LocalHeroLevelXP:
		return LevelLocalHero
	case xp >= ProLevelXP:
		return LevelPro
	default:
		return LevelRookie
	}
}
