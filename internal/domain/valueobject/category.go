package valueobject

// Categories перечисляет категории задач, доступные при публикации.
var Categories = []string{"Household", "Tech", "Delivery", "Tutor", "Cleaning", "Assembly", "Gardening", "Other"}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
