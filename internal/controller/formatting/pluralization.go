package formatting

func pluralize(count int, one, few, many string) string {
	if count%10 == 1 && count%100 != 11 {
		return one
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return few
	}
	return many
}

// PluralizeSlots возвращает правильное склонение слова "слот"
func PluralizeSlots(count int) string {
	return pluralize(count, "слот", "слота", "слотов")
}

// PluralizeClasses возвращает правильное склонение слова "занятие"
func PluralizeClasses(count int) string {
	return pluralize(count, "занятие", "занятия", "занятий")
}

// PluralizeMeetings возвращает правильное склонение слова "встреча"
func PluralizeMeetings(count int) string {
	return pluralize(count, "встреча", "встречи", "встреч")
}

// PluralizeDays возвращает правильное склонение слова "день"
func PluralizeDays(count int) string {
	return pluralize(count, "день", "дня", "дней")
}
