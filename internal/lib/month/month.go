// Package month прибавляет календарные месяцы к датам без перескока через конец месяца.
package month

import "time"

// Add прибавляет months месяцев к t. Если в целевом месяце нет такого дня,
// берётся его последний день: 31 января + 1 месяц = 28 (29) февраля.
func Add(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// Months возвращает длину расчётного периода в месяцах: 12 для yearly, иначе 1.
func Months(interval string) int {
	if interval == "yearly" {
		return 12
	}
	return 1
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
