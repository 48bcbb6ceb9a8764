package onboarding

import "time"

// AgeAt returns the number of full calendar years between dateOfBirth and
// today. The result only increments once the birthday has actually occurred
// in today's year, which keeps leap-day and month-boundary cases exact.
func AgeAt(dateOfBirth, today time.Time) int {
	age := today.Year() - dateOfBirth.Year()
	if today.Month() < dateOfBirth.Month() ||
		(today.Month() == dateOfBirth.Month() && today.Day() < dateOfBirth.Day()) {
		age--
	}
	return age
}
