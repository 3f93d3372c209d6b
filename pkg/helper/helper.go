package helper

import (
	"fmt"
	"strings"
)

// method to convert from seconds to minutes:seconds.milliseconds
func SecondsToMinutes(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	minutes := int(seconds / 60)
	seconds = seconds - float64(minutes*60)
	milliseconds := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d.%03d", minutes, int(seconds), milliseconds)
}

// SecondsToGap renders a signed gap, right aligned to 9 characters.
func SecondsToGap(seconds float64) string {
	if seconds == 0 {
		return strings.Repeat(" ", 8) + "-"
	}
	diff := fmt.Sprintf("%+.3fs", seconds)
	if chars := len(diff); chars < 9 {
		diff = strings.Repeat(" ", 9-chars) + diff
	}
	return diff
}

func SecondsToHoursAndMinutes(seconds float64) string {
	if seconds <= 0 {
		seconds = 0
	}
	hours := int(seconds / 3600)
	seconds = seconds - float64(hours*3600)
	minutes := int(seconds / 60)
	return fmt.Sprintf("%02dh %02dm", hours, minutes)
}

// LapsToString shows a lap counter against its limit; negative totals are
// unlimited.
func LapsToString(current, total int) string {
	if total < 0 {
		return fmt.Sprintf("%d", current)
	}
	return fmt.Sprintf("%d/%d", current, total)
}

func DeltaToString(delta int) string {
	if delta == 0 {
		return "0"
	}
	return fmt.Sprintf("%+d", delta)
}

func GetDriverCodeName(name string) string {
	// first letter of the name plus the first two of the surname, upper case
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	words := strings.Fields(name)
	code := string([]rune(words[0])[0])
	if len(words) > 1 {
		surname := []rune(words[len(words)-1])
		if len(surname) > 2 {
			code += string(surname[:2])
		} else {
			code += string(surname)
		}
	} else {
		first := []rune(words[0])
		if len(first) > 2 {
			code += string(first[1:3])
		} else {
			code = string(first)
		}
	}
	return strings.ToUpper(code)
}
