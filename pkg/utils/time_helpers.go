package utils

import (
	"fmt"
	"strings"
	"time"
)

const DateTimeLayout = "2006-01-02 15:04:05"

// FormatSecondsToHumanReadable преобразует секунды в строку вида "1д 2ч 3м 4с".
func FormatSecondsToHumanReadable(totalSeconds uint64) string {
	if totalSeconds == 0 {
		return "0с"
	}

	days := totalSeconds / (24 * 3600)
	totalSeconds %= (24 * 3600)
	hours := totalSeconds / 3600
	totalSeconds %= 3600
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dд", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dч", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dм", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dс", seconds))
	}

	return strings.Join(parts, " ")
}

func FormatTime(t time.Time) string {
	return t.Local().Format(DateTimeLayout)
}

func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}
