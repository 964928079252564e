package util

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatMoney renders an amount in rupees for user-facing messages.
// Example: 125000 -> "₹125,000".
func FormatMoney(amount int64) string {
	return fmt.Sprintf("₹%s", humanize.Comma(amount))
}

// TruncateContent shortens long free-text fields for notification payloads.
func TruncateContent(content string, maxLength int) string {
	if len(content) <= maxLength {
		return content
	}
	return content[:maxLength] + "..."
}

func BoolPointer(b bool) *bool {
	return &b
}

func StringPointer(s string) *string {
	return &s
}

func Int64Pointer(i int64) *int64 {
	return &i
}

func TimePointer(t time.Time) *time.Time {
	return &t
}
