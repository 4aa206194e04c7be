package util

import (
	"fmt"
	"regexp"
	"time"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateSlug checks catalog identifiers such as "polygon-basics".
func ValidateSlug(id string) error {
	if id == "" {
		return fmt.Errorf("id is empty")
	}
	if len(id) > 64 {
		return fmt.Errorf("id too long, max 64 characters")
	}
	if !slugRe.MatchString(id) {
		return fmt.Errorf("invalid id %q", id)
	}
	return nil
}

// ValidatePercent checks a completion percentage.
func ValidatePercent(p int) error {
	if p < 0 || p > 100 {
		return fmt.Errorf("percent must be within 0-100, got %d", p)
	}
	return nil
}

// ValidateDate 验证日期格式（必须为 YYYY-MM-DD）
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}
