package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorResponse creates a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"error":   message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	return c.Status(status).JSON(response)
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// ParseBody decodes a JSON request body into dst, rejecting unknown fields.
// Every mutation endpoint goes through this so payloads with unexpected keys
// fail loudly instead of being silently dropped.
func ParseBody(c *fiber.Ctx, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// LogEvent logs an event with structured data
func LogEvent(eventType string, data map[string]interface{}) {
	logrus.WithFields(logrus.Fields(data)).Info(eventType)
}

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}

var (
	scriptTagPattern    = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	eventHandlerPattern = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// SanitizeText strips script tags and inline event handlers from free-text
// input before it is persisted.
func SanitizeText(s string) string {
	s = scriptTagPattern.ReplaceAllString(s, "")
	s = eventHandlerPattern.ReplaceAllString(s, "")
	return s
}

// ParseDateOnly parses a calendar date in YYYY-MM-DD form.
func ParseDateOnly(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// FormatTimeAgo formats a timestamp as a human-readable relative string.
func FormatTimeAgo(t time.Time, now time.Time) string {
	seconds := int(now.Sub(t).Seconds())

	if seconds < 60 {
		return "just now"
	}
	if seconds < 3600 {
		minutes := seconds / 60
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	}
	if seconds < 86400 {
		hours := seconds / 3600
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	if seconds < 604800 {
		days := seconds / 86400
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
	return t.Format("Jan 2, 2006")
}
