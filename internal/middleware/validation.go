package middleware

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"

	"github.com/Spunkeroo/scam-stream/internal/model"
)

// Field length limits for submitted reports, counted in characters.
const (
	MaxItemIDLen      = 64
	MaxNameLen        = 120
	MaxTypeLen        = 40
	MaxDescriptionLen = 2000
	MaxEvidenceLen    = 500
	MaxAliasLen       = 40
	// MaxScreenshotLen bounds one encoded screenshot data URL. Each screenshot
	// is stored as its own value and must fit DynamoDB's 400 KB item limit.
	MaxScreenshotLen = 128 << 10
)

const screenshotPrefix = "data:image/"

// itemIDRe matches fixture ids and promoted ids such as "c_1712345678901".
var itemIDRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateItemID checks a feed or database record id from the path.
func ValidateItemID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "id is required"
	}
	if len(id) > MaxItemIDLen {
		return "", "id must be at most 64 characters"
	}
	if !itemIDRe.MatchString(id) {
		return "", "id contains invalid characters"
	}
	return id, ""
}

// ValidateReportID parses a community report id.
func ValidateReportID(id string) (int64, string) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, "report id must be a positive integer"
	}
	return n, ""
}

// ValidateDirection checks a vote direction.
func ValidateDirection(dir string) (model.Direction, string) {
	d, ok := model.ParseDirection(strings.ToLower(strings.TrimSpace(dir)))
	if !ok {
		return model.DirectionNone, `direction must be "up" or "down"`
	}
	return d, ""
}

// ValidateSubmission checks field lengths and screenshot encoding. Required
// fields are checked by the registry, which owns their error codes.
// Screenshots past model.MaxScreenshots are dropped on submit and not checked.
func ValidateSubmission(req *model.SubmissionRequest) string {
	limits := []struct {
		field string
		value string
		max   int
	}{
		{"name", req.Name, MaxNameLen},
		{"type", req.Type, MaxTypeLen},
		{"quickType", req.QuickType, MaxTypeLen},
		{"description", req.Description, MaxDescriptionLen},
		{"evidence", req.Evidence, MaxEvidenceLen},
		{"alias", req.Alias, MaxAliasLen},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(strings.TrimSpace(l.value)) > l.max {
			return fmt.Sprintf("%s must be at most %d characters", l.field, l.max)
		}
	}
	shots := req.Screenshots
	if len(shots) > model.MaxScreenshots {
		shots = shots[:model.MaxScreenshots]
	}
	for i, s := range shots {
		if errMsg := ValidateScreenshot(s); errMsg != "" {
			return fmt.Sprintf("screenshot %d: %s", i+1, errMsg)
		}
	}
	return ""
}

// ValidateScreenshot checks that s is an image data URL within the size limit.
func ValidateScreenshot(s string) string {
	if !strings.HasPrefix(s, screenshotPrefix) {
		return "must be an image data URL"
	}
	if len(s) > MaxScreenshotLen {
		return "image is too large"
	}
	return ""
}
