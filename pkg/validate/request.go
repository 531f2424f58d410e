package validate

import (
	"strings"

	"github.com/eroom-dev/eroom/pkg/models"
)

const httpsPrefix = "https://"

// CheckRequest validates the shape of an inbound creation request.
// First violation wins; a passing request carries no warnings.
func CheckRequest(r *models.CreationRequest) Result {
	if strings.TrimSpace(r.UserID) == "" {
		return Result{Violation: violatef("uuid", "uuid is required")}
	}
	if strings.TrimSpace(r.Theme) == "" {
		return Result{Violation: violatef("theme", "theme is required")}
	}
	if len(r.Keywords) == 0 {
		return Result{Violation: violatef("keywords", "at least one keyword is required")}
	}
	for i, kw := range r.Keywords {
		if strings.TrimSpace(kw) == "" {
			return Result{Violation: violatef("keywords", "keyword at index %d is blank", i)}
		}
	}
	if strings.TrimSpace(r.RoomPrefab) == "" {
		return Result{Violation: violatef("roomPrefab", "roomPrefab is required")}
	}
	if !strings.HasPrefix(r.RoomPrefab, httpsPrefix) {
		return Result{Violation: violatef("roomPrefab",
			"roomPrefab must start with https://, got %q", r.RoomPrefab)}
	}
	if d := strings.TrimSpace(r.Difficulty); d != "" && !models.ValidDifficulty(strings.ToLower(d)) {
		return Result{Violation: violatef("difficulty",
			"difficulty must be easy, normal, or hard, got %q", r.Difficulty)}
	}
	return Result{}
}
