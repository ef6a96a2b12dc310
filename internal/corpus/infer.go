package corpus

import (
	"strings"

	"helpdesk-triage/internal/models"
)

// InferCategory maps a section title or database key to a request category
// by keyword matching. Keywords are checked in a fixed order so the result
// is deterministic when several keywords appear; anything unrecognized is
// treated as a policy question.
func InferCategory(title string) models.RequestCategory {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "password"):
		return models.CategoryPasswordReset
	case strings.Contains(t, "network"), strings.Contains(t, "wifi"):
		return models.CategoryNetworkConnectivity
	case strings.Contains(t, "email"):
		return models.CategoryEmailConfiguration
	case strings.Contains(t, "software"), strings.Contains(t, "installation"):
		return models.CategorySoftwareInstallation
	case strings.Contains(t, "hardware"):
		return models.CategoryHardwareFailure
	case strings.Contains(t, "security"):
		return models.CategorySecurityIncident
	default:
		return models.CategoryPolicyQuestion
	}
}
