package models

import "strings"

// RequestCategory is the closed set of issue categories a support request
// can be assigned to. The declaration order is significant: classification
// ties are broken in favor of the first-declared category.
type RequestCategory string

const (
	CategoryPasswordReset        RequestCategory = "password_reset"
	CategorySoftwareInstallation RequestCategory = "software_installation"
	CategoryHardwareFailure      RequestCategory = "hardware_failure"
	CategoryNetworkConnectivity  RequestCategory = "network_connectivity"
	CategoryEmailConfiguration   RequestCategory = "email_configuration"
	CategorySecurityIncident     RequestCategory = "security_incident"
	CategoryPolicyQuestion       RequestCategory = "policy_question"
)

// Categories lists every request category in tie-break order.
var Categories = []RequestCategory{
	CategoryPasswordReset,
	CategorySoftwareInstallation,
	CategoryHardwareFailure,
	CategoryNetworkConnectivity,
	CategoryEmailConfiguration,
	CategorySecurityIncident,
	CategoryPolicyQuestion,
}

// ParseCategory maps a raw category name to its enum value.
func ParseCategory(s string) (RequestCategory, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Human returns the category name with underscores replaced by spaces,
// for user-facing messages.
func (c RequestCategory) Human() string {
	return strings.ReplaceAll(string(c), "_", " ")
}
