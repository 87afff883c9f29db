package redact

import "github.com/emenda-labs/warden/core/model"

// DefaultPolicies returns the out-of-box policy set. Order matters:
// policies run in this order and it is preserved verbatim in every
// Engine built from this slice.
func DefaultPolicies() []model.Policy {
	return []model.Policy{
		{
			ID:       "aws-access-key",
			Name:     "AWS access key",
			Type:     model.PolicyTypeSecret,
			Enabled:  true,
			Patterns: []string{`AKIA[0-9A-Z]{16}`},
			Action:   model.ActionRedact,
			Severity: model.SeverityCritical,
		},
		{
			ID:       "private-key-header",
			Name:     "Private key header",
			Type:     model.PolicyTypeSecret,
			Enabled:  true,
			Patterns: []string{`-----BEGIN (RSA |EC |DSA )?PRIVATE KEY-----`},
			Action:   model.ActionRedact,
			Severity: model.SeverityCritical,
		},
		{
			ID:       "oauth-token",
			Name:     "OAuth token",
			Type:     model.PolicyTypeSecret,
			Enabled:  true,
			Patterns: []string{`ya29\.[0-9A-Za-z_-]+`, `gho_[0-9A-Za-z]{36}`},
			Action:   model.ActionRedact,
			Severity: model.SeverityCritical,
		},
		{
			ID:       "github-token",
			Name:     "GitHub token",
			Type:     model.PolicyTypeSecret,
			Enabled:  true,
			Patterns: []string{`gh[pousr]_[A-Za-z0-9_]{36,}`},
			Action:   model.ActionRedact,
			Severity: model.SeverityCritical,
		},
		{
			ID:       "api-key-assignment",
			Name:     "API key assignment",
			Type:     model.PolicyTypeSecret,
			Enabled:  true,
			Patterns: []string{`(?i)api[_-]?key\s*[:=]\s*['"]?[0-9A-Za-z]{20,}['"]?`},
			Action:   model.ActionRedact,
			Severity: model.SeverityHigh,
		},
		{
			ID:       "password-assignment",
			Name:     "Password assignment",
			Type:     model.PolicyTypeSecret,
			Enabled:  true,
			Patterns: []string{`(?i)(password|passwd|pwd)\s*[:=]\s*['"]?\S{8,}['"]?`},
			Action:   model.ActionRedact,
			Severity: model.SeverityHigh,
		},
		{
			ID:       "jwt",
			Name:     "JSON web token",
			Type:     model.PolicyTypeSecret,
			Enabled:  true,
			Patterns: []string{`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`},
			Action:   model.ActionRedact,
			Severity: model.SeverityHigh,
		},
		{
			ID:       "bearer-token",
			Name:     "Bearer token",
			Type:     model.PolicyTypeSecret,
			Enabled:  true,
			Patterns: []string{`(?i)Bearer\s+[A-Za-z0-9._-]{10,}`},
			Action:   model.ActionRedact,
			Severity: model.SeverityHigh,
		},
		{
			ID:       "credit-card",
			Name:     "Credit card number",
			Type:     model.PolicyTypePII,
			Enabled:  true,
			Patterns: []string{`\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{4}`},
			Action:   model.ActionRedact,
			Severity: model.SeverityHigh,
		},
		{
			ID:       "ssn",
			Name:     "Social security number",
			Type:     model.PolicyTypePII,
			Enabled:  true,
			Patterns: []string{`\d{3}-\d{2}-\d{4}`},
			Action:   model.ActionRedact,
			Severity: model.SeverityHigh,
		},
		{
			ID:       "email",
			Name:     "Email address",
			Type:     model.PolicyTypePII,
			Enabled:  true,
			Patterns: []string{`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`},
			Action:   model.ActionRedact,
			Severity: model.SeverityMedium,
		},
		{
			ID:       "phone-us",
			Name:     "US phone number",
			Type:     model.PolicyTypePII,
			Enabled:  true,
			Patterns: []string{`\(?\d{3}\)?[ .-]?\d{3}[ .-]?\d{4}`},
			Action:   model.ActionWarn,
			Severity: model.SeverityMedium,
		},
		{
			ID:       "ipv4",
			Name:     "IPv4 address",
			Type:     model.PolicyTypePII,
			Enabled:  false,
			Patterns: []string{`\b(?:\d{1,3}\.){3}\d{1,3}\b`},
			Action:   model.ActionWarn,
			Severity: model.SeverityLow,
		},
	}
}
