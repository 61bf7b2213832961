// SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package rule

var _ Rule = &SkipRule{}
var _ Severity = &SkipRule{}

// SkipRule is a Rule that is registered but never evaluated.
type SkipRule struct {
	id            string
	name          string
	severity      SeverityLevel
	justification string
}

// NewSkipRule returns a new skipped Rule.
func NewSkipRule(id, name, justification string, severity SeverityLevel) *SkipRule {
	return &SkipRule{
		id:            id,
		name:          name,
		severity:      severity,
		justification: justification,
	}
}

// ID returns the id of the Rule.
func (s *SkipRule) ID() string {
	return s.id
}

// Name returns the name of the Rule.
func (s *SkipRule) Name() string {
	return s.name
}

// Severity returns the severity level of the Rule
func (s *SkipRule) Severity() SeverityLevel {
	return s.severity
}

// Justification returns the reason for skipping the Rule.
func (s *SkipRule) Justification() string {
	return s.justification
}
