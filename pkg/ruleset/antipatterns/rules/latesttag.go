// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"strings"

	"github.com/distribution/reference"

	"github.com/gardener/kube-scanner/pkg/rule"
	"github.com/gardener/kube-scanner/pkg/workload"
)

var (
	_ rule.ContainerRule = &RuleLatestTag{}
	_ rule.Severity      = &RuleLatestTag{}
)

const (
	// IDLatestTag is the id of the latest tag rule.
	IDLatestTag = "latest-tag"

	latestTag = "latest"
)

// RuleLatestTag reports containers whose image has no tag or uses the latest tag.
// Images pinned by digest are never reported.
type RuleLatestTag struct{}

func (r *RuleLatestTag) ID() string {
	return IDLatestTag
}

func (r *RuleLatestTag) Name() string {
	return "Containers should not use the latest image tag."
}

func (r *RuleLatestTag) Severity() rule.SeverityLevel {
	return rule.SeverityMedium
}

func (r *RuleLatestTag) CheckContainer(pod workload.Pod, container workload.Container) []rule.Violation {
	image, ok := LatestTagImage(container.Image)
	if !ok {
		return nil
	}

	return []rule.Violation{{
		Ref:         rule.ContainerRef(pod, container),
		RuleID:      r.ID(),
		Category:    rule.CategoryLatestTag,
		Severity:    r.Severity(),
		Description: "Container image uses the mutable latest tag, so the running version is not reproducible",
		Remediation: "Pin the image to a specific version tag or digest.",
		Image:       image,
	}}
}

// LatestTagImage reports whether the image refers to the latest tag and returns
// the image with the implied latest tag made explicit.
func LatestTagImage(image string) (string, bool) {
	if len(image) == 0 {
		return "", false
	}

	tag, digested := imageTag(image)
	switch {
	case digested:
		return "", false
	case len(tag) == 0:
		return image + ":" + latestTag, true
	case tag == latestTag:
		return image, true
	default:
		return "", false
	}
}

func imageTag(image string) (string, bool) {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		// not a valid reference, e.g. upper case repositories
		if strings.Contains(image, "@") {
			return "", true
		}
		lastSlash := strings.LastIndex(image, "/")
		if i := strings.LastIndex(image, ":"); i > lastSlash {
			return image[i+1:], false
		}
		return "", false
	}

	if _, ok := named.(reference.Digested); ok {
		return "", true
	}
	if tagged, ok := named.(reference.Tagged); ok {
		return tagged.Tag(), false
	}
	return "", false
}
