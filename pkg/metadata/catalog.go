// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/gardener/kube-scanner/pkg/rule"
)

const (
	// BenchmarkID is the identifier of the supported benchmark.
	BenchmarkID = "cis-kubernetes"
	// BenchmarkName is the user-friendly name of the supported benchmark.
	BenchmarkName = "CIS Kubernetes Benchmark"
)

var (
	// SupportedVersions contains all catalog versions, latest first.
	SupportedVersions = []string{"v1.9.0"}

	catalogs = map[string]map[string]Control{
		"v1.9.0": controlsV190,
	}
)

// Catalog is a static, read-only set of benchmark controls.
type Catalog struct {
	benchmark Benchmark
	controls  map[string]Control
}

// New returns the Catalog of the given benchmark version.
func New(version string) (*Catalog, error) {
	controls, ok := catalogs[version]
	if !ok {
		return nil, fmt.Errorf("unsupported benchmark version: %s", version)
	}
	return &Catalog{
		benchmark: Benchmark{
			ID:      BenchmarkID,
			Name:    BenchmarkName,
			Version: version,
		},
		controls: controls,
	}, nil
}

// Default returns the Catalog of the latest supported benchmark version.
func Default() *Catalog {
	c, err := New(SupportedVersions[0])
	if err != nil {
		panic(err)
	}
	return c
}

// Benchmark returns the benchmark the catalog describes.
func (c *Catalog) Benchmark() Benchmark {
	return c.benchmark
}

// Lookup returns the control with the given id.
func (c *Catalog) Lookup(id string) (Control, bool) {
	control, ok := c.controls[id]
	return control, ok
}

// MustLookup returns the control with the given id and panics if it is not part of the catalog.
func (c *Catalog) MustLookup(id string) Control {
	control, ok := c.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("control %s is not part of benchmark version %s", id, c.benchmark.Version))
	}
	return control
}

// Controls returns all controls ordered by their id.
func (c *Catalog) Controls() []Control {
	controls := slices.Collect(maps.Values(c.controls))
	slices.SortFunc(controls, func(a, b Control) int {
		return CompareControlIDs(a.ID, b.ID)
	})
	return controls
}

// Detailed returns the benchmark with all supported versions.
func Detailed() BenchmarkDetailed {
	versions := make([]Version, 0, len(SupportedVersions))
	for i, v := range SupportedVersions {
		versions = append(versions, Version{Version: v, Latest: i == 0})
	}
	return BenchmarkDetailed{
		ID:       BenchmarkID,
		Name:     BenchmarkName,
		Versions: versions,
	}
}

// ResolveVersion returns the newest supported benchmark version that
// satisfies the given semver constraint. An empty constraint resolves
// to the latest version.
func ResolveVersion(constraint string) (string, error) {
	if len(constraint) == 0 {
		return SupportedVersions[0], nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return "", fmt.Errorf("invalid benchmark version constraint %s: %w", constraint, err)
	}

	var matching []*semver.Version
	for _, v := range SupportedVersions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			return "", err
		}
		if c.Check(sv) {
			matching = append(matching, sv)
		}
	}
	if len(matching) == 0 {
		return "", fmt.Errorf("no supported benchmark version matches %s", constraint)
	}

	slices.SortFunc(matching, func(a, b *semver.Version) int {
		return b.Compare(a)
	})
	return matching[0].Original(), nil
}

// CompareControlIDs compares dotted control ids numerically.
func CompareControlIDs(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < min(len(as), len(bs)); i++ {
		ai, aErr := strconv.Atoi(as[i])
		bi, bErr := strconv.Atoi(bs[i])
		if aErr != nil || bErr != nil {
			if r := cmp.Compare(as[i], bs[i]); r != 0 {
				return r
			}
			continue
		}
		if r := cmp.Compare(ai, bi); r != 0 {
			return r
		}
	}
	return cmp.Compare(len(as), len(bs))
}

var controlsV190 = map[string]Control{
	"5.1.4": {
		ID:          "5.1.4",
		Title:       "Minimize access to secrets",
		Level:       rule.LevelOne,
		Severity:    rule.SeverityMedium,
		Category:    rule.CategoryCISCompliance,
		Description: "Pod exposes secrets to its containers which may provide unnecessary access to sensitive data",
		Remediation: "Review if this secret mount is necessary and remove if not required. Use least privilege principle for secret access.",
	},
	"5.1.6": {
		ID:          "5.1.6",
		Title:       "Ensure that Service Account Tokens are only mounted where necessary",
		Level:       rule.LevelOne,
		Severity:    rule.SeverityMedium,
		Category:    rule.CategoryServiceAccount,
		Description: "Service account tokens are mounted automatically",
		Remediation: "Set 'automountServiceAccountToken: false' unless the pod specifically needs Kubernetes API access.",
	},
	"5.2.1": {
		ID:          "5.2.1",
		Title:       "Minimize the admission of privileged containers",
		Level:       rule.LevelOne,
		Severity:    rule.SeverityCritical,
		Category:    rule.CategoryCISCompliance,
		Description: "Container is running in privileged mode, which grants access to all host devices and bypasses security mechanisms",
		Remediation: "Remove 'privileged: true' from container security context. Run containers with minimal privileges required.",
	},
	"5.2.2": {
		ID:          "5.2.2",
		Title:       "Minimize the admission of containers wishing to share the host process ID namespace",
		Level:       rule.LevelOne,
		Severity:    rule.SeverityHigh,
		Category:    rule.CategoryCISCompliance,
		Description: "Pod is sharing the host process ID namespace, which allows visibility into host processes",
		Remediation: "Remove 'hostPID: true' from pod specification unless absolutely necessary for the application function.",
	},
	"5.2.3": {
		ID:          "5.2.3",
		Title:       "Minimize the admission of containers wishing to share the host IPC namespace",
		Level:       rule.LevelOne,
		Severity:    rule.SeverityHigh,
		Category:    rule.CategoryCISCompliance,
		Description: "Pod is sharing the host IPC namespace, which allows access to host inter-process communication",
		Remediation: "Remove 'hostIPC: true' from pod specification unless required for specific application needs.",
	},
	"5.2.4": {
		ID:          "5.2.4",
		Title:       "Minimize the admission of containers wishing to share the host network namespace",
		Level:       rule.LevelOne,
		Severity:    rule.SeverityHigh,
		Category:    rule.CategoryCISCompliance,
		Description: "Pod is using the host network namespace, which provides access to the host's network interfaces",
		Remediation: "Remove 'hostNetwork: true' from pod specification. Use Kubernetes services and ingress for network access.",
	},
	"5.2.5": {
		ID:          "5.2.5",
		Title:       "Minimize the admission of containers with allowPrivilegeEscalation",
		Level:       rule.LevelOne,
		Severity:    rule.SeverityHigh,
		Category:    rule.CategoryCISCompliance,
		Description: "Container allows privilege escalation, which can be used to gain additional privileges",
		Remediation: "Set 'allowPrivilegeEscalation: false' in container security context.",
	},
	"5.2.7": {
		ID:          "5.2.7",
		Title:       "Minimize the admission of containers with the NET_RAW capability",
		Level:       rule.LevelOne,
		Severity:    rule.SeverityMedium,
		Category:    rule.CategoryCISCompliance,
		Description: "Container has NET_RAW capability, which allows raw socket access and network packet manipulation",
		Remediation: "Drop NET_RAW or ALL capabilities and do not add NET_RAW unless specifically required for network operations.",
	},
	"5.2.8": {
		ID:          "5.2.8",
		Title:       "Minimize the admission of containers with added capabilities",
		Level:       rule.LevelOne,
		Severity:    rule.SeverityMedium,
		Category:    rule.CategoryCISCompliance,
		Description: "Container has added capabilities",
		Remediation: "Remove unnecessary capabilities from the container. Use principle of least privilege.",
	},
	"5.2.9": {
		ID:          "5.2.9",
		Title:       "Minimize the admission of containers with capabilities assigned",
		Level:       rule.LevelTwo,
		Severity:    rule.SeverityLow,
		Category:    rule.CategoryCISCompliance,
		Description: "Container has a capability assigned",
		Remediation: "Add 'drop: [\"ALL\"]' to container capabilities and only add back required ones.",
	},
	"5.3.2": {
		ID:          "5.3.2",
		Title:       "Ensure that all Namespaces have Network Policies defined",
		Level:       rule.LevelOne,
		Severity:    rule.SeverityMedium,
		Category:    rule.CategoryNetworkPolicy,
		Description: "Namespace has no network policies defined, allowing unrestricted network access",
		Remediation: "Create network policies to restrict ingress and egress traffic for pods in this namespace.",
	},
	"5.7.2": {
		ID:          "5.7.2",
		Title:       "Ensure that the seccomp profile is set to docker/default in your pod definitions",
		Level:       rule.LevelOne,
		Severity:    rule.SeverityMedium,
		Category:    rule.CategoryCISCompliance,
		Description: "No seccomp profile is set, which allows unrestricted system calls",
		Remediation: "Set seccomp profile to 'RuntimeDefault' or 'Localhost' with appropriate profile.",
	},
	"5.7.3": {
		ID:          "5.7.3",
		Title:       "Apply Security Context to Your Pods and Containers",
		Level:       rule.LevelOne,
		Severity:    rule.SeverityHigh,
		Category:    rule.CategoryCISCompliance,
		Description: "No security context is defined for pod or container",
		Remediation: "Define security context with appropriate settings: runAsNonRoot, runAsUser, fsGroup, etc.",
	},
	"5.7.4": {
		ID:          "5.7.4",
		Title:       "The default namespace should not be used",
		Level:       rule.LevelOne,
		Severity:    rule.SeverityLow,
		Category:    rule.CategoryCISCompliance,
		Description: "Pod is deployed in the default namespace, which is not recommended for production workloads",
		Remediation: "Create dedicated namespaces for different applications and environments instead of using 'default'.",
	},
}
