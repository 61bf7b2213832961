// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package workload

import (
	"slices"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	apiequality "k8s.io/apimachinery/pkg/api/equality"
	psaapi "k8s.io/pod-security-admission/api"
)

const (
	// DefaultServiceAccountName is the name of the service account used when a pod does not set one.
	DefaultServiceAccountName = "default"
	// SeccompPodAnnotationKey is the legacy pod level seccomp annotation.
	SeccompPodAnnotationKey = "seccomp.security.alpha.kubernetes.io/pod"
	// SeccompContainerAnnotationKeyPrefix is the prefix of the legacy container level seccomp annotation.
	SeccompContainerAnnotationKeyPrefix = "container.seccomp.security.alpha.kubernetes.io/"
)

// FromPod creates a [Pod] view from a pod object.
func FromPod(pod corev1.Pod) Pod {
	p := Pod{
		Namespace:                    pod.Namespace,
		Name:                         pod.Name,
		HostPID:                      pod.Spec.HostPID,
		HostIPC:                      pod.Spec.HostIPC,
		HostNetwork:                  pod.Spec.HostNetwork,
		ServiceAccountName:           pod.Spec.ServiceAccountName,
		AutomountServiceAccountToken: pod.Spec.AutomountServiceAccountToken,
		SecurityContext:              fromPodSecurityContext(pod.Spec.SecurityContext),
		SecretVolumes:                secretVolumes(pod.Spec.Volumes),
		SeccompAnnotation:            pod.Annotations[SeccompPodAnnotationKey],
		Containers:                   make([]Container, 0, len(pod.Spec.Containers)+len(pod.Spec.InitContainers)),
	}

	for _, c := range pod.Spec.Containers {
		p.Containers = append(p.Containers, fromContainer(c, false, pod.Annotations))
	}
	for _, c := range pod.Spec.InitContainers {
		p.Containers = append(p.Containers, fromContainer(c, true, pod.Annotations))
	}
	return p
}

// FromServiceAccount creates a [ServiceAccount] view from a service account object.
func FromServiceAccount(sa corev1.ServiceAccount) ServiceAccount {
	return ServiceAccount{
		Namespace:                    sa.Namespace,
		Name:                         sa.Name,
		AutomountServiceAccountToken: sa.AutomountServiceAccountToken,
	}
}

// FromNamespace creates a [Namespace] view from a namespace object and the network policies in it.
// An invalid or missing pod security enforce label results in an empty level.
func FromNamespace(namespace corev1.Namespace, networkPolicies []networkingv1.NetworkPolicy) Namespace {
	ns := Namespace{
		Name:            namespace.Name,
		NetworkPolicies: len(networkPolicies),
	}
	if value, ok := namespace.Labels[psaapi.EnforceLevelLabel]; ok {
		if level, err := psaapi.ParseLevel(value); err == nil {
			ns.PodSecurityEnforce = string(level)
		}
	}
	return ns
}

func fromContainer(c corev1.Container, init bool, annotations map[string]string) Container {
	return Container{
		Name:              c.Name,
		Image:             c.Image,
		Init:              init,
		SecurityContext:   fromSecurityContext(c.SecurityContext),
		SecretRefs:        envSecretRefs(c),
		SeccompAnnotation: annotations[SeccompContainerAnnotationKeyPrefix+c.Name],
	}
}

func fromSecurityContext(sc *corev1.SecurityContext) *SecurityContext {
	if sc == nil || apiequality.Semantic.DeepEqual(*sc, corev1.SecurityContext{}) {
		return nil
	}

	res := &SecurityContext{
		RunAsUser:                sc.RunAsUser,
		RunAsNonRoot:             sc.RunAsNonRoot,
		Privileged:               sc.Privileged,
		AllowPrivilegeEscalation: sc.AllowPrivilegeEscalation,
		SeccompProfile:           seccompProfileType(sc.SeccompProfile),
	}
	if sc.ProcMount != nil {
		res.ProcMount = string(*sc.ProcMount)
	}
	if sc.Capabilities != nil {
		res.CapabilitiesAdd = normalizeCapabilities(sc.Capabilities.Add)
		res.CapabilitiesDrop = normalizeCapabilities(sc.Capabilities.Drop)
	}
	return res
}

func fromPodSecurityContext(sc *corev1.PodSecurityContext) *PodSecurityContext {
	if sc == nil || apiequality.Semantic.DeepEqual(*sc, corev1.PodSecurityContext{}) {
		return nil
	}

	return &PodSecurityContext{
		RunAsUser:      sc.RunAsUser,
		RunAsNonRoot:   sc.RunAsNonRoot,
		SeccompProfile: seccompProfileType(sc.SeccompProfile),
	}
}

func seccompProfileType(profile *corev1.SeccompProfile) *string {
	if profile == nil || len(profile.Type) == 0 {
		return nil
	}
	t := string(profile.Type)
	return &t
}

func normalizeCapabilities(capabilities []corev1.Capability) []string {
	if len(capabilities) == 0 {
		return nil
	}
	res := make([]string, 0, len(capabilities))
	for _, c := range capabilities {
		res = append(res, NormalizeCapability(string(c)))
	}
	return res
}

func secretVolumes(volumes []corev1.Volume) []string {
	var secrets []string
	for _, v := range volumes {
		switch {
		case v.Secret != nil:
			secrets = append(secrets, v.Secret.SecretName)
		case v.Projected != nil:
			for _, source := range v.Projected.Sources {
				if source.Secret != nil {
					secrets = append(secrets, source.Secret.Name)
				}
			}
		}
	}
	return secrets
}

func envSecretRefs(c corev1.Container) []string {
	var secrets []string
	for _, envFrom := range c.EnvFrom {
		if envFrom.SecretRef != nil && !slices.Contains(secrets, envFrom.SecretRef.Name) {
			secrets = append(secrets, envFrom.SecretRef.Name)
		}
	}
	for _, env := range c.Env {
		if env.ValueFrom != nil && env.ValueFrom.SecretKeyRef != nil && !slices.Contains(secrets, env.ValueFrom.SecretKeyRef.Name) {
			secrets = append(secrets, env.ValueFrom.SecretKeyRef.Name)
		}
	}
	return secrets
}
