// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package cluster_test

import (
	"context"
	"errors"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/version"
	fakediscovery "k8s.io/client-go/discovery/fake"
	"k8s.io/client-go/rest"
	clienttesting "k8s.io/client-go/testing"
	fakeclient "sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/gardener/kube-scanner/pkg/config"
	"github.com/gardener/kube-scanner/pkg/kubernetes/accessor"
	"github.com/gardener/kube-scanner/pkg/provider/cluster"
)

// minimal valid kubeconfig for testing
const testKubeconfig = `
apiVersion: v1
kind: Config
clusters:
- cluster:
    server: https://127.0.0.1:6443
  name: test
contexts:
- context:
    cluster: test
    user: test
  name: test
current-context: test
users:
- name: test
  user:
    token: dummytoken
`

type failingDiscovery struct {
	err error
}

func (d *failingDiscovery) ServerVersion() (*version.Info, error) {
	return nil, d.err
}

var _ = Describe("cluster", func() {
	Describe("#New", func() {
		It("should return error when no config is set", func() {
			_, err := cluster.New()
			Expect(err).To(MatchError("cluster config is nil"))
		})

		It("should create a provider from a client", func() {
			p, err := cluster.New(
				cluster.WithClient(fakeclient.NewClientBuilder().Build()),
				cluster.WithDiscovery(&fakediscovery.FakeDiscovery{Fake: &clienttesting.Fake{}}),
			)
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Accessor()).To(BeAssignableToTypeOf(&accessor.Accessor{}))
		})

		It("should retry listings when more than one attempt is configured", func() {
			p, err := cluster.New(
				cluster.WithClient(fakeclient.NewClientBuilder().Build()),
				cluster.WithDiscovery(&fakediscovery.FakeDiscovery{Fake: &clienttesting.Fake{}}),
				cluster.WithMaxRetries(3),
			)
			Expect(err).ToNot(HaveOccurred())

			lister := p.Accessor()
			Expect(lister).To(BeAssignableToTypeOf(&accessor.RetryableAccessor{}))
			Expect(lister.(*accessor.RetryableAccessor).MaxRetries).To(Equal(3))
		})
	})

	Describe("#FromConfig", func() {
		var tmpKubeconfig string

		BeforeEach(func() {
			GinkgoT().Setenv("KUBECONFIG", "")
			tmpKubeconfig = GinkgoT().TempDir() + "/kubeconfig"
			Expect(os.WriteFile(tmpKubeconfig, []byte(testKubeconfig), 0600)).To(Succeed())

			cluster.SetInClusterConfigFunc(func() (*rest.Config, error) {
				return nil, rest.ErrNotInCluster
			})
			DeferCleanup(func() {
				cluster.SetInClusterConfigFunc(rest.InClusterConfig)
			})
		})

		It("should use the configured kubeconfig path", func() {
			p, err := cluster.FromConfig(config.ProviderConfig{KubeconfigPath: tmpKubeconfig, QPS: 42, Burst: 84}, config.ScanConfig{})
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Config.Host).To(Equal("https://127.0.0.1:6443"))
			Expect(p.Config.BearerToken).To(Equal("dummytoken"))
			Expect(p.Config.QPS).To(Equal(float32(42)))
			Expect(p.Config.Burst).To(Equal(84))
		})

		It("should return error when the configured kubeconfig does not exist", func() {
			_, err := cluster.FromConfig(config.ProviderConfig{KubeconfigPath: tmpKubeconfig + "-missing"}, config.ScanConfig{})
			Expect(err).To(MatchError(ContainSubstring("failed to load kubeconfig")))
		})

		It("should prefer the in-cluster configuration over the KUBECONFIG environment variable", func() {
			GinkgoT().Setenv("KUBECONFIG", tmpKubeconfig)
			cluster.SetInClusterConfigFunc(func() (*rest.Config, error) {
				return &rest.Config{Host: "https://kubernetes.default.svc"}, nil
			})

			p, err := cluster.FromConfig(config.ProviderConfig{}, config.ScanConfig{})
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Config.Host).To(Equal("https://kubernetes.default.svc"))
		})

		It("should fall back to the KUBECONFIG environment variable", func() {
			GinkgoT().Setenv("KUBECONFIG", tmpKubeconfig)

			p, err := cluster.FromConfig(config.ProviderConfig{}, config.ScanConfig{})
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Config.Host).To(Equal("https://127.0.0.1:6443"))
		})

		It("should return error for an invalid namespace selector", func() {
			_, err := cluster.FromConfig(config.ProviderConfig{KubeconfigPath: tmpKubeconfig}, config.ScanConfig{
				Namespaces: config.NamespacesConfig{LabelSelector: "foo in (bar"},
			})
			Expect(err).To(MatchError(ContainSubstring("invalid namespace label selector")))
		})
	})

	Describe("#CheckConnectivity", func() {
		var (
			ctx         = context.TODO()
			newProvider = func(d interface {
				ServerVersion() (*version.Info, error)
			}) *cluster.Provider {
				p, err := cluster.New(cluster.WithClient(fakeclient.NewClientBuilder().Build()), cluster.WithDiscovery(d))
				Expect(err).ToNot(HaveOccurred())
				return p
			}
		)

		It("should return the server version", func() {
			p := newProvider(&fakediscovery.FakeDiscovery{
				Fake:               &clienttesting.Fake{},
				FakedServerVersion: &version.Info{GitVersion: "v1.31.3", Platform: "linux/amd64"},
			})

			info, err := p.CheckConnectivity(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(info).To(Equal(cluster.ServerInfo{GitVersion: "v1.31.3", Platform: "linux/amd64"}))
		})

		DescribeTable("should map connectivity errors",
			func(err error, expected error) {
				_, connErr := newProvider(&failingDiscovery{err: err}).CheckConnectivity(ctx)
				Expect(errors.Is(connErr, expected)).To(BeTrue())
				Expect(errors.Is(connErr, err)).To(BeTrue())
			},
			Entry("unauthorized", apierrors.NewUnauthorized("invalid token"), cluster.ErrUnauthorized),
			Entry("forbidden", apierrors.NewForbidden(schema.GroupResource{}, "", errors.New("denied")), cluster.ErrForbidden),
		)

		It("should wrap other errors", func() {
			_, err := newProvider(&failingDiscovery{err: errors.New("connection refused")}).CheckConnectivity(ctx)
			Expect(err).To(MatchError("failed to connect to the cluster: connection refused"))
		})
	})
})
