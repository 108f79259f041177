//go:build e2e

package e2e

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/imamik/akslab/cmd/akslab/handlers"
	"github.com/imamik/akslab/internal/blueprint"
	"github.com/imamik/akslab/internal/k8s"
	"github.com/imamik/akslab/internal/labstate"
	"github.com/imamik/akslab/internal/platform/azure"
	"github.com/imamik/akslab/internal/util/netutil"
)

var _ = Describe("Lab lifecycle", Ordered, func() {
	var (
		record *labstate.Record
		client *azure.RealClient
	)

	BeforeAll(func() {
		cred, err := azure.NewCredential()
		Expect(err).NotTo(HaveOccurred())
		client, err = azure.NewRealClient(subscriptionID, cred)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if record == nil {
			return
		}
		// Best effort cleanup when a spec in the middle failed.
		ctx, cancel := withTimeout(destroyTimeout)
		defer cancel()
		if exists, err := client.ResourceGroupExists(ctx, record.ResourceGroup); err == nil && exists {
			GinkgoWriter.Printf("Cleaning up leftover lab %s\n", record.Suffix)
			_ = handlers.Destroy(ctx, handlers.DestroyOptions{Suffix: record.Suffix, Yes: true, PurgeVault: true})
		}
	})

	It("deploys a new lab", func() {
		ctx, cancel := withTimeout(deployTimeout)
		defer cancel()

		By("running the deploy pipeline")
		err := handlers.Deploy(ctx, deployOptions())
		record = latestRecord()
		Expect(err).NotTo(HaveOccurred())
		Expect(record.Status).To(BeElementOf(labstate.StatusDeployed, labstate.StatusDegraded))

		By("recording the resource group outputs")
		Expect(record.Outputs).To(HaveKeyWithValue(blueprint.OutputClusterName, record.ClusterName))
		Expect(record.Outputs).To(HaveKey(blueprint.OutputKeyVaultURI))
		Expect(record.Outputs).To(HaveKey(blueprint.OutputRegistry))
	})

	It("creates the resource group", func() {
		ctx, cancel := withTimeout(time.Minute)
		defer cancel()

		exists, err := client.ResourceGroupExists(ctx, record.ResourceGroup)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeTrue())
	})

	It("exposes the API server to the authorized IP", func() {
		fqdn := record.Outputs[blueprint.OutputClusterFqdn]
		Expect(fqdn).NotTo(BeEmpty())

		ctx, cancel := withTimeout(netutil.APIServerWaitTimeout)
		defer cancel()
		Expect(netutil.WaitForPort(ctx, fqdn, 443, netutil.APIServerWaitTimeout, 10*time.Second)).To(Succeed())
	})

	It("writes a working kubeconfig", func() {
		if record.Status != labstate.StatusDeployed {
			Skip("lab is degraded, credentials may not have been fetched")
		}
		Expect(record.Kubeconfig).To(BeAnExistingFile())

		c, err := k8s.NewFromKubeconfigFile(record.Kubeconfig)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := withTimeout(10 * time.Minute)
		defer cancel()
		Eventually(func(g Gomega) {
			ready, total, err := c.NodeStatus(ctx)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(total).To(BeNumerically(">=", 2))
			g.Expect(ready).To(Equal(total))
		}).WithContext(ctx).WithPolling(15 * time.Second).Should(Succeed())
	})

	It("writes stage metrics", func() {
		data, err := os.ReadFile(deployOptions().MetricsFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`akslab_pipeline_stage_total{outcome="ok",stage="deploy-rg"} 1`))
	})

	It("destroys the lab", func() {
		ctx, cancel := withTimeout(destroyTimeout)
		defer cancel()

		err := handlers.Destroy(ctx, handlers.DestroyOptions{Suffix: record.Suffix, Yes: true, PurgeVault: true})
		Expect(err).NotTo(HaveOccurred())

		exists, err := client.ResourceGroupExists(ctx, record.ResourceGroup)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeFalse())

		_, err = labstate.Store{Dir: stateDir}.Load(record.Suffix)
		Expect(err).To(MatchError(labstate.ErrNotFound))
		record = nil
	})
})
