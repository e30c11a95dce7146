package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/go-logr/logr"

	"github.com/nemoctl/nemoctl/internal/charts"
)

// indexYAML is a minimal Helm repository index listing the primary chart
// in two versions plus one component chart.
const indexYAML = `apiVersion: v1
entries:
  nemo-microservices-helm-chart:
    - name: nemo-microservices-helm-chart
      version: 1.2.0
      urls:
        - charts/nemo-microservices-helm-chart-1.2.0.tgz
    - name: nemo-microservices-helm-chart
      version: 1.1.0
      urls:
        - charts/nemo-microservices-helm-chart-1.1.0.tgz
  nemo-guardrails:
    - name: nemo-guardrails
      version: 0.9.0
      urls:
        - charts/nemo-guardrails-0.9.0.tgz
`

var _ = Describe("chart resolution against a live repository", func() {
	var (
		server   *httptest.Server
		resolver *charts.Resolver
	)

	BeforeEach(func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/index.yaml", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/x-yaml")
			_, _ = w.Write([]byte(indexYAML))
		})
		server = httptest.NewServer(mux)

		resolver = charts.NewResolver(logr.Discard(), charts.WithQueryTimeout(10*time.Second))
	})

	AfterEach(func() {
		server.Close()
	})

	It("finds the newest version of the primary chart", func() {
		repo := charts.NewHelmRepository("local", server.URL,
			charts.WithCacheDir(GinkgoT().TempDir()))

		res := resolver.Resolve(context.Background(), []charts.Repository{repo},
			"nemo-microservices-helm-chart", nil)

		Expect(res.Status).To(Equal(charts.StatusFound))
		Expect(res.Chosen).NotTo(BeNil())
		Expect(res.Chosen.Name).To(Equal("nemo-microservices-helm-chart"))
		Expect(res.Chosen.Version).To(Equal("1.2.0"))
		Expect(res.Chosen.Repository).To(Equal("local"))
	})

	It("tolerates an unreachable second repository", func() {
		good := charts.NewHelmRepository("local", server.URL,
			charts.WithCacheDir(GinkgoT().TempDir()))
		bad := charts.NewHelmRepository("down", "http://127.0.0.1:1",
			charts.WithCacheDir(GinkgoT().TempDir()))

		res := resolver.Resolve(context.Background(), []charts.Repository{good, bad},
			"nemo-microservices-helm-chart", nil)

		Expect(res.Status).To(Equal(charts.StatusFound))
	})

	It("reports NotFound with the full index as candidates", func() {
		repo := charts.NewHelmRepository("local", server.URL,
			charts.WithCacheDir(GinkgoT().TempDir()))

		res := resolver.Resolve(context.Background(), []charts.Repository{repo},
			"no-such-chart", nil)

		Expect(res.Status).To(Equal(charts.StatusNotFound))
		Expect(res.Candidates).NotTo(BeEmpty())
	})
})
