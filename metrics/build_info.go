package metrics

import "github.com/prometheus/client_golang/prometheus"

// RegisterBuildInfo 注册构建信息指标。
func (m *Metrics) RegisterBuildInfo(version string) {
	if m == nil || m.BuildInfo != nil {
		return
	}
	service := m.service
	if service == "" {
		service = "unknown"
	}
	if version == "" {
		version = "unknown"
	}

	m.BuildInfo = m.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "build_info",
		Help:      "Build information for the service",
	}, []string{"service", "version"})

	m.BuildInfo.WithLabelValues(service, version).Set(1)
}
