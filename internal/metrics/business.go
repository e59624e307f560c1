package metrics

// IncrementProjectCreated increments project creation counter
func (m *Metrics) IncrementProjectCreated() {
	m.safeExecute("IncrementProjectCreated", func() {
		m.ProjectCreatedTotal.Inc()
	})
}

// SetProjectsTotal sets total projects gauge
func (m *Metrics) SetProjectsTotal(count int64) {
	m.safeExecute("SetProjectsTotal", func() {
		m.ProjectsTotal.Set(float64(count))
	})
}

// SetActiveSubscriptionsTotal sets the active subscriptions gauge
func (m *Metrics) SetActiveSubscriptionsTotal(count int64) {
	m.safeExecute("SetActiveSubscriptionsTotal", func() {
		m.ActiveSubscriptionsTotal.Set(float64(count))
	})
}

// RecordPresenceReport counts one heartbeat write
func (m *Metrics) RecordPresenceReport(err error) {
	m.safeExecute("RecordPresenceReport", func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.PresenceReportsTotal.WithLabelValues(result).Inc()
	})
}

// PresenceSessionOpened and PresenceSessionClosed track live streams
func (m *Metrics) PresenceSessionOpened() {
	m.safeExecute("PresenceSessionOpened", func() {
		m.PresenceSessionsOpen.Inc()
	})
}

func (m *Metrics) PresenceSessionClosed() {
	m.safeExecute("PresenceSessionClosed", func() {
		m.PresenceSessionsOpen.Dec()
	})
}

// RecordJobSubmitted counts a job invocation. outcome is "success",
// "rejected" (platform answered success=false) or "error".
func (m *Metrics) RecordJobSubmitted(job, outcome string) {
	m.safeExecute("RecordJobSubmitted", func() {
		m.JobsSubmittedTotal.WithLabelValues(job, outcome).Inc()
	})
}

// RecordUpload counts an upload attempt
func (m *Metrics) RecordUpload(backend string, err error) {
	m.safeExecute("RecordUpload", func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.UploadsTotal.WithLabelValues(backend, result).Inc()
	})
}

// RecordDownload counts an installer download
func (m *Metrics) RecordDownload(platform string) {
	m.safeExecute("RecordDownload", func() {
		m.DownloadsTotal.WithLabelValues(platform).Inc()
	})
}
