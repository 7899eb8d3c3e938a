package hermes

const (
	SubjectRunRequest = "ftopsis.run.request"
	SubjectStats      = "ftopsis.stats"

	StreamName   = "FTOPSIS_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectRunCreated(runID string) string   { return "ftopsis.run." + runID + ".created" }
func SubjectRunStarted(runID string) string   { return "ftopsis.run." + runID + ".started" }
func SubjectRunCompleted(runID string) string { return "ftopsis.run." + runID + ".completed" }
func SubjectRunFailed(runID string) string    { return "ftopsis.run." + runID + ".failed" }
