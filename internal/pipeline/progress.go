package pipeline

// Step names reported through ProgressCallback.
const (
	StepFetch           = "fetch"
	StepBrand           = "brand"
	StepCompetitors     = "competitors"
	StepVisibility      = "visibility"
	StepScoring         = "scoring"
	StepRecommendations = "recommendations"
	StepInsights        = "insights"
	StepValidate        = "validate"
)

// ProgressEvent represents a progress update during an analysis
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

func (a *Analyzer) emit(url, step, message string, content any) {
	if a.onProgress != nil {
		a.onProgress(ProgressEvent{Step: step, Message: message, URL: url, Content: content})
	}
}
