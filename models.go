package framequery

// Job is a read-only snapshot of a server-tracked processing task.
// The server owns all mutation; the client only observes snapshots by
// polling. Raw holds the full API record for fields not mapped here.
type Job struct {
	ID         string
	Status     string
	Filename   string
	CreatedAt  string
	ETASeconds float64 // server's estimated seconds remaining, 0 when absent
	Raw        map[string]any
}

// Terminal success statuses plus FAILED. In-progress status names are
// service-defined and matched only by not being one of these.
const (
	StatusCompleted         = "COMPLETED"
	StatusCompletedNoScenes = "COMPLETED_NO_SCENES"
	StatusFailed            = "FAILED"
)

// IsTerminal reports whether no further status transition will occur.
func (j *Job) IsTerminal() bool {
	return j.IsComplete() || j.IsFailed()
}

// IsComplete reports whether the job finished successfully.
func (j *Job) IsComplete() bool {
	return j.Status == StatusCompleted || j.Status == StatusCompletedNoScenes
}

// IsFailed reports whether the job status is FAILED.
func (j *Job) IsFailed() bool {
	return j.Status == StatusFailed
}

// Scene is one detected scene. A scene has no start timestamp: it begins
// where the previous scene ended, or at 0 for the first.
type Scene struct {
	Description string
	EndTime     float64 // seconds from video start
	Objects     []string
}

// TranscriptSegment is one timed chunk of the transcript.
type TranscriptSegment struct {
	StartTime float64
	EndTime   float64
	Text      string
}

// ProcessingResult holds the structured output of a successfully completed
// job. Immutable once constructed; Raw keeps the full API record.
type ProcessingResult struct {
	JobID      string
	Status     string
	Filename   string
	Duration   float64 // total video length in seconds
	Scenes     []Scene
	Transcript []TranscriptSegment
	CreatedAt  string
	Raw        map[string]any
}

// Quota describes the account's plan and remaining credit.
type Quota struct {
	Plan                string
	IncludedHours       float64
	CreditsBalanceHours float64
	ResetDate           string // empty when no reset is scheduled
}

// JobPage is one page of ListJobs results.
type JobPage struct {
	Jobs       []Job
	NextCursor string
}

// HasMore reports whether another page is available.
func (p *JobPage) HasMore() bool { return p.NextCursor != "" }

// ---- Lenient record parsing ----
//
// Parsing never fails: missing or mistyped fields fall back to zero values
// so partial records from older or newer API versions still map.

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	v, _ := m[key].(string)
	return v
}

func floatField(m map[string]any, key string) float64 {
	if m == nil {
		return 0
	}
	v, _ := m[key].(float64)
	return v
}

func toMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func parseJob(record map[string]any) *Job {
	return &Job{
		ID:         stringField(record, "jobId"),
		Status:     stringField(record, "status"),
		Filename:   stringField(record, "originalFilename"),
		CreatedAt:  stringField(record, "createdAt"),
		ETASeconds: floatField(record, "estimatedCompletionTimeSeconds"),
		Raw:        record,
	}
}

func parseScene(record map[string]any) Scene {
	s := Scene{
		Description: stringField(record, "description"),
		EndTime:     floatField(record, "endTs"),
	}
	if objs, ok := record["objects"].([]any); ok {
		for _, o := range objs {
			if label, ok := o.(string); ok {
				s.Objects = append(s.Objects, label)
			}
		}
	}
	return s
}

func parseTranscriptSegment(record map[string]any) TranscriptSegment {
	return TranscriptSegment{
		StartTime: floatField(record, "StartTime"),
		EndTime:   floatField(record, "EndTime"),
		Text:      stringField(record, "Text"),
	}
}

func parseResult(record map[string]any) *ProcessingResult {
	r := &ProcessingResult{
		JobID:     stringField(record, "jobId"),
		Status:    stringField(record, "status"),
		Filename:  stringField(record, "originalFilename"),
		CreatedAt: stringField(record, "createdAt"),
		Raw:       record,
	}
	processed := toMap(record["processedData"])
	r.Duration = floatField(processed, "length")
	if scenes, ok := processed["scenes"].([]any); ok {
		for _, s := range scenes {
			if m, ok := s.(map[string]any); ok {
				r.Scenes = append(r.Scenes, parseScene(m))
			}
		}
	}
	if transcript, ok := processed["transcript"].([]any); ok {
		for _, t := range transcript {
			if m, ok := t.(map[string]any); ok {
				r.Transcript = append(r.Transcript, parseTranscriptSegment(m))
			}
		}
	}
	return r
}

func parseQuota(record map[string]any) *Quota {
	return &Quota{
		Plan:                stringField(record, "plan"),
		IncludedHours:       floatField(record, "includedHours"),
		CreditsBalanceHours: floatField(record, "creditsBalanceHours"),
		ResetDate:           stringField(record, "resetDate"),
	}
}
