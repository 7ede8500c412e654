package model

// ResultKind tags which stage of a fetch job produced a JobResult.
type ResultKind int

const (
	// ResultFetch is the outcome of retrieving a page and extracting its links.
	ResultFetch ResultKind = iota

	// ResultWordSearch is the outcome of searching a fetched page for a word.
	ResultWordSearch

	// ResultWordCollect is the outcome of capturing a fetched page's text.
	ResultWordCollect
)

// String returns a human-readable name for the result kind.
func (k ResultKind) String() string {
	switch k {
	case ResultFetch:
		return "fetch"
	case ResultWordSearch:
		return "word-search"
	case ResultWordCollect:
		return "word-collect"
	default:
		return "unknown"
	}
}

// JobResult is the outcome of one stage of a fetch job.
//
// Succeeded=false with Errored=false is the undetermined default, not an
// error. A result is created by the job that owns it and flipped at most
// once; use the With* methods, which return a copy.
type JobResult struct {
	// Kind tells which stage produced the result.
	Kind ResultKind `json:"kind"`

	// Succeeded is true when the stage achieved its goal.
	Succeeded bool `json:"succeeded"`

	// Errored is true when the stage failed at the transport level.
	Errored bool `json:"errored"`

	// URL is the address the job worked on.
	URL string `json:"url"`
}

// NewFetchResult returns an undetermined fetch result for url.
func NewFetchResult(url string) JobResult {
	return JobResult{Kind: ResultFetch, URL: url}
}

// NewWordSearchResult returns an undetermined word-search result for url.
func NewWordSearchResult(url string) JobResult {
	return JobResult{Kind: ResultWordSearch, URL: url}
}

// NewWordCollectResult returns an undetermined word-collect result for url.
func NewWordCollectResult(url string) JobResult {
	return JobResult{Kind: ResultWordCollect, URL: url}
}

// WithSuccess returns a copy marked as succeeded or not.
func (r JobResult) WithSuccess(ok bool) JobResult {
	r.Succeeded = ok
	return r
}

// WithError returns a copy marked as errored and unsuccessful.
func (r JobResult) WithError() JobResult {
	r.Errored = true
	r.Succeeded = false
	return r
}

// Undetermined reports whether the result is neither successful nor errored.
func (r JobResult) Undetermined() bool {
	return !r.Succeeded && !r.Errored
}
