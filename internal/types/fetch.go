package types

type SourceDescriptor struct {
	Index int
	URL   string
}

// FetchResult is the outcome of one transfer. A nil Err marks a success and
// Data holds the complete response body.
type FetchResult struct {
	Source SourceDescriptor
	Data   []byte
	Err    error
}

func (r FetchResult) Succeeded() bool {
	return r.Err == nil
}

// TransferProgress is a snapshot of one in-flight transfer. Total is zero or
// negative when the server did not announce a length.
type TransferProgress struct {
	Source   string
	Received int64
	Total    int64
}

func NewSourceDescriptors(urls []string) []SourceDescriptor {
	sources := make([]SourceDescriptor, 0, len(urls))
	for i, url := range urls {
		sources = append(sources, SourceDescriptor{Index: i, URL: url})
	}
	return sources
}
