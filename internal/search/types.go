// Package search implements the streaming multi-session search core: it
// accepts a SearchOptions payload, runs a parallel directory walk against
// one of three result-accumulation modes, and lets a caller page through
// accumulating results by session identifier while the walk is still
// running.
package search

import "time"

// SearchType selects what a session's walk looks for in each directory
// entry.
type SearchType string

const (
	SearchTypeContent   SearchType = "content"
	SearchTypeFilenames SearchType = "filenames"
	SearchTypeListFiles SearchType = "list_files"
)

// CaseMode controls case sensitivity of pattern matching.
type CaseMode string

const (
	CaseSensitive   CaseMode = "sensitive"
	CaseInsensitive CaseMode = "insensitive"
	CaseSmart       CaseMode = "smart"
)

// BoundaryMode constrains where a match is allowed to begin and end.
type BoundaryMode string

const (
	BoundaryNone BoundaryMode = "none"
	BoundaryWord BoundaryMode = "word"
	BoundaryLine BoundaryMode = "line"
)

// OutputMode selects how content matches are accumulated into results.
type OutputMode string

const (
	OutputMatches OutputMode = "matches"
	OutputPaths   OutputMode = "paths"
	OutputCounts  OutputMode = "counts"
)

// EngineChoice selects which regex engine backs a content search.
type EngineChoice string

const (
	EngineAuto          EngineChoice = "auto"
	EngineDefault       EngineChoice = "default"
	EngineAlternatePCRE EngineChoice = "alternate_pcre"
)

// BinaryMode controls how binary files are treated by a content search.
type BinaryMode string

const (
	// BinaryAuto skips files detected as binary.
	BinaryAuto BinaryMode = "auto"
	// BinarySearchSuppress searches binary files but hides match content.
	BinarySearchSuppress BinaryMode = "search_suppress"
	// BinaryText treats every file as text, binary or not.
	BinaryText BinaryMode = "text"
)

// SortBy selects the key results are ordered by when sort_by is requested.
type SortBy string

const (
	SortByPath     SortBy = "path"
	SortByModified SortBy = "modified"
	SortByAccessed SortBy = "accessed"
	SortByCreated  SortBy = "created"
)

// SortDirection selects ascending or descending order for SortBy.
type SortDirection string

const (
	SortAscending  SortDirection = "ascending"
	SortDescending SortDirection = "descending"
)

// Encoding selects how file bytes are decoded before pattern matching.
// EncodingAuto detects per-file; EncodingDisabled treats bytes as raw;
// any other value names an explicit encoding.
type Encoding string

const (
	EncodingAuto     Encoding = "auto"
	EncodingDisabled Encoding = "disabled"
)

// SearchOptions is the immutable input to StartFlow. Optional fields use
// pointers so that "not supplied by the client" is distinguishable from
// the type's zero value.
type SearchOptions struct {
	RootPath string
	Pattern  string

	SearchType SearchType

	// LiteralSearch is nil when the client did not state a mode explicitly,
	// matching the three-valued Regex/Literal/Inferred model: only an
	// Inferred pattern may silently fall back from regex to literal on a
	// compile failure (see ExecuteDriver).
	LiteralSearch *bool

	CaseMode      CaseMode
	BoundaryMode  BoundaryMode
	OutputMode    OutputMode
	InvertMatch   bool
	EngineChoice  EngineChoice
	FilePattern   string
	Type          string
	TypeNot       string
	MaxResults    *int
	IncludeHidden bool
	NoIgnore      bool

	Context       *int
	BeforeContext *int
	AfterContext  *int

	TimeoutMs *int

	EarlyTermination bool
	BinaryMode       BinaryMode
	Multiline        bool
	MaxFilesize      *int64
	MaxDepth         *int

	OnlyMatching  bool
	ListFilesOnly bool

	SortBy        SortBy
	SortDirection SortDirection

	Encoding Encoding
}

// ResultKind discriminates the shape of a SearchResult.
type ResultKind string

const (
	KindFile     ResultKind = "file"
	KindContent  ResultKind = "content"
	KindFileList ResultKind = "file_list"
)

// SearchResult is one record accumulated by a session, shaped according to
// its session's SearchType/OutputMode.
type SearchResult struct {
	File string

	// Line is one-based for content matches; in Counts mode it is
	// overloaded to carry the per-file match count.
	Line *int

	MatchText *string

	Kind ResultKind

	IsContext bool

	IsBinary         *bool
	BinarySuppressed *bool

	Modified *time.Time
	Accessed *time.Time
	Created  *time.Time
}

// FileCountData accumulates one file's match count for Counts mode.
type FileCountData struct {
	Count    int
	Modified *time.Time
	Accessed *time.Time
	Created  *time.Time
}

// ErrorCategory classifies a non-fatal per-entry or per-file error.
type ErrorCategory string

const (
	CategoryPermissionDenied    ErrorCategory = "permission_denied"
	CategoryIOError             ErrorCategory = "io_error"
	CategoryInvalidPath         ErrorCategory = "invalid_path"
	CategoryInitializationError ErrorCategory = "initialization_error"
	CategoryUnknown             ErrorCategory = "unknown"
)

// SearchError is a single non-fatal error encountered while walking or
// searching, attached to a session's error list up to MaxDetailedErrors.
type SearchError struct {
	Path     string
	Message  string
	Category ErrorCategory
}

// SessionSummary is one entry of ListFlow's response.
type SessionSummary struct {
	ID            string
	SearchType    SearchType
	Pattern       string
	IsComplete    bool
	IsError       bool
	RuntimeMs     int64
	TotalResults  int
	TimeoutMs     *int
	WasIncomplete bool
}

// StartResponse is StartFlow's return value.
type StartResponse struct {
	SessionID      string
	IsComplete     bool
	IsError        bool
	Results        []SearchResult
	TotalResults   int
	RuntimeMs      int64
	ErrorCount     int
	MaxResults     int
	ResultsLimited bool
}

// ReadResponse is ReadFlow's return value.
type ReadResponse struct {
	SessionID      string
	Results        []SearchResult
	ReturnedCount  int
	TotalResults   int
	TotalMatches   int
	IsComplete     bool
	IsError        bool
	Error          string
	HasMoreResults bool
	RuntimeMs      int64
	WasIncomplete  bool
	ErrorCount     int
	Errors         []SearchError
	ResultsLimited bool
}

const (
	// DefaultMaxDetailedErrors bounds how many SearchError entries are
	// retained with full detail; beyond this only the counter advances.
	DefaultMaxDetailedErrors = 100

	// DefaultResultBufferCapacity is the thread-local buffer size before
	// a mandatory flush to the shared result vector.
	DefaultResultBufferCapacity = 50

	// IntraFileCancelCheckInterval is how many records a content search
	// processes between cancellation polls within one file.
	IntraFileCancelCheckInterval = 100

	// StartFlowPreviewSize is how many results StartFlow returns in its
	// initial snapshot regardless of how many have accumulated.
	StartFlowPreviewSize = 10

	// DefaultTouchThrottleMs and DefaultTouchThrottleMatches are the
	// built-in last-read-marker throttle used when a ServerConfig leaves
	// them unset.
	DefaultTouchThrottleMs      = 100
	DefaultTouchThrottleMatches = 50
)
