package mcpserver

import (
	"time"

	"github.com/fssearchd/fssearchd/internal/search"
)

// StartSearchArgs is start_search's input, field-for-field the SearchOptions
// surface from spec.md §4.1/§6, with JSON names matching the RPC surface
// exactly so an MCP client can build the call straight from the spec.
type StartSearchArgs struct {
	RootPath string `json:"root_path"`
	Pattern  string `json:"pattern"`

	SearchType string `json:"search_type,omitempty"`

	LiteralSearch *bool `json:"literal_search,omitempty"`

	CaseMode     string `json:"case_mode,omitempty"`
	BoundaryMode string `json:"boundary_mode,omitempty"`
	OutputMode   string `json:"output_mode,omitempty"`
	InvertMatch  bool   `json:"invert_match,omitempty"`
	EngineChoice string `json:"engine_choice,omitempty"`
	FilePattern  string `json:"file_pattern,omitempty"`
	Type         string `json:"type,omitempty"`
	TypeNot      string `json:"type_not,omitempty"`
	MaxResults   *int   `json:"max_results,omitempty"`
	IncludeHidden bool  `json:"include_hidden,omitempty"`
	NoIgnore     bool   `json:"no_ignore,omitempty"`

	Context       *int `json:"context,omitempty"`
	BeforeContext *int `json:"before_context,omitempty"`
	AfterContext  *int `json:"after_context,omitempty"`

	TimeoutMs *int `json:"timeout_ms,omitempty"`

	EarlyTermination bool   `json:"early_termination,omitempty"`
	BinaryMode       string `json:"binary_mode,omitempty"`
	Multiline        bool   `json:"multiline,omitempty"`
	MaxFilesize      *int64 `json:"max_filesize,omitempty"`
	MaxDepth         *int   `json:"max_depth,omitempty"`

	OnlyMatching  bool `json:"only_matching,omitempty"`
	ListFilesOnly bool `json:"list_files_only,omitempty"`

	SortBy        string `json:"sort_by,omitempty"`
	SortDirection string `json:"sort_direction,omitempty"`

	Encoding string `json:"encoding,omitempty"`
}

// toOptions converts the wire-level arguments into the internal
// SearchOptions the search package operates on, applying field defaults
// spec.md §4.1 states for an absent client value.
func (a StartSearchArgs) toOptions() search.SearchOptions {
	opts := search.SearchOptions{
		RootPath:         a.RootPath,
		Pattern:          a.Pattern,
		SearchType:       search.SearchType(orDefault(a.SearchType, string(search.SearchTypeContent))),
		LiteralSearch:    a.LiteralSearch,
		CaseMode:         search.CaseMode(orDefault(a.CaseMode, string(search.CaseSensitive))),
		BoundaryMode:     search.BoundaryMode(orDefault(a.BoundaryMode, string(search.BoundaryNone))),
		OutputMode:       search.OutputMode(orDefault(a.OutputMode, string(search.OutputMatches))),
		InvertMatch:      a.InvertMatch,
		EngineChoice:     search.EngineChoice(orDefault(a.EngineChoice, string(search.EngineAuto))),
		FilePattern:      a.FilePattern,
		Type:             a.Type,
		TypeNot:          a.TypeNot,
		MaxResults:       a.MaxResults,
		IncludeHidden:    a.IncludeHidden,
		NoIgnore:         a.NoIgnore,
		Context:          a.Context,
		BeforeContext:    a.BeforeContext,
		AfterContext:     a.AfterContext,
		TimeoutMs:        a.TimeoutMs,
		EarlyTermination: a.EarlyTermination,
		BinaryMode:       search.BinaryMode(orDefault(a.BinaryMode, string(search.BinaryAuto))),
		Multiline:        a.Multiline,
		MaxFilesize:      a.MaxFilesize,
		MaxDepth:         a.MaxDepth,
		OnlyMatching:     a.OnlyMatching,
		ListFilesOnly:    a.ListFilesOnly,
		SortBy:           search.SortBy(a.SortBy),
		SortDirection:    search.SortDirection(a.SortDirection),
		Encoding:         search.Encoding(orDefault(a.Encoding, string(search.EncodingAuto))),
	}
	return opts
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// WireResult is a SearchResult reshaped for JSON transport: every optional
// field uses omitempty so a Matches-mode record doesn't carry a forest of
// nulls a client has to filter through.
type WireResult struct {
	File string `json:"file"`

	Line      *int    `json:"line,omitempty"`
	MatchText *string `json:"match_text,omitempty"`

	Kind string `json:"kind"`

	IsContext bool `json:"is_context,omitempty"`

	IsBinary         *bool `json:"is_binary,omitempty"`
	BinarySuppressed *bool `json:"binary_suppressed,omitempty"`

	Modified *time.Time `json:"modified,omitempty"`
	Accessed *time.Time `json:"accessed,omitempty"`
	Created  *time.Time `json:"created,omitempty"`
}

func toWireResult(r search.SearchResult) WireResult {
	return WireResult{
		File:             r.File,
		Line:             r.Line,
		MatchText:        r.MatchText,
		Kind:             string(r.Kind),
		IsContext:        r.IsContext,
		IsBinary:         r.IsBinary,
		BinarySuppressed: r.BinarySuppressed,
		Modified:         r.Modified,
		Accessed:         r.Accessed,
		Created:          r.Created,
	}
}

func toWireResults(results []search.SearchResult) []WireResult {
	out := make([]WireResult, len(results))
	for i, r := range results {
		out[i] = toWireResult(r)
	}
	return out
}

// WireError mirrors search.SearchError for JSON transport.
type WireError struct {
	Path     string `json:"path"`
	Message  string `json:"message"`
	Category string `json:"category"`
}

func toWireErrors(errs []search.SearchError) []WireError {
	out := make([]WireError, len(errs))
	for i, e := range errs {
		out[i] = WireError{Path: e.Path, Message: e.Message, Category: string(e.Category)}
	}
	return out
}
