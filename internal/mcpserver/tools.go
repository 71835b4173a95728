package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StartSearchOutput is start_search's response shape (spec.md §6).
type StartSearchOutput struct {
	SessionID      string       `json:"session_id"`
	IsComplete     bool         `json:"is_complete"`
	IsError        bool         `json:"is_error"`
	Results        []WireResult `json:"results"`
	TotalResults   int          `json:"total_results"`
	RuntimeMs      int64        `json:"runtime_ms"`
	ErrorCount     int          `json:"error_count"`
	MaxResults     int          `json:"max_results"`
	ResultsLimited bool         `json:"results_limited,omitempty"`
}

func (s *Server) startSearch(ctx context.Context, req *mcp.CallToolRequest, args StartSearchArgs) (*mcp.CallToolResult, StartSearchOutput, error) {
	resp, err := s.registry.StartFlow(args.toOptions())
	if err != nil {
		return nil, StartSearchOutput{}, err
	}

	out := StartSearchOutput{
		SessionID:      resp.SessionID,
		IsComplete:     resp.IsComplete,
		IsError:        resp.IsError,
		Results:        toWireResults(resp.Results),
		TotalResults:   resp.TotalResults,
		RuntimeMs:      resp.RuntimeMs,
		ErrorCount:     resp.ErrorCount,
		MaxResults:     resp.MaxResults,
		ResultsLimited: resp.ResultsLimited,
	}
	return nil, out, nil
}

// GetSearchResultsArgs is get_search_results's input.
type GetSearchResultsArgs struct {
	SessionID string `json:"session_id"`
	Offset    int    `json:"offset"`
	Length    int    `json:"length"`
}

// GetSearchResultsOutput is get_search_results's response shape
// (spec.md §6).
type GetSearchResultsOutput struct {
	SessionID      string       `json:"session_id"`
	Results        []WireResult `json:"results"`
	ReturnedCount  int          `json:"returned_count"`
	TotalResults   int          `json:"total_results"`
	TotalMatches   int          `json:"total_matches"`
	IsComplete     bool         `json:"is_complete"`
	IsError        bool         `json:"is_error"`
	Error          string       `json:"error,omitempty"`
	HasMoreResults bool         `json:"has_more_results"`
	RuntimeMs      int64        `json:"runtime_ms"`
	WasIncomplete  bool         `json:"was_incomplete,omitempty"`
	ErrorCount     int          `json:"error_count"`
	Errors         []WireError  `json:"errors,omitempty"`
	ResultsLimited bool         `json:"results_limited,omitempty"`
}

func (s *Server) getSearchResults(ctx context.Context, req *mcp.CallToolRequest, args GetSearchResultsArgs) (*mcp.CallToolResult, GetSearchResultsOutput, error) {
	resp, err := s.registry.ReadFlow(args.SessionID, args.Offset, args.Length)
	if err != nil {
		return nil, GetSearchResultsOutput{}, err
	}

	out := GetSearchResultsOutput{
		SessionID:      resp.SessionID,
		Results:        toWireResults(resp.Results),
		ReturnedCount:  resp.ReturnedCount,
		TotalResults:   resp.TotalResults,
		TotalMatches:   resp.TotalMatches,
		IsComplete:     resp.IsComplete,
		IsError:        resp.IsError,
		Error:          resp.Error,
		HasMoreResults: resp.HasMoreResults,
		RuntimeMs:      resp.RuntimeMs,
		WasIncomplete:  resp.WasIncomplete,
		ErrorCount:     resp.ErrorCount,
		Errors:         toWireErrors(resp.Errors),
		ResultsLimited: resp.ResultsLimited,
	}
	return nil, out, nil
}

// StopSearchArgs is stop_search's input.
type StopSearchArgs struct {
	SessionID string `json:"session_id"`
}

// StopSearchOutput is stop_search's response: true iff a cancellation
// signal was actually delivered.
type StopSearchOutput struct {
	Stopped bool `json:"stopped"`
}

func (s *Server) stopSearch(ctx context.Context, req *mcp.CallToolRequest, args StopSearchArgs) (*mcp.CallToolResult, StopSearchOutput, error) {
	stopped, err := s.registry.StopFlow(args.SessionID)
	if err != nil {
		return nil, StopSearchOutput{}, err
	}
	return nil, StopSearchOutput{Stopped: stopped}, nil
}

// ListSearchesArgs is list_searches's input: empty, kept as a struct so the
// generic AddTool signature has something to bind.
type ListSearchesArgs struct{}

// SessionSummaryWire mirrors search.SessionSummary for JSON transport.
type SessionSummaryWire struct {
	ID            string `json:"id"`
	SearchType    string `json:"search_type"`
	Pattern       string `json:"pattern"`
	IsComplete    bool   `json:"is_complete"`
	IsError       bool   `json:"is_error"`
	RuntimeMs     int64  `json:"runtime_ms"`
	TotalResults  int    `json:"total_results"`
	TimeoutMs     *int   `json:"timeout_ms,omitempty"`
	WasIncomplete bool   `json:"was_incomplete,omitempty"`
}

// ListSearchesOutput is list_searches's response shape.
type ListSearchesOutput struct {
	Sessions []SessionSummaryWire `json:"sessions"`
}

func (s *Server) listSearches(ctx context.Context, req *mcp.CallToolRequest, args ListSearchesArgs) (*mcp.CallToolResult, ListSearchesOutput, error) {
	summaries := s.registry.ListFlow()
	out := ListSearchesOutput{Sessions: make([]SessionSummaryWire, len(summaries))}
	for i, sum := range summaries {
		out.Sessions[i] = SessionSummaryWire{
			ID:            sum.ID,
			SearchType:    string(sum.SearchType),
			Pattern:       sum.Pattern,
			IsComplete:    sum.IsComplete,
			IsError:       sum.IsError,
			RuntimeMs:     sum.RuntimeMs,
			TotalResults:  sum.TotalResults,
			TimeoutMs:     sum.TimeoutMs,
			WasIncomplete: sum.WasIncomplete,
		}
	}
	return nil, out, nil
}
