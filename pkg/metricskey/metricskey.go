package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsToolCallsSucceeded is base for counter metric for tool calls that returned content
	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls that returned content",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsEmpty = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_empty",
		Help:         "stats_tool_calls_empty provides total tool calls that returned no content",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed with protocol error",
		RequiredTags: []string{"tool"},
	}

	StatsRAGRequestsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_rag_requests_succeeded",
		Help:         "stats_rag_requests_succeeded provides total requests to RAG endpoint succeeded",
		RequiredTags: []string{"model"},
	}

	StatsRAGRequestsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_rag_requests_failed",
		Help:         "stats_rag_requests_failed provides total requests to RAG endpoint failed",
		RequiredTags: []string{"model"},
	}

	StatsRAGParseErrors = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_rag_parse_errors",
		Help:         "stats_rag_parse_errors provides total RAG responses not matching the schema",
		RequiredTags: []string{"model"},
	}

	StatsAnalyticsLogged = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_analytics_logged",
		Help:         "stats_analytics_logged provides total conversations logged to analytics",
		RequiredTags: []string{"tool"},
	}

	StatsAnalyticsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_analytics_failed",
		Help:         "stats_analytics_failed provides total conversations failed to log to analytics",
		RequiredTags: []string{"tool"},
	}

	StatsAnalyticsSkipped = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_analytics_skipped",
		Help:         "stats_analytics_skipped provides total conversations not logged as analytics is disabled",
		RequiredTags: []string{"tool"},
	}
)

// Perf
var (
	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}

	PerfRAGRequest = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_rag_request",
		Help:         "perf_rag_request provides duration of request to RAG endpoint",
		RequiredTags: []string{"model"},
	}

	PerfAnalyticsLog = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_analytics_log",
		Help:         "perf_analytics_log provides duration of analytics log request",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfAnalyticsLog,
	&PerfRAGRequest,
	&PerfToolCall,
	&StatsAnalyticsFailed,
	&StatsAnalyticsLogged,
	&StatsAnalyticsSkipped,
	&StatsRAGParseErrors,
	&StatsRAGRequestsFailed,
	&StatsRAGRequestsSucceeded,
	&StatsToolCallsEmpty,
	&StatsToolCallsFailed,
	&StatsToolCallsSucceeded,
}
