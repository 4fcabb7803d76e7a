// internal/orchestrator/classify.go
package orchestrator

import (
	"fmt"
	"regexp"

	qerrors "nlquery-gateway/internal/common/errors"
)

// Message-text classification is inherently fragile, so the rules live here
// as data: a prioritized list evaluated in order, first match wins. New
// phrasings get a new row, not new control flow.

type classifyRule struct {
	pattern *regexp.Regexp
	code    qerrors.ErrorCode
	message string // "" keeps the raw error text
}

// plannerRules classify failures from the NL->SQL planner. Planning failures
// are someone else's service being unreliable, not the caller's fault, unless
// they look like a caller or setup mistake.
var plannerRules = []classifyRule{
	{
		pattern: regexp.MustCompile(`(?i)sync|no tables found`),
		code:    qerrors.ErrCodeConfiguration,
		message: "Datasource schema is not available. Please sync the datasource schema first.",
	},
	{
		pattern: regexp.MustCompile(`(?i)read[- ]only|only select|write (statement|operation)s? (is|are) not allowed`),
		code:    qerrors.ErrCodeValidation,
		message: "Only read-only SELECT queries are allowed.",
	},
	{
		pattern: regexp.MustCompile(`(?i)econnrefused|connection refused|etimedout|timed? ?out`),
		code:    qerrors.ErrCodeExternalService,
		message: "AI service is unreachable. Please try again later.",
	},
}

// executorRules extend the planner rules with query-time failures against the
// target store.
var executorRules = []classifyRule{
	plannerRules[0],
	plannerRules[1],
	{
		pattern: regexp.MustCompile(`(?i)access denied|check database credentials|password authentication failed|authentication failed for user`),
		code:    qerrors.ErrCodeDatabase,
		message: "Database access denied. Please check database credentials.",
	},
	{
		pattern: regexp.MustCompile(`(?i)syntax error|does not exist|unknown column|unknown table|division by zero|invalid input syntax`),
		code:    qerrors.ErrCodeDatabase,
		// Raw text kept: SQL-level detail is surfaced deliberately for
		// DATABASE_ERROR to aid debugging.
	},
	plannerRules[2],
}

// classify maps a collaborator error onto the taxonomy. Already-classified
// errors pass through untouched; an error is classified exactly once, at this
// boundary. sqlText, when non-empty, is embedded into DATABASE_ERROR messages
// so clients can extract and display the statement separately.
func classify(err error, rules []classifyRule, fallback qerrors.ErrorCode, sqlText string) *qerrors.QueryError {
	if qe, ok := qerrors.AsQueryError(err); ok {
		return qe
	}

	for _, rule := range rules {
		if !rule.pattern.MatchString(err.Error()) {
			continue
		}
		msg := rule.message
		if msg == "" {
			msg = err.Error()
			if rule.code == qerrors.ErrCodeDatabase && sqlText != "" {
				msg = fmt.Sprintf("Database error. SQL: %s; %s", sqlText, msg)
			}
		}
		return qerrors.New(rule.code, msg)
	}

	return qerrors.New(fallback, "")
}

func classifyPlannerError(err error) *qerrors.QueryError {
	return classify(err, plannerRules, qerrors.ErrCodeExternalService, "")
}

func classifyExecutorError(err error, sqlText string) *qerrors.QueryError {
	return classify(err, executorRules, qerrors.ErrCodeExternalService, sqlText)
}
