package analytics

import (
	"strings"

	"github.com/vadim/infra-metric/internal/domain/account/entity"
)

const (
	// MinQueryLength is the shortest query treated as an active search
	MinQueryLength = 2
	// MaxSearchResults caps the result list of a free-text search
	MaxSearchResults = 50
)

// Predicate selects account records
type Predicate func(entity.AccountRecord) bool

// Search does a case-insensitive substring match over email, display name,
// domain and client. Short queries yield no results. Results keep snapshot order
// and are capped at MaxSearchResults.
func Search(records []entity.AccountRecord, query string) []entity.AccountRecord {
	match, active := textMatcher(query)
	if !active {
		return []entity.AccountRecord{}
	}

	out := make([]entity.AccountRecord, 0)
	for _, r := range records {
		if !match(r) {
			continue
		}
		out = append(out, r)
		if len(out) == MaxSearchResults {
			break
		}
	}
	return out
}

// Filter applies a drill-down predicate AND the free-text query. An inactive
// query leaves only the predicate. A nil predicate matches everything.
func Filter(records []entity.AccountRecord, pred Predicate, query string) []entity.AccountRecord {
	if pred == nil {
		pred = func(entity.AccountRecord) bool { return true }
	}
	if match, active := textMatcher(query); active {
		pred = All(pred, match)
	}

	out := make([]entity.AccountRecord, 0)
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func textMatcher(query string) (Predicate, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < MinQueryLength {
		return nil, false
	}
	return func(r entity.AccountRecord) bool {
		return strings.Contains(strings.ToLower(r.Email), q) ||
			strings.Contains(strings.ToLower(r.DisplayName), q) ||
			strings.Contains(strings.ToLower(r.DomainName), q) ||
			strings.Contains(strings.ToLower(r.ClientName), q)
	}, true
}

// ZeroReplies matches accounts that sent more than minSent emails and got no reply
func ZeroReplies(minSent int64) Predicate {
	return func(r entity.AccountRecord) bool {
		return r.TotalSent > minSent && r.TotalReplied == 0
	}
}

// InGroup matches accounts whose dimension value equals key
func InGroup(dim entity.Dimension, key string) Predicate {
	return func(r entity.AccountRecord) bool {
		return dim.KeyOf(r) == key
	}
}

// WithStatus matches accounts in the given status
func WithStatus(status entity.Status) Predicate {
	return func(r entity.AccountRecord) bool {
		return r.Status == status
	}
}

// All combines predicates with logical AND
func All(preds ...Predicate) Predicate {
	return func(r entity.AccountRecord) bool {
		for _, p := range preds {
			if p != nil && !p(r) {
				return false
			}
		}
		return true
	}
}
