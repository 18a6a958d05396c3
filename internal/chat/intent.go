package chat

import "strings"

type Intent string

const (
	IntentUnknown      Intent = "unknown"
	IntentReport       Intent = "report"
	IntentSave         Intent = "save"
	IntentCancel       Intent = "cancel"
	IntentEdit         Intent = "edit"
	IntentNotDuplicate Intent = "not_duplicate"
	IntentDuplicate    Intent = "duplicate"
)

type rule struct {
	intent   Intent
	keywords []string
}

// Classifier maps a message to the first intent, in priority order, that has
// a keyword occurring as a substring of the lowercased, trimmed message.
// It is plain keyword matching; ambiguous text falls through to
// IntentUnknown.
type Classifier struct {
	rules []rule
}

func NewClassifier(rules ...rule) Classifier {
	return Classifier{rules: rules}
}

func (c Classifier) Classify(message string) Intent {
	text := strings.ToLower(strings.TrimSpace(message))
	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.intent
			}
		}
	}
	return IntentUnknown
}

var (
	reportClassifier = NewClassifier(
		rule{IntentReport, []string{"báo cáo", "report", "thống kê", "tổng kết", "tháng này", "tháng trước"}},
	)

	// "không trùng" contains "trùng", so not-duplicate must be tried first.
	duplicateClassifier = NewClassifier(
		rule{IntentNotDuplicate, []string{"không trùng", "khác", "không", "lưu", "save"}},
		rule{IntentDuplicate, []string{"trùng", "yes", "có", "đúng"}},
	)

	confirmationClassifier = NewClassifier(
		rule{IntentSave, []string{"có", "ok", "yes", "đúng", "lưu", "oke"}},
		rule{IntentCancel, []string{"không", "no", "thôi", "hủy", "cancel"}},
		rule{IntentEdit, []string{"sửa", "edit", "chỉnh"}},
	)
)

// IsReportRequest reports whether message asks for a spending report.
func IsReportRequest(message string) bool {
	return reportClassifier.Classify(message) == IntentReport
}
