package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsReportRequest(t *testing.T) {
	for _, msg := range []string{"báo cáo", "Cho tôi xem BÁO CÁO", "report please", "thống kê tháng", "tổng kết", "chi tiêu tháng này", "tháng trước thế nào"} {
		assert.True(t, IsReportRequest(msg), msg)
	}
	for _, msg := range []string{"ăn tối 200k", "có", "grab 45k"} {
		assert.False(t, IsReportRequest(msg), msg)
	}
}

func TestConfirmationClassifier(t *testing.T) {
	tests := map[string]Intent{
		"Có":            IntentSave,
		"  ok  ":        IntentSave,
		"oke luôn":      IntentSave,
		"lưu đi":        IntentSave,
		"không":         IntentCancel,
		"thôi":          IntentCancel,
		"Hủy":           IntentCancel,
		"sửa lại":       IntentEdit,
		"chỉnh giúp":    IntentEdit,
		"hmm":           IntentUnknown,
		"để tôi nghĩ đã": IntentUnknown,
	}
	for msg, want := range tests {
		assert.Equal(t, want, confirmationClassifier.Classify(msg), msg)
	}
}

func TestDuplicateClassifier(t *testing.T) {
	tests := map[string]Intent{
		"Không trùng": IntentNotDuplicate,
		"khác":        IntentNotDuplicate,
		"không":       IntentNotDuplicate,
		"lưu":         IntentNotDuplicate,
		"Trùng":       IntentDuplicate,
		"đúng rồi":    IntentDuplicate,
		"có":          IntentDuplicate,
		"hả?":         IntentUnknown,
	}
	for msg, want := range tests {
		assert.Equal(t, want, duplicateClassifier.Classify(msg), msg)
	}
}
