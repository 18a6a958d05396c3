package chat

import (
	"fmt"
	"strings"

	"chitieu/internal/core"
)

const (
	replyReportRedirect   = "📊 Đang tạo báo cáo... Vui lòng gọi /api/report để xem báo cáo chi tiết."
	replyExtractionFailed = "❌ Xin lỗi, tôi không hiểu thông tin chi tiêu của bạn. Vui lòng nhập lại theo format:\n\nVí dụ: \"Ăn tối 200k\" hoặc \"Grab về nhà 45000\""
	replySaved            = "✅ Đã lưu giao dịch thành công!\n\nNhập giao dịch tiếp theo hoặc gõ \"báo cáo\" để xem thống kê."
	replySaveFailed       = "❌ Có lỗi khi lưu giao dịch. Vui lòng thử lại."
	replyCancelled        = "❌ Đã hủy. Nhập lại giao dịch nếu bạn muốn."
	replyEdit             = "Được rồi! Vui lòng nhập lại thông tin chi tiêu."
	replyConfirmUnknown   = "Xin lỗi, tôi không hiểu. Bạn muốn LƯU, HỦY, hay SỬA giao dịch này?"
	replyDuplicateSkipped = "✅ OK, tôi đã bỏ qua giao dịch trùng lặp này."
	replyDuplicateUnknown = "Giao dịch này có trùng với giao dịch trước không? (Trùng/Không trùng)"
)

func confirmPrompt(c core.Candidate, today core.Date) string {
	return fmt.Sprintf("📝 Xác nhận thông tin:\n\n💰 Số tiền: %s\n📁 Danh mục: %s\n📄 Mô tả: %s\n📅 Ngày: %s\n\nLưu giao dịch này? (Có/Không/Sửa)",
		core.FormatVND(c.Amount), c.Category, c.Description, core.FormatViDate(today))
}

func lowConfidencePrompt(c core.Candidate) string {
	return fmt.Sprintf("🤔 Tôi không chắc chắn về thông tin này. Bạn có thể nói rõ hơn được không?\n\nTôi hiểu:\n💰 Số tiền: %s\n📁 Danh mục: %s\n📄 Mô tả: %s\n\nĐúng không?",
		core.FormatVND(c.Amount), c.Category, c.Description)
}

func duplicatePrompt(dups []core.Transaction) string {
	lines := make([]string, len(dups))
	for i, d := range dups {
		lines[i] = fmt.Sprintf("%d. %s - %s (%s)", i+1, d.Description, core.FormatVND(d.Amount), core.FormatViDate(d.TransactionDate))
	}
	return "⚠️ Phát hiện giao dịch tương tự:\n\n" + strings.Join(lines, "\n") +
		"\n\nĐây có phải giao dịch trùng không? (Trùng/Không trùng)"
}
