package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"parkrent/internal/core"
)

// WriteCSV renders the stats as a sectioned CSV report, matching the layout
// the bookkeeping side has always imported into their spreadsheets.
func WriteCSV(w io.Writer, stats Stats) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"Báo Cáo Tài Chính"},
		{"Ngày tạo", stats.GeneratedAt.Format("02/01/2006")},
		{},
		{"Loại Thống Kê", "Giá Trị"},
		{"=== THỐNG KÊ KHÁCH HÀNG ==="},
		{"Tổng số khách hàng", strconv.Itoa(stats.TotalContracts)},
		{"Khách hàng đang hoạt động", strconv.Itoa(stats.ActiveContracts)},
		{"Khách hàng đã thanh toán đủ", strconv.Itoa(stats.SettledContracts)},
		{"Khách hàng còn nợ", strconv.Itoa(stats.ContractsInDebt)},
		{"Tỷ lệ giữ chân khách", percent(stats.RetentionRate)},
		{},
		{"=== THỐNG KÊ DOANH THU ==="},
		{"Tổng doanh thu", strconv.FormatInt(stats.TotalCollected, 10)},
		{"Doanh thu tháng này", strconv.FormatInt(stats.ThisMonthCollected, 10)},
		{"Doanh thu tháng trước", strconv.FormatInt(stats.LastMonthCollected, 10)},
		{"Doanh thu năm nay", strconv.FormatInt(stats.ThisYearCollected, 10)},
		{"Doanh thu tiềm năng", strconv.FormatInt(stats.PotentialRevenue, 10)},
		{"Tăng trưởng doanh thu", percent(stats.RevenueGrowth)},
		{},
		{"=== THỐNG KÊ THANH TOÁN ==="},
		{"Thu bằng tiền mặt", strconv.FormatInt(stats.CashCollected, 10)},
		{"Thu bằng chuyển khoản", strconv.FormatInt(stats.BankCollected, 10)},
		{"Giao dịch tiền mặt", strconv.Itoa(stats.CashTransactions)},
		{"Giao dịch chuyển khoản", strconv.Itoa(stats.BankTransactions)},
		{"Tổng số giao dịch", strconv.Itoa(stats.TotalTransactions)},
		{"Giao dịch 30 ngày qua", strconv.Itoa(stats.RecentTransactions)},
		{"Trung bình/giao dịch", strconv.FormatInt(stats.AverageTransaction, 10)},
		{"Giao dịch lớn nhất", strconv.FormatInt(stats.LargestTransaction, 10)},
		{"Phương thức ưa chuộng", stats.PreferredMethod},
		{},
		{"=== PHÂN TÍCH NỢ ==="},
		{"Tổng số tiền nợ", strconv.FormatInt(stats.TotalDebt, 10)},
		{"Nợ trung bình/khách", strconv.FormatInt(stats.AverageDebt, 10)},
		{"Nợ cao nhất", strconv.FormatInt(stats.HighestDebt, 10)},
		{},
		{"=== HIỆU SUẤT KINH DOANH ==="},
		{"Hiệu suất thu tiền", percent(stats.CollectionEfficiency)},
		{"Tỷ lệ thanh toán tiền mặt", percent(stats.CashShare)},
		{"Tỷ lệ thanh toán chuyển khoản", percent(stats.BankShare)},
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write report csv: %w", err)
	}
	return nil
}

// WriteContractsCSV renders per-contract billing rows.
func WriteContractsCSV(w io.Writer, contracts []core.Contract) error {
	cw := csv.NewWriter(w)

	header := []string{
		"ID", "Chủ xe", "Biển số", "Khu vực",
		"Ngày bắt đầu", "Ngày kết thúc", "Giá tháng",
		"Số tháng đã đóng", "Các tháng đã đóng", "Còn nợ", "Trạng thái",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write contracts csv header: %w", err)
	}

	for _, c := range contracts {
		end := ""
		if !c.EndDate.IsEmpty() {
			end = c.EndDate.ISO()
		}
		status := "Còn nợ"
		if c.Settled {
			status = "Đã thanh toán đủ"
		}
		row := []string{
			strconv.FormatInt(c.ID, 10),
			c.Owner,
			c.PlateNumber,
			c.ParkingZone,
			c.StartDate.ISO(),
			end,
			strconv.FormatInt(c.MonthlyRate, 10),
			strconv.Itoa(c.MonthsPaid),
			c.Coverage.FormatRange(),
			strconv.FormatInt(c.AmountOwed, 10),
			status,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write contracts csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
