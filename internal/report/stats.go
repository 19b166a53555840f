// Package report builds financial summaries over contracts and their payment
// histories.
package report

import (
	"time"

	"parkrent/internal/core"
)

// Stats is a point-in-time financial summary. Monetary values are VND.
type Stats struct {
	GeneratedAt time.Time

	TotalContracts   int
	ActiveContracts  int
	SettledContracts int
	ContractsInDebt  int

	TotalCollected     int64
	ThisMonthCollected int64
	LastMonthCollected int64
	ThisYearCollected  int64
	PotentialRevenue   int64

	CashCollected       int64
	BankCollected       int64
	CashTransactions    int
	BankTransactions    int
	TotalTransactions   int
	RecentTransactions  int
	AverageTransaction  int64
	LargestTransaction  int64
	SmallestTransaction int64

	TotalDebt   int64
	AverageDebt int64
	HighestDebt int64

	CollectionEfficiency float64
	CashShare            float64
	BankShare            float64
	PreferredMethod      string
	RetentionRate        float64
	RevenueGrowth        float64
}

// Build computes stats from all contracts and their payment histories.
// Refund records carry negative amounts and reduce the collected totals.
func Build(contracts []core.Contract, histories map[int64][]core.PaymentRecord, now time.Time) Stats {
	stats := Stats{GeneratedAt: now}

	today := core.DateOf(now)
	thisMonth := core.Month{Year: now.Year(), Mon: int(now.Month())}
	lastMonth := core.Month{Year: now.Year(), Mon: int(now.Month()) - 1}
	if lastMonth.Mon == 0 {
		lastMonth = core.Month{Year: now.Year() - 1, Mon: 12}
	}

	var debts []int64
	for _, c := range contracts {
		stats.TotalContracts++
		if c.Settled {
			stats.SettledContracts++
		}
		if c.AmountOwed > 0 {
			stats.ContractsInDebt++
			stats.TotalDebt += c.AmountOwed
			debts = append(debts, c.AmountOwed)
		}

		if !c.StartDate.IsZero() {
			stats.PotentialRevenue += c.MonthlyRate * int64(core.MonthsBetween(c.StartDate, today))
		}

		history := histories[c.ID]
		active := c.OpenEnded || (!c.EndDate.IsZero() && c.EndDate.After(now))
		for _, p := range history {
			amount := p.AmountPaid
			stats.TotalCollected += amount

			if amount > stats.LargestTransaction {
				stats.LargestTransaction = amount
			}
			if stats.SmallestTransaction == 0 || amount < stats.SmallestTransaction {
				stats.SmallestTransaction = amount
			}

			if p.PaymentMethod == core.MethodBank {
				stats.BankCollected += amount
				stats.BankTransactions++
			} else {
				stats.CashCollected += amount
				stats.CashTransactions++
			}

			pm := core.Month{Year: p.PaymentDate.Year(), Mon: int(p.PaymentDate.Month())}
			if pm == thisMonth {
				stats.ThisMonthCollected += amount
			}
			if pm == lastMonth {
				stats.LastMonthCollected += amount
			}
			if p.PaymentDate.Year() == now.Year() {
				stats.ThisYearCollected += amount
			}

			if now.Sub(p.PaymentDate.Time) <= 30*24*time.Hour {
				stats.RecentTransactions++
				active = true
			}
		}

		if active {
			stats.ActiveContracts++
		}
	}

	stats.TotalTransactions = stats.CashTransactions + stats.BankTransactions
	if stats.TotalTransactions > 0 {
		stats.AverageTransaction = stats.TotalCollected / int64(stats.TotalTransactions)
	}
	if len(debts) > 0 {
		stats.AverageDebt = stats.TotalDebt / int64(len(debts))
		for _, d := range debts {
			if d > stats.HighestDebt {
				stats.HighestDebt = d
			}
		}
	}
	if stats.PotentialRevenue > 0 {
		stats.CollectionEfficiency = float64(stats.TotalCollected) / float64(stats.PotentialRevenue) * 100
	}
	if stats.TotalCollected > 0 {
		stats.CashShare = float64(stats.CashCollected) / float64(stats.TotalCollected) * 100
		stats.BankShare = float64(stats.BankCollected) / float64(stats.TotalCollected) * 100
	}
	if stats.CashShare >= stats.BankShare {
		stats.PreferredMethod = core.MethodCash
	} else {
		stats.PreferredMethod = core.MethodBank
	}
	if stats.LastMonthCollected > 0 {
		stats.RevenueGrowth = float64(stats.ThisMonthCollected-stats.LastMonthCollected) / float64(stats.LastMonthCollected) * 100
	}
	if stats.TotalContracts > 0 {
		stats.RetentionRate = float64(stats.ActiveContracts) / float64(stats.TotalContracts) * 100
	}

	return stats
}
