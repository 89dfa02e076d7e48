package cashier

import "github.com/shopspring/decimal"

// Statistics summarises drawer sessions opened in a period
type Statistics struct {
	Sessions         int             `json:"sessions"`
	ClosedSessions   int             `json:"closed_sessions"`
	SalesTotal       decimal.Decimal `json:"sales_total"`
	SalesCount       int             `json:"sales_count"`
	WithdrawalsTotal decimal.Decimal `json:"withdrawals_total"`
	DepositsTotal    decimal.Decimal `json:"deposits_total"`
	VarianceTotal    decimal.Decimal `json:"variance_total"`
	WithShortage     int             `json:"with_shortage"`
	WithSurplus      int             `json:"with_surplus"`
}

// Summarize folds sessions into statistics
func Summarize(sessions []DrawerSession) Statistics {
	st := Statistics{
		SalesTotal:       decimal.Zero,
		WithdrawalsTotal: decimal.Zero,
		DepositsTotal:    decimal.Zero,
		VarianceTotal:    decimal.Zero,
	}
	for i := range sessions {
		s := &sessions[i]
		st.Sessions++
		st.SalesTotal = st.SalesTotal.Add(s.SalesTotal)
		st.SalesCount += s.SalesCount
		st.WithdrawalsTotal = st.WithdrawalsTotal.Add(s.WithdrawalsTotal)
		st.DepositsTotal = st.DepositsTotal.Add(s.DepositsTotal)
		if s.IsOpen() {
			continue
		}
		st.ClosedSessions++
		v := s.VarianceOrZero()
		st.VarianceTotal = st.VarianceTotal.Add(v)
		switch {
		case v.IsNegative():
			st.WithShortage++
		case v.IsPositive():
			st.WithSurplus++
		}
	}
	return st
}
