package acknowledgments

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// Stats is the response rate of one alert against the group roster.
type Stats struct {
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// ComputeStats returns total and round-half-up(total*100/memberCount). A non-positive member count
// yields 0%. The percentage is not capped, so more acknowledgments than members exceed 100.
func ComputeStats(total, memberCount int) Stats {
	stats := Stats{Total: total}
	if memberCount <= 0 || total <= 0 {
		return stats
	}
	members := decimal.NewFromInt(int64(memberCount))
	quotient, remainder := decimal.NewFromInt(int64(total)).Mul(hundred).QuoRem(members, 0)
	if remainder.Mul(two).GreaterThanOrEqual(members) {
		quotient = quotient.Add(decimal.NewFromInt(1))
	}
	stats.Percentage = int(quotient.IntPart())
	return stats
}
