package acknowledgments

import "testing"

func TestComputeStatsRoundsHalfUp(t *testing.T) {
	cases := []struct {
		name    string
		total   int
		members int
		want    int
	}{
		{name: "one of three", total: 1, members: 3, want: 33},
		{name: "two of three", total: 2, members: 3, want: 67},
		{name: "two of four", total: 2, members: 4, want: 50},
		{name: "exact half rounds up", total: 1, members: 8, want: 13},
		{name: "half a percent rounds up", total: 1, members: 200, want: 1},
		{name: "below half", total: 1, members: 201, want: 0},
		{name: "everyone", total: 10, members: 10, want: 100},
		{name: "not clamped", total: 12, members: 10, want: 120},
		{name: "nobody yet", total: 0, members: 10, want: 0},
		{name: "empty roster", total: 5, members: 0, want: 0},
		{name: "negative roster", total: 5, members: -3, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeStats(tc.total, tc.members)
			if got.Total != tc.total {
				t.Fatalf("total: got %d want %d", got.Total, tc.total)
			}
			if got.Percentage != tc.want {
				t.Fatalf("percentage: got %d want %d", got.Percentage, tc.want)
			}
		})
	}
}
