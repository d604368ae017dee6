package tradecalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestFollowedPlan(t *testing.T) {
	entryTime := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   ComplianceInput
		want bool
	}{
		{
			name: "target reached",
			in: ComplianceInput{
				Side: SideLong, EntryPrice: 100, ExitPrice: 110,
				PlanStop: 95, PlanTarget: 110,
			},
			want: true,
		},
		{
			name: "stopped out falls short of target",
			in: ComplianceInput{
				Side: SideLong, EntryPrice: 100, ExitPrice: 95,
				PlanStop: 95, PlanTarget: 110,
			},
			want: false,
		},
		{
			name: "early exit below target",
			in: ComplianceInput{
				Side: SideLong, EntryPrice: 100, ExitPrice: 103,
				PlanStop: 95, PlanTarget: 110,
			},
			want: false,
		},
		{
			name: "exit within tolerance of target",
			in: ComplianceInput{
				Side: SideLong, EntryPrice: 100, ExitPrice: 109.8,
				PlanStop: 95, PlanTarget: 110,
			},
			want: true,
		},
		{
			name: "stop moved against on long",
			in: ComplianceInput{
				Side: SideLong, EntryPrice: 100, ExitPrice: 110,
				PlanStop: 95, PlanTarget: 110,
				StopMoves: []float64{97},
			},
			want: false,
		},
		{
			name: "stop moved against on short",
			in: ComplianceInput{
				Side: SideShort, EntryPrice: 100, ExitPrice: 90,
				PlanStop: 105, PlanTarget: 90,
				StopMoves: []float64{103},
			},
			want: false,
		},
		{
			name: "stop move keeping planned level",
			in: ComplianceInput{
				Side: SideLong, EntryPrice: 100, ExitPrice: 110,
				PlanStop: 95, PlanTarget: 110,
				StopMoves: []float64{95},
			},
			want: true,
		},
		{
			name: "duration exceeded",
			in: ComplianceInput{
				Side: SideLong, EntryPrice: 100, ExitPrice: 110,
				PlanStop: 95, PlanTarget: 110,
				MaxDurationMin: 60,
				EntryTime:      timePtr(entryTime),
				ExitTime:       timePtr(entryTime.Add(2 * time.Hour)),
			},
			want: false,
		},
		{
			name: "duration within limit",
			in: ComplianceInput{
				Side: SideLong, EntryPrice: 100, ExitPrice: 110,
				PlanStop: 95, PlanTarget: 110,
				MaxDurationMin: 60,
				EntryTime:      timePtr(entryTime),
				ExitTime:       timePtr(entryTime.Add(30 * time.Minute)),
			},
			want: true,
		},
		{
			name: "no duration limit",
			in: ComplianceInput{
				Side: SideLong, EntryPrice: 100, ExitPrice: 110,
				PlanStop: 95, PlanTarget: 110,
				EntryTime: timePtr(entryTime),
				ExitTime:  timePtr(entryTime.Add(48 * time.Hour)),
			},
			want: true,
		},
		{
			name: "missing entry price",
			in: ComplianceInput{
				Side: SideLong, ExitPrice: 110,
				PlanStop: 95, PlanTarget: 110,
			},
			want: false,
		},
		{
			name: "missing exit price",
			in: ComplianceInput{
				Side: SideLong, EntryPrice: 100,
				PlanStop: 95, PlanTarget: 110,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FollowedPlan(tt.in))
		})
	}
}

func TestFollowedPlanCustomTolerance(t *testing.T) {
	in := ComplianceInput{
		Side: SideLong, EntryPrice: 100, ExitPrice: 107,
		PlanStop: 95, PlanTarget: 110,
	}

	// 默认容差 0.1R 不足以覆盖 0.6R 的缺口
	assert.False(t, FollowedPlan(in))

	in.ToleranceR = 1.0
	assert.True(t, FollowedPlan(in))
}

func TestElapsedMinutes(t *testing.T) {
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 90.0, ElapsedMinutes(from, from.Add(90*time.Minute)))
	assert.Equal(t, 90.0, ElapsedMinutes(from.Add(90*time.Minute), from))
	assert.Equal(t, 0.0, ElapsedMinutes(from, from))
}
