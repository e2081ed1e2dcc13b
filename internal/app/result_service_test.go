package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"kanguru-service/internal/domain"
)

func TestRecordUpdatesStats(t *testing.T) {
	ctx := context.Background()
	results := newFakeResults()
	profiles := newFakeProfiles()
	_ = profiles.PutProfile(ctx, "u1", domain.NewUserProfile("Kim", "1234"))
	svc := NewResultService(results, profiles, zerolog.Nop())

	for _, score := range []int{30, 40, 41} {
		stored, err := svc.Record(ctx, "u1", domain.TestResult{TestID: "mock-1", Score: score})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
		if stored.ID == "" {
			t.Fatalf("expected id to be assigned")
		}
	}

	p, _ := profiles.GetProfile(ctx, "u1")
	// (30 + 40 + 41) / 3 = 37.0; rounded incrementally: 30 -> 35 -> 37
	if p.Stats.TotalTests != 3 || p.Stats.BestScore != 41 || p.Stats.AverageScore != 37 {
		t.Fatalf("unexpected stats %+v", p.Stats)
	}
}

func TestRecordWithoutProfile(t *testing.T) {
	results := newFakeResults()
	svc := NewResultService(results, newFakeProfiles(), zerolog.Nop())
	if _, err := svc.Record(context.Background(), "ghost", domain.TestResult{Score: 10}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if results.count("ghost") != 1 {
		t.Fatalf("expected result stored")
	}
}

func TestApplyTestStatsRoundsToOneDecimal(t *testing.T) {
	stats := domain.UserStats{}
	applyTestStats(&stats, 10)
	applyTestStats(&stats, 11)
	applyTestStats(&stats, 11)
	if stats.AverageScore != 10.7 {
		t.Fatalf("expected 10.7, got %v", stats.AverageScore)
	}
}

func TestListLimits(t *testing.T) {
	ctx := context.Background()
	results := newFakeResults()
	svc := NewResultService(results, newFakeProfiles(), zerolog.Nop())
	for i := 0; i < 25; i++ {
		_, _ = results.Save(ctx, "u1", domain.TestResult{Score: i})
	}

	cases := []struct {
		limit int
		want  int
	}{
		{0, 20},
		{-3, 20},
		{5, 5},
		{500, 25},
	}
	for _, tc := range cases {
		got, err := svc.List(ctx, "u1", tc.limit)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != tc.want {
			t.Fatalf("limit %d: got %d results, want %d", tc.limit, len(got), tc.want)
		}
	}
	got, _ := svc.List(ctx, "u1", 1)
	if got[0].Score != 24 {
		t.Fatalf("expected most recent first, got score %d", got[0].Score)
	}
}
