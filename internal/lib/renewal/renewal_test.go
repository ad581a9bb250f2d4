package renewal

import (
	"errors"
	"testing"
	"time"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/period"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve_TableTests(t *testing.T) {
	tests := []struct {
		name     string
		last     time.Time
		next     time.Time
		p        period.Period
		today    time.Time
		wantLast time.Time
		wantNext time.Time
	}{
		{
			name:     "up to date dates stay unchanged",
			last:     date(2024, 4, 15),
			next:     date(2024, 5, 15),
			p:        period.Period{Unit: period.Monthly},
			today:    date(2024, 5, 1),
			wantLast: date(2024, 4, 15),
			wantNext: date(2024, 5, 15),
		},
		{
			name:     "next payment exactly today stays unchanged",
			last:     date(2024, 4, 1),
			next:     date(2024, 5, 1),
			p:        period.Period{Unit: period.Monthly},
			today:    date(2024, 5, 1),
			wantLast: date(2024, 4, 1),
			wantNext: date(2024, 5, 1),
		},
		{
			name:     "stale monthly dates roll forward several periods",
			last:     date(2024, 1, 15),
			next:     date(2024, 2, 15),
			p:        period.Period{Unit: period.Monthly},
			today:    date(2024, 5, 1),
			wantLast: date(2024, 4, 15),
			wantNext: date(2024, 5, 15),
		},
		{
			name:     "stale yearly dates roll forward one year",
			last:     date(2022, 6, 10),
			next:     date(2023, 6, 10),
			p:        period.Period{Unit: period.Yearly},
			today:    date(2024, 1, 1),
			wantLast: date(2023, 6, 10),
			wantNext: date(2024, 6, 10),
		},
		{
			name:     "custom 30 days with degenerate equal dates today",
			last:     date(2024, 1, 1),
			next:     date(2024, 1, 1),
			p:        period.Period{Unit: period.Custom, Days: 30},
			today:    date(2024, 1, 1),
			wantLast: date(2024, 1, 1),
			wantNext: date(2024, 1, 1),
		},
		{
			name:     "custom 30 days stale by one period",
			last:     date(2024, 1, 1),
			next:     date(2024, 1, 31),
			p:        period.Period{Unit: period.Custom, Days: 30},
			today:    date(2024, 2, 5),
			wantLast: date(2024, 1, 31),
			wantNext: date(2024, 3, 1),
		},
		{
			name:     "time of day is ignored when comparing",
			last:     time.Date(2024, 4, 15, 23, 50, 0, 0, time.UTC),
			next:     time.Date(2024, 5, 15, 1, 10, 0, 0, time.UTC),
			p:        period.Period{Unit: period.Monthly},
			today:    time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC),
			wantLast: date(2024, 4, 15),
			wantNext: date(2024, 5, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLast, gotNext, err := Resolve(tt.last, tt.next, tt.p, tt.today)
			if err != nil {
				t.Fatalf("Resolve() returned error: %v", err)
			}
			if !gotLast.Equal(tt.wantLast) || !gotNext.Equal(tt.wantNext) {
				t.Errorf("Resolve() = (%v, %v), want (%v, %v)", gotLast, gotNext, tt.wantLast, tt.wantNext)
			}
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	today := date(2024, 5, 1)
	p := period.Period{Unit: period.Monthly}

	last1, next1, err := Resolve(date(2024, 1, 15), date(2024, 2, 15), p, today)
	if err != nil {
		t.Fatalf("first Resolve() returned error: %v", err)
	}
	last2, next2, err := Resolve(last1, next1, p, today)
	if err != nil {
		t.Fatalf("second Resolve() returned error: %v", err)
	}
	if !last1.Equal(last2) || !next1.Equal(next2) {
		t.Errorf("Resolve() is not idempotent: first (%v, %v), second (%v, %v)", last1, next1, last2, next2)
	}
}

func TestResolve_ConvergenceReachable(t *testing.T) {
	// Новая дата должна быть достижима из исходной целым числом шагов Advance.
	origNext := date(2023, 1, 7)
	p := period.Period{Unit: period.Custom, Days: 45}
	today := date(2024, 3, 1)

	_, next, err := Resolve(date(2022, 11, 23), origNext, p, today)
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}
	if next.Before(today) {
		t.Fatalf("Resolve() next = %v is still before today %v", next, today)
	}

	cursor := origNext
	for i := 0; i < 100; i++ {
		if cursor.Equal(next) {
			return
		}
		var advErr error
		cursor, advErr = period.Advance(cursor, p)
		if advErr != nil {
			t.Fatalf("Advance() returned error: %v", advErr)
		}
	}
	t.Errorf("Resolve() next = %v is not reachable from %v by whole periods", next, origNext)
}

func TestResolve_InvalidPeriodDoesNotLoop(t *testing.T) {
	_, _, err := Resolve(date(2024, 1, 1), date(2024, 1, 2), period.Period{Unit: period.Custom, Days: 0}, date(2024, 5, 1))
	if !errors.Is(err, period.ErrInvalidPeriod) {
		t.Errorf("Resolve() error = %v, want ErrInvalidPeriod", err)
	}
}

func TestDaysUntil(t *testing.T) {
	tests := []struct {
		name   string
		target time.Time
		today  time.Time
		want   int
	}{
		{name: "three days ahead", target: date(2024, 5, 4), today: date(2024, 5, 1), want: 3},
		{name: "same day", target: date(2024, 5, 1), today: date(2024, 5, 1), want: 0},
		{name: "overdue", target: date(2024, 4, 29), today: date(2024, 5, 1), want: -2},
		{
			name:   "time of day does not shift the count",
			target: time.Date(2024, 5, 4, 0, 30, 0, 0, time.UTC),
			today:  time.Date(2024, 5, 1, 23, 45, 0, 0, time.UTC),
			want:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntil(tt.target, tt.today); got != tt.want {
				t.Errorf("DaysUntil(%v, %v) = %d, want %d", tt.target, tt.today, got, tt.want)
			}
		})
	}
}

func testSubscription(next time.Time) *models.Subscription {
	return &models.Subscription{
		ID:                  "sub-1",
		Username:            "testuser",
		Name:                "Netflix",
		Amount:              15,
		Currency:            "USD",
		Period:              "monthly",
		LastPaymentDate:     next.AddDate(0, -1, 0),
		NextPaymentDate:     next,
		NotificationEnabled: true,
	}
}

func testSettings(daysBefore int) *models.NotificationSettings {
	return &models.NotificationSettings{
		Enabled:    true,
		ServerURL:  "https://push.example.com",
		DeviceKey:  "device-key",
		DaysBefore: daysBefore,
		History:    map[string]time.Time{},
	}
}

func TestShouldNotify_TableTests(t *testing.T) {
	today := date(2024, 5, 1)

	tests := []struct {
		name       string
		sub        *models.Subscription
		settings   *models.NotificationSettings
		want       bool
		wantReason Reason
	}{
		{
			name:       "fires on the exact configured day",
			sub:        testSubscription(date(2024, 5, 4)),
			settings:   testSettings(3),
			want:       true,
			wantReason: ReasonEligible,
		},
		{
			name:       "does not fire one day early",
			sub:        testSubscription(date(2024, 5, 5)),
			settings:   testSettings(3),
			want:       false,
			wantReason: ReasonNotTriggerDay,
		},
		{
			name:       "does not catch up after the configured day passed",
			sub:        testSubscription(date(2024, 5, 3)),
			settings:   testSettings(3),
			want:       false,
			wantReason: ReasonNotTriggerDay,
		},
		{
			name: "subscription opt-out wins",
			sub: func() *models.Subscription {
				s := testSubscription(date(2024, 5, 4))
				s.NotificationEnabled = false
				return s
			}(),
			settings:   testSettings(3),
			want:       false,
			wantReason: ReasonDisabled,
		},
		{
			name: "master switch off wins",
			sub:  testSubscription(date(2024, 5, 4)),
			settings: func() *models.NotificationSettings {
				s := testSettings(3)
				s.Enabled = false
				return s
			}(),
			want:       false,
			wantReason: ReasonDisabled,
		},
		{
			name:       "overdue date is never eligible",
			sub:        testSubscription(date(2024, 4, 28)),
			settings:   testSettings(3),
			want:       false,
			wantReason: ReasonOutsideWindow,
		},
		{
			name:       "beyond 14 day window is never eligible",
			sub:        testSubscription(date(2024, 5, 31)),
			settings:   testSettings(14),
			want:       false,
			wantReason: ReasonOutsideWindow,
		},
		{
			name: "already sent earlier today",
			sub:  testSubscription(date(2024, 5, 4)),
			settings: func() *models.NotificationSettings {
				s := testSettings(3)
				s.History["sub-1"] = time.Date(2024, 5, 1, 8, 15, 0, 0, time.UTC)
				return s
			}(),
			want:       false,
			wantReason: ReasonAlreadySent,
		},
		{
			name: "sent yesterday does not block today",
			sub:  testSubscription(date(2024, 5, 4)),
			settings: func() *models.NotificationSettings {
				s := testSettings(3)
				s.History["sub-1"] = time.Date(2024, 4, 30, 23, 59, 0, 0, time.UTC)
				return s
			}(),
			want:       true,
			wantReason: ReasonEligible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := ShouldNotify(tt.sub, tt.settings, today)
			if got != tt.want || reason != tt.wantReason {
				t.Errorf("ShouldNotify() = (%v, %q), want (%v, %q)", got, reason, tt.want, tt.wantReason)
			}
		})
	}
}

func TestShouldNotify_AtMostOncePerDay(t *testing.T) {
	today := date(2024, 5, 1)
	sub := testSubscription(date(2024, 5, 4))
	settings := testSettings(3)

	first, reason := ShouldNotify(sub, settings, today)
	if !first || reason != ReasonEligible {
		t.Fatalf("first ShouldNotify() = (%v, %q), want (true, eligible)", first, reason)
	}

	settings.RecordSent(sub.ID, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))

	second, reason := ShouldNotify(sub, settings, today)
	if second || reason != ReasonAlreadySent {
		t.Errorf("second ShouldNotify() = (%v, %q), want (false, already sent today)", second, reason)
	}
}
