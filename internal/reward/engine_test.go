package reward

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minbok/shuttle-reservation/internal/clock"
	"github.com/minbok/shuttle-reservation/internal/model"
	"github.com/minbok/shuttle-reservation/internal/repository"
)

var couponRe = regexp.MustCompile(`^REWARD-[A-Z0-9]{9}$`)

// fakeHistory serves boarding days the way the SQL query does: sorted,
// distinct, and only days after the rider's marker.
type fakeHistory struct {
	days map[uint64][]string
}

func (f *fakeHistory) BoardingDatesSince(_ context.Context, markers map[uint64]string) ([]repository.UserBoardingDates, error) {
	out := make([]repository.UserBoardingDates, 0, len(f.days))
	for userID, all := range f.days {
		marker := markers[userID]
		days := make([]string, 0, len(all))
		for _, d := range all {
			if marker == "" || d > marker {
				days = append(days, d)
			}
		}
		sort.Strings(days)
		if len(days) > 0 {
			out = append(out, repository.UserBoardingDates{UserID: userID, Days: days})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type fakeStore struct {
	rewards   []model.Reward
	createErr error
}

func (f *fakeStore) StreakMarkers(context.Context) (map[uint64]string, error) {
	markers := make(map[uint64]string)
	for _, rw := range f.rewards {
		if rw.StreakEndedOn > markers[rw.UserID] {
			markers[rw.UserID] = rw.StreakEndedOn
		}
	}
	return markers, nil
}

func (f *fakeStore) Create(_ context.Context, rw *model.Reward) error {
	if f.createErr != nil {
		return f.createErr
	}
	rw.ID = uint64(len(f.rewards) + 1)
	f.rewards = append(f.rewards, *rw)
	return nil
}

func testClock() clock.Fixed {
	t, _ := time.Parse(clock.ServiceDayFormat, "2026-09-01")
	return clock.Fixed{T: t}
}

func days(ds ...string) []string { return ds }

func TestRunIssuesCouponForStreak(t *testing.T) {
	history := &fakeHistory{days: map[uint64][]string{
		7: days("2026-08-24", "2026-08-25", "2026-08-26", "2026-08-27", "2026-08-28"),
	}}
	store := &fakeStore{}
	engine := NewEngine(history, store, testClock(), 5)

	report, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.UsersScanned)
	assert.Equal(t, 1, report.Issued)

	require.Len(t, store.rewards, 1)
	rw := store.rewards[0]
	assert.Equal(t, uint64(7), rw.UserID)
	assert.Regexp(t, couponRe, rw.CouponCode)
	assert.Equal(t, "2026-08-28", rw.StreakEndedOn)
	assert.Equal(t, testClock().Now().Add(CouponTTL), rw.ExpiresAt)
}

func TestRunGapBreaksStreak(t *testing.T) {
	history := &fakeHistory{days: map[uint64][]string{
		7: days("2026-08-24", "2026-08-25", "2026-08-27", "2026-08-28", "2026-08-29"),
	}}
	store := &fakeStore{}
	engine := NewEngine(history, store, testClock(), 5)

	report, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.UsersScanned)
	assert.Zero(t, report.Issued)
	assert.Empty(t, store.rewards)
}

func TestRunIsIdempotent(t *testing.T) {
	history := &fakeHistory{days: map[uint64][]string{
		7: days("2026-08-24", "2026-08-25", "2026-08-26", "2026-08-27", "2026-08-28"),
	}}
	store := &fakeStore{}
	engine := NewEngine(history, store, testClock(), 5)
	ctx := context.Background()

	first, err := engine.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.Issued)

	second, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Issued, "unchanged history must not issue again")
	assert.Len(t, store.rewards, 1)
}

func TestRunLongStreakMarkerCoversTail(t *testing.T) {
	// Seven consecutive days: one coupon, marker at the last day, so the
	// trailing five days can never re-qualify on the next sweep.
	history := &fakeHistory{days: map[uint64][]string{
		7: days("2026-08-22", "2026-08-23", "2026-08-24", "2026-08-25",
			"2026-08-26", "2026-08-27", "2026-08-28"),
	}}
	store := &fakeStore{}
	engine := NewEngine(history, store, testClock(), 5)
	ctx := context.Background()

	report, err := engine.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Issued)
	assert.Equal(t, "2026-08-28", store.rewards[0].StreakEndedOn)

	report, err = engine.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Issued)
}

func TestRunNewStreakAfterRewardQualifies(t *testing.T) {
	history := &fakeHistory{days: map[uint64][]string{
		7: days("2026-08-10", "2026-08-11", "2026-08-12", "2026-08-13", "2026-08-14"),
	}}
	store := &fakeStore{}
	engine := NewEngine(history, store, testClock(), 5)
	ctx := context.Background()

	report, err := engine.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Issued)

	// The rider keeps commuting: five fresh days after the marker.
	history.days[7] = append(history.days[7],
		"2026-08-24", "2026-08-25", "2026-08-26", "2026-08-27", "2026-08-28")

	report, err = engine.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Issued)
	require.Len(t, store.rewards, 2)
	assert.Equal(t, "2026-08-28", store.rewards[1].StreakEndedOn)
}

func TestRunMultipleRiders(t *testing.T) {
	history := &fakeHistory{days: map[uint64][]string{
		1: days("2026-08-24", "2026-08-25", "2026-08-26", "2026-08-27", "2026-08-28"),
		2: days("2026-08-24", "2026-08-26", "2026-08-28"),
		3: days("2026-08-27", "2026-08-28"),
	}}
	store := &fakeStore{}
	engine := NewEngine(history, store, testClock(), 5)

	report, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.UsersScanned)
	assert.Equal(t, 1, report.Issued)
	require.Len(t, store.rewards, 1)
	assert.Equal(t, uint64(1), store.rewards[0].UserID)
}

func TestRunStoreFailureReportsPartialProgress(t *testing.T) {
	history := &fakeHistory{days: map[uint64][]string{
		7: days("2026-08-24", "2026-08-25", "2026-08-26", "2026-08-27", "2026-08-28"),
	}}
	store := &fakeStore{createErr: errors.New("connection reset")}
	engine := NewEngine(history, store, testClock(), 5)

	report, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.Zero(t, report.Issued)
	assert.Equal(t, 1, report.UsersScanned)
}

func TestQualifyingRunEnd(t *testing.T) {
	cases := []struct {
		name      string
		days      []string
		threshold int
		wantEnd   string
		wantOK    bool
	}{
		{"empty", nil, 5, "", false},
		{"short run", days("2026-08-27", "2026-08-28"), 5, "", false},
		{"exact threshold", days("2026-08-24", "2026-08-25", "2026-08-26", "2026-08-27", "2026-08-28"), 5, "2026-08-28", true},
		{"run in the middle", days("2026-08-01", "2026-08-10", "2026-08-11", "2026-08-12", "2026-08-13", "2026-08-14", "2026-08-20"), 5, "2026-08-14", true},
		{"month boundary", days("2026-08-29", "2026-08-30", "2026-08-31", "2026-09-01", "2026-09-02"), 5, "2026-09-02", true},
		{"gap resets count", days("2026-08-24", "2026-08-25", "2026-08-27", "2026-08-28", "2026-08-29"), 5, "", false},
		{"threshold three", days("2026-08-27", "2026-08-28", "2026-08-29"), 3, "2026-08-29", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			end, ok := qualifyingRunEnd(tc.days, tc.threshold)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantEnd, end)
		})
	}
}
