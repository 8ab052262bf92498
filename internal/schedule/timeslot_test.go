package schedule

import (
	"testing"
	"time"
)

func collect(iv Interval, step time.Duration) []string {
	var out []string
	for slot := range iv.Slots(step) {
		out = append(out, slot.String())
	}
	return out
}

func mustTime(t *testing.T, s string) TimeOfDay {
	t.Helper()
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q): %v", s, err)
	}
	return tod
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "09:30", want: TimeOfDay{Hour: 9, Minute: 30}},
		{in: "00:00", want: TimeOfDay{}},
		{in: "23:59", want: TimeOfDay{Hour: 23, Minute: 59}},
		{in: "14:00:00", want: TimeOfDay{Hour: 14}},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "nonsense", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTimeOfDayOrdering(t *testing.T) {
	a := TimeOfDay{Hour: 9, Minute: 30}
	b := TimeOfDay{Hour: 10}

	if !a.Before(b) {
		t.Errorf("expected %v before %v", a, b)
	}
	if b.Before(a) {
		t.Errorf("did not expect %v before %v", b, a)
	}
	if a.Before(a) {
		t.Errorf("a time must not sort before itself")
	}
}

func TestIntervalSlots_SameDay(t *testing.T) {
	iv := NewInterval(mustTime(t, "09:00"), mustTime(t, "11:00"))
	if iv.SpansMidnight {
		t.Fatal("09:00-11:00 must not be flagged as spanning midnight")
	}

	got := collect(iv, DefaultSlotStep)
	want := []string{"09:00", "09:30", "10:00", "10:30"}
	assertSlots(t, got, want)
}

func TestIntervalSlots_PartialTrailingSlot(t *testing.T) {
	// 10:30 starts before 10:45, so it is still emitted; the interval end
	// only bounds slot starts.
	iv := NewInterval(mustTime(t, "09:00"), mustTime(t, "10:45"))
	got := collect(iv, DefaultSlotStep)
	assertSlots(t, got, []string{"09:00", "09:30", "10:00", "10:30"})
}

func TestIntervalSlots_MidnightCrossing(t *testing.T) {
	iv := NewInterval(mustTime(t, "22:00"), mustTime(t, "02:00"))
	if !iv.SpansMidnight {
		t.Fatal("22:00-02:00 must be flagged as spanning midnight")
	}

	got := collect(iv, DefaultSlotStep)
	assertSlots(t, got, []string{"22:00", "22:30", "23:00", "23:30"})

	for _, s := range got {
		if s < "22:00" {
			t.Errorf("midnight-crossing window leaked a rollover-day slot: %s", s)
		}
	}
}

func TestIntervalSlots_EqualStartEnd(t *testing.T) {
	iv := NewInterval(mustTime(t, "13:00"), mustTime(t, "13:00"))
	if got := collect(iv, DefaultSlotStep); len(got) != 0 {
		t.Errorf("equal start and end must expand to nothing, got %v", got)
	}
}

func TestIntervalSlots_Restartable(t *testing.T) {
	iv := NewInterval(mustTime(t, "08:00"), mustTime(t, "09:30"))

	first := collect(iv, DefaultSlotStep)
	second := collect(iv, DefaultSlotStep)

	if len(first) != len(second) {
		t.Fatalf("second pass yielded %d slots, first %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("pass mismatch at %d: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestIntervalSlots_CustomStep(t *testing.T) {
	iv := NewInterval(mustTime(t, "09:00"), mustTime(t, "10:00"))
	got := collect(iv, 20*time.Minute)
	assertSlots(t, got, []string{"09:00", "09:20", "09:40"})
}

func TestIsoWeekday(t *testing.T) {
	// 2024-03-04 is a Monday, 2024-03-10 a Sunday.
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		want := i + 1
		if got := isoWeekday(monday.AddDate(0, 0, i)); got != want {
			t.Errorf("isoWeekday(%s) = %d, want %d", monday.AddDate(0, 0, i).Format("2006-01-02"), got, want)
		}
	}
}

func assertSlots(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d slots %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d = %s, want %s", i, got[i], want[i])
		}
	}
}
