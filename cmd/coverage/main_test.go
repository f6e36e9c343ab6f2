package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVerify(t *testing.T) {
	var progress bytes.Buffer
	a := verify(5770, 5809, &progress)

	if len(a.AllFailures) > 0 {
		for _, f := range a.AllFailures[:min(10, len(a.AllFailures))] {
			t.Errorf("%d %s: %s", f.Year, f.Check, f.Detail)
		}
		t.Fatalf("%d failures", len(a.AllFailures))
	}
	if len(a.ByYear) != 40 {
		t.Errorf("years checked = %d, want 40", len(a.ByYear))
	}

	days := 0
	for _, y := range a.ByYear {
		days += y.Days
		if y.Sabbaths < 50 || y.Sabbaths > 55 {
			t.Errorf("%d: %d sabbaths", y.Year, y.Sabbaths)
		}
	}
	if days != a.TotalDays {
		t.Errorf("TotalDays = %d, sum of years = %d", a.TotalDays, days)
	}

	// 5785: Thursday, complete, Pesach on Sunday.
	if got := a.ByYear[15].Keviah; got != "5C1" {
		t.Errorf("keviah 5785 = %q, want 5C1", got)
	}
	if lines := strings.Count(progress.String(), "\n"); lines != 40 {
		t.Errorf("progress lines = %d, want 40", lines)
	}
}

func TestFail(t *testing.T) {
	a := verify(5785, 5785, nil)
	stats := a.ByYear[0]
	a.fail(stats, checkParasha, "%s after %s", "Noach", "Lech-Lecha")

	if stats.Failures != 1 || a.ByCheck[checkParasha] != 1 {
		t.Fatalf("failure not counted: %+v %v", stats, a.ByCheck)
	}
	if got := a.AllFailures[0].Detail; got != "Noach after Lech-Lecha" {
		t.Errorf("detail = %q", got)
	}
}
