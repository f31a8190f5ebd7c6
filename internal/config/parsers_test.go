package config

import (
	"reflect"
	"testing"
	"time"
)

func TestAsDuration(t *testing.T) {
	cases := []struct {
		in   interface{}
		want time.Duration
	}{
		{30, 30 * time.Second}, // bare numbers are seconds
		{int64(5), 5 * time.Second},
		{1.5, 1500 * time.Millisecond},
		{"45", 45 * time.Second},
		{"1m30s", 90 * time.Second},
		{"", 0},
		{nil, 0},
	}
	for _, tc := range cases {
		got, err := asDuration(tc.in)
		if err != nil {
			t.Errorf("asDuration(%v): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("asDuration(%v) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseLevels(t *testing.T) {
	got, err := ParseLevels(" 1, 2,4 ,8,10 ")
	if err != nil {
		t.Fatalf("ParseLevels: %v", err)
	}
	if !reflect.DeepEqual(got, []int{1, 2, 4, 8, 10}) {
		t.Errorf("ParseLevels = %v", got)
	}

	if _, err := ParseLevels("1,two,3"); err == nil {
		t.Error("expected error for non-numeric level")
	}

	got, err = ParseLevels("")
	if err != nil || got != nil {
		t.Errorf("ParseLevels(\"\") = %v, %v", got, err)
	}
}

func TestAsIntSlice(t *testing.T) {
	got, err := asIntSlice([]interface{}{1, "2", float64(4)})
	if err != nil {
		t.Fatalf("asIntSlice: %v", err)
	}
	if !reflect.DeepEqual(got, []int{1, 2, 4}) {
		t.Errorf("asIntSlice = %v", got)
	}
}

func TestLookupSettingCandidates(t *testing.T) {
	settings := map[string]interface{}{"model_url": "http://x"}
	val, ok := lookupSetting(settings, "target", "model_url")
	if !ok || val != "http://x" {
		t.Errorf("lookupSetting = %v, %v", val, ok)
	}
	if _, ok := lookupSetting(settings, "missing"); ok {
		t.Error("unexpected hit for missing key")
	}
}

func TestAsBool(t *testing.T) {
	if v, err := asBool("true"); err != nil || !v {
		t.Errorf("asBool(true string) = %v, %v", v, err)
	}
	if v, err := asBool(nil); err != nil || v {
		t.Errorf("asBool(nil) = %v, %v", v, err)
	}
	if _, err := asBool(3.14); err == nil {
		t.Error("expected error for float bool")
	}
}
