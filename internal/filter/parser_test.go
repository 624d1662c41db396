package filter

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/pfrederiksen/rec-schedule/internal/facility"
)

func TestParseSortMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SortMode
		wantErr bool
	}{
		{"", SortNone, false},
		{"none", SortNone, false},
		{"Name", SortName, false},
		{"alphabetical", SortName, false},
		{"driving", SortDriving, false},
		{" BIKING ", SortBiking, false},
		{"walking", SortWalking, false},
		{"transit", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSortMode(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseSortMode(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestSortMode_Mode(t *testing.T) {
	if m, ok := SortBiking.Mode(); !ok || m != facility.Biking {
		t.Errorf("SortBiking.Mode() = %q, %v", m, ok)
	}
	if _, ok := SortName.Mode(); ok {
		t.Error("SortName should not have a travel mode")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" Barnum, ,Ashland ,")
	if want := []string{"Barnum", "Ashland"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SplitList() = %v, want %v", got, want)
	}
	if got := SplitList(""); len(got) != 0 {
		t.Errorf("SplitList(\"\") = %v", got)
	}
}

func TestFromValues(t *testing.T) {
	v, _ := url.ParseQuery("facility=Barnum,Ashland&facility=Rude&activity=Lap+Swim&q=+swim+&hide_cancelled=1&sort=walking&limit=4")

	f, err := FromValues(v)
	if err != nil {
		t.Fatalf("FromValues() error = %v", err)
	}

	want := &Filter{
		Facilities:    []string{"Barnum", "Ashland", "Rude"},
		Activities:    []string{"Lap Swim"},
		Search:        "swim",
		HideCancelled: true,
		Sort:          SortWalking,
		Limit:         4,
	}
	if !reflect.DeepEqual(f, want) {
		t.Errorf("FromValues() = %+v, want %+v", f, want)
	}

	back, err := FromValues(f.Values())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, want) {
		t.Errorf("FromValues(Values()) = %+v, want %+v", back, want)
	}
}

func TestFromValues_Errors(t *testing.T) {
	for _, query := range []string{"sort=fastest", "limit=five", "hide_cancelled=maybe"} {
		t.Run(query, func(t *testing.T) {
			v, _ := url.ParseQuery(query)
			if _, err := FromValues(v); err == nil {
				t.Errorf("FromValues(%q) should fail", query)
			}
		})
	}
}
