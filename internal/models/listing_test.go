package models

import "testing"

func TestQueryEqual(t *testing.T) {
	base := Query{Brand: "Perodua", Model: "Myvi", MaxMileage: 50000}

	tests := []struct {
		name  string
		other Query
		want  bool
	}{
		{"identical", base, true},
		{"case differs", Query{Brand: "PERODUA", Model: "myvi", MaxMileage: 50000}, true},
		{"mileage differs", Query{Brand: "Perodua", Model: "Myvi", MaxMileage: 60000}, false},
		{"min mileage differs", Query{Brand: "Perodua", Model: "Myvi", MinMileage: 1, MaxMileage: 50000}, false},
		{"model differs", Query{Brand: "Perodua", Model: "Axia", MaxMileage: 50000}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Equal(tt.other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResultSetLen(t *testing.T) {
	var nilSet *ResultSet
	if nilSet.Len() != 0 {
		t.Errorf("nil result set should have length 0")
	}

	rs := &ResultSet{Rows: []ResultRow{{No: 1}, {No: 2}}}
	if rs.Len() != 2 {
		t.Errorf("Len() = %d, want 2", rs.Len())
	}
}

func TestCacheEntryQuery(t *testing.T) {
	e := CacheEntry{Brand: "perodua", Model: "myvi", MinMileage: 0, MaxMileage: 50000, Filename: "x.csv"}
	want := Query{Brand: "perodua", Model: "myvi", MaxMileage: 50000}
	if got := e.Query(); got != want {
		t.Errorf("Query() = %+v, want %+v", got, want)
	}
}
