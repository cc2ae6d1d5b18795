package config

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseColumns(t *testing.T) {
	tests := []struct {
		spec    string
		want    []int
		wantErr bool
	}{
		{spec: "2,3", want: []int{2, 3}},
		{spec: " 3 , 1 ,3", want: []int{1, 3}},
		{spec: "1,,2,", want: []int{1, 2}},
		{spec: "", want: []int{}},
		{spec: "a", wantErr: true},
		{spec: "1,two", wantErr: true},
		{spec: "0", wantErr: true},
		{spec: "-1", wantErr: true},
		{spec: "1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			sel, err := ParseColumns(tt.spec)
			if tt.wantErr {
				var colErr *InvalidColumnSpecError
				if !errors.As(err, &colErr) {
					t.Fatalf("ParseColumns(%q) error = %v, want InvalidColumnSpecError", tt.spec, err)
				}
				if colErr.Spec != tt.spec {
					t.Errorf("Spec = %q", colErr.Spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColumns(%q) error = %v", tt.spec, err)
			}
			if got := sel.Positions(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Positions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColumnSelectorContains(t *testing.T) {
	sel, err := ParseColumns("2")
	if err != nil {
		t.Fatal(err)
	}
	if sel.Contains(0) || !sel.Contains(1) || sel.Contains(2) {
		t.Error("Contains() must map 0-based indexes onto 1-based positions")
	}
}
