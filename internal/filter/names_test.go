package filter

import (
	"reflect"
	"testing"
)

func TestNormalizeCommonNames(t *testing.T) {
	tests := []struct {
		name           string
		scientificName string
		input          []string
		want           []string
	}{
		{
			name:           "trims and drops blanks",
			scientificName: "Monstera deliciosa",
			input:          []string{" Swiss cheese plant ", "", "   "},
			want:           []string{"Swiss cheese plant"},
		},
		{
			name:           "case-insensitive dedupe keeps first spelling",
			scientificName: "Monstera deliciosa",
			input:          []string{"Swiss Cheese Plant", "swiss cheese plant"},
			want:           []string{"Swiss Cheese Plant"},
		},
		{
			name:           "scientific name is not a common name",
			scientificName: "Monstera deliciosa",
			input:          []string{"monstera deliciosa", "Fruit salad plant"},
			want:           []string{"Fruit salad plant"},
		},
		{
			name:           "nil input",
			scientificName: "Monstera deliciosa",
			input:          nil,
			want:           []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCommonNames(tt.scientificName, tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeCommonNames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeNames(t *testing.T) {
	got := NormalizeNames([]string{" Evergreen", "evergreen ", "", "Climbing"})
	want := []string{"Evergreen", "Climbing"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeNames() = %v, want %v", got, want)
	}
}
