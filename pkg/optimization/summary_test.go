package optimization

import "testing"

func TestParseAllocation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Allocation
		wantErr bool
	}{
		{name: "Empty", input: "", want: AllocationSequential},
		{name: "Sequential", input: "sequential", want: AllocationSequential},
		{name: "Mixed case with spaces", input: "  LargestRemainder ", want: AllocationLargestRemainder},
		{name: "Hyphenated", input: "largest-remainder", want: AllocationLargestRemainder},
		{name: "Underscored", input: "largest_remainder", want: AllocationLargestRemainder},
		{name: "Unknown", input: "proportional", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAllocation(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseAllocation(%q) expected an error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAllocation(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAllocation(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
