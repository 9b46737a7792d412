package validators

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type slotRequest struct {
	StartTime string `validate:"required,clocklabel"`
	EndTime   string `validate:"omitempty,clocklabel"`
	Timezone  string `validate:"timezone"`
}

func TestCustomRules(t *testing.T) {
	v := validator.New()
	if err := RegisterOn(v); err != nil {
		t.Fatalf("RegisterOn: %v", err)
	}

	cases := []struct {
		name string
		req  slotRequest
		ok   bool
	}{
		{"valid", slotRequest{StartTime: "9:00 AM", EndTime: "11:00 AM", Timezone: "UTC"}, true},
		{"compact label", slotRequest{StartTime: "9AM"}, true},
		{"24 hour label", slotRequest{StartTime: "14:30"}, true},
		{"missing start", slotRequest{}, false},
		{"bad start", slotRequest{StartTime: "morning"}, false},
		{"bad end", slotRequest{StartTime: "9:00 AM", EndTime: "25:00"}, false},
		{"bad timezone", slotRequest{StartTime: "9:00 AM", Timezone: "Mars/Olympus"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.req)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected a validation error")
			}
			if err != nil && Message(err) == "" {
				t.Fatal("empty message")
			}
		})
	}
}
