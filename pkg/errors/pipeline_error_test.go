package errors

import (
	"fmt"
	"testing"
)

func TestIsTranscodeFailureClassification(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		terminal bool
	}{
		{"probe", ErrProbe(fmt.Errorf("timeout")), true},
		{"no rendition", ErrNoEligibleRendition(200), true},
		{"encode", ErrEncode("480p", fmt.Errorf("exit status 1")), true},
		{"incomplete output", ErrIncompleteOutput("720p"), true},
		{"publish", ErrPublish(fmt.Errorf("connection refused")), false},
		{"plain error", fmt.Errorf("something else"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTranscodeFailure(tc.err); got != tc.terminal {
				t.Errorf("IsTranscodeFailure = %v, want %v", got, tc.terminal)
			}
		})
	}
}

func TestIsTranscodeFailureSeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("transcode content abc: %w", ErrEncode("360p", fmt.Errorf("boom")))
	if !IsTranscodeFailure(wrapped) {
		t.Error("wrapped encode failure not recognized")
	}
}

func TestErrorFormatting(t *testing.T) {
	err := ErrEncode("480p", fmt.Errorf("exit status 1"))
	msg := err.Error()
	if msg != "encode_failed[480p]: rendition conversion failed (exit status 1)" {
		t.Errorf("message = %q", msg)
	}

	plain := ErrNoEligibleRendition(144)
	if plain.Error() != "no_eligible_rendition: source height 144p is below the smallest ladder entry" {
		t.Errorf("message = %q", plain.Error())
	}
}
