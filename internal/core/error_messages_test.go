package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/JonMunkholm/lasfile/internal/las"
	"github.com/JonMunkholm/lasfile/internal/lasio"
	"github.com/JonMunkholm/lasfile/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"open failure", las.NewOpenFailure("w.las", os.ErrNotExist).OpenError(), "LAS001"},
		{"read failure", las.NewReadFailure("w.las", errors.New("unexpected EOF")).ReadError(), "LAS002"},
		{"size limit beats read stage", las.NewReadFailure("w.las", lasio.ErrTooLarge).ReadError(), "FILE001"},
		{"invalid utf-8", las.NewReadFailure("w.las", fmt.Errorf("%w at byte 12", lasio.ErrInvalidUTF8)).ReadError(), "FILE003"},
		{"no sections", las.Parse("w.las", "just some text\n").SplitError(), "LAS003"},
		{"no version section", las.Parse("w.las", "~W\n WELL. A : well\n").VersionError(), "LAS004"},
		{"section parse error", &las.ParseError{Section: "well"}, "LAS005"},
		{"missing sections at split", las.Parse("w.las", "~V\n VERS. 2.0 : v\n WRAP. NO : w\n").SplitError(), "LAS006"},
		{"missing sections", las.Check(las.Parse("w.las", "~V\n VERS. 2.0 : v\n WRAP. NO : w\n"), true).Err(), "LAS006"},
		{"unsupported export", fmt.Errorf("export: %w", las.ErrUnsupportedVersion), "LAS007"},
		{"not found", fmt.Errorf("get file: %w", store.ErrNotFound), "FILE006"},
		{"busy", ErrTooManyIngests, "UPL002"},
		{"cancelled", fmt.Errorf("save: %w", context.Canceled), "UPL004"},
		{"deadline", context.DeadlineExceeded, "UPL005"},
		{"empty", ErrEmptyFile, "FILE005"},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), "DB004"},
		{"sqlite busy", errors.New("DATABASE IS LOCKED"), "DB007"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"unknown error returns default", errors.New("some random internal error"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil && tt.wantCode != "" {
				t.Fatal("fixture produced no error")
			}
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v) code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrTooManyIngests)
	want := "System is busy processing other uploads (Code: UPL002). Please wait a moment and try again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"las error is user facing", las.ErrSplit, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	if got := NewUserError(nil); got != nil {
		t.Errorf("NewUserError(nil) = %v, want nil", got)
	}

	techErr := fmt.Errorf("ingest: %w", ErrNoFile)
	userErr := NewUserError(techErr)
	if userErr.Error() != "No file was selected" {
		t.Errorf("Error() = %q, want user message", userErr.Error())
	}
	if !errors.Is(userErr, ErrNoFile) {
		t.Error("Unwrap() should expose the technical error")
	}
}
