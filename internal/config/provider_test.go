// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"

	"github.com/invowk/recipe/pkg/types"
)

func TestLoadOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       LoadOptions
		wantFields int
	}{
		{name: "all empty", opts: LoadOptions{}},
		{
			name: "all valid",
			opts: LoadOptions{ConfigFilePath: "/tmp/recipe.cue", ConfigDirPath: "/tmp/cfg", BaseDir: "/tmp/repo"},
		},
		{name: "blank config file", opts: LoadOptions{ConfigFilePath: types.FilesystemPath("   ")}, wantFields: 1},
		{name: "blank base dir", opts: LoadOptions{BaseDir: types.FilesystemPath("\t")}, wantFields: 1},
		{
			name:       "mixed",
			opts:       LoadOptions{ConfigDirPath: types.FilesystemPath(" "), BaseDir: "/valid"},
			wantFields: 1,
		},
		{
			name:       "all blank",
			opts:       LoadOptions{ConfigFilePath: " ", ConfigDirPath: "\t", BaseDir: "  "},
			wantFields: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.opts.Validate()
			if tt.wantFields == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, ErrInvalidLoadOptions) {
				t.Fatalf("Validate() = %v, want ErrInvalidLoadOptions", err)
			}
			var loadErr *InvalidLoadOptionsError
			if !errors.As(err, &loadErr) {
				t.Fatalf("error should be *InvalidLoadOptionsError, got %T", err)
			}
			if len(loadErr.FieldErrors) != tt.wantFields {
				t.Errorf("got %d field errors, want %d", len(loadErr.FieldErrors), tt.wantFields)
			}
			for _, fieldErr := range loadErr.FieldErrors {
				if !errors.Is(fieldErr, types.ErrInvalidFilesystemPath) {
					t.Errorf("field error %v should wrap ErrInvalidFilesystemPath", fieldErr)
				}
			}
		})
	}
}

func TestInvalidLoadOptionsError_Error(t *testing.T) {
	t.Parallel()

	single := &InvalidLoadOptionsError{FieldErrors: []error{errors.New("boom")}}
	if got := single.Error(); got != "invalid load options: boom" {
		t.Errorf("Error() = %q", got)
	}

	multi := &InvalidLoadOptionsError{FieldErrors: []error{errors.New("a"), errors.New("b")}}
	if got := multi.Error(); got != "invalid load options: 2 field errors" {
		t.Errorf("Error() = %q", got)
	}
}
