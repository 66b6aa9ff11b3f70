package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/adapters/logger"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries_Chains(t *testing.T) {
	installErr := zerr.With(
		zerr.Wrap(zerr.With(zerr.New("permission denied"), "path", "/ips/fifo"), "failed to copy ip"),
		"ip", "fifo:1.0.0",
	)

	cases := map[string]struct {
		err      error
		messages []string
		meta     []map[string]any
	}{
		"plain error": {
			err:      errors.New("disk full"),
			messages: []string{"disk full"},
			meta:     []map[string]any{nil},
		},
		"install failure": {
			err:      installErr,
			messages: []string{"failed to copy ip", "permission denied"},
			meta: []map[string]any{
				{"ip": "fifo:1.0.0"},
				{"path": "/ips/fifo"},
			},
		},
		"wrapped stdlib cause": {
			err:      zerr.Wrap(zerr.Wrap(errors.New("unexpected EOF"), "failed to parse lock"), "failed to load project"),
			messages: []string{"failed to load project", "failed to parse lock", "unexpected EOF"},
			meta:     []map[string]any{{}, {}, nil},
		},
		"domain failure": {
			err:      domain.Fail(domain.ErrMissingDependency, "unit", "work.top", "reference", "fifo"),
			messages: []string{"missing dependency"},
			meta:     []map[string]any{{"unit": "work.top", "reference": "fifo"}},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			entries := logger.CollectErrorEntriesExported(tc.err)
			require.Len(t, entries, len(tc.messages))
			for i := range entries {
				assert.Equal(t, tc.messages[i], entries[i].Message, "entry %d", i)
				assert.Equal(t, tc.meta[i], entries[i].Metadata, "entry %d", i)
			}
		})
	}

	assert.Empty(t, logger.CollectErrorEntriesExported(nil))
}

func TestFormatErrorEntries_Layout(t *testing.T) {
	cases := map[string]struct {
		entries []logger.ErrorEntry
		want    string
	}{
		"nothing": {},
		"headline only": {
			entries: []logger.ErrorEntry{{Message: "dependency cycle"}},
			want:    "Error: dependency cycle",
		},
		"continuation lines align under the headline": {
			entries: []logger.ErrorEntry{{Message: "dependency cycle\nwork.a -> work.b -> work.a"}},
			want:    "Error: dependency cycle\n       work.a -> work.b -> work.a",
		},
		"headline metadata is sorted": {
			entries: []logger.ErrorEntry{{
				Message:  "checksum mismatch",
				Metadata: map[string]any{"locked": "ab12", "ip": "fifo:1.0.0", "cached": "cd34"},
			}},
			want: "Error: checksum mismatch\n       cached: cd34\n       ip: fifo:1.0.0\n       locked: ab12",
		},
		"causes are listed with their metadata": {
			entries: []logger.ErrorEntry{
				{Message: "failed to load project"},
				{Message: "failed to parse lock", Metadata: map[string]any{"path": "ip.lock"}},
				{Message: "unexpected EOF"},
			},
			want: "Error: failed to load project\n\n  Caused by:\n" +
				"    → failed to parse lock\n      path: ip.lock\n" +
				"    → unexpected EOF",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, logger.FormatErrorEntriesExported(tc.entries))
		})
	}
}
