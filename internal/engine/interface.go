package engine

import (
	"context"
	"time"

	"github.com/mattjoyce/curfewd/internal/transcript"
)

// TranscriptStore is the slice of the transcript store the engine needs:
// committing a lockdown's transcript and stamping a reopen. Reads stay with
// the callers that decide what to replay.
type TranscriptStore interface {
	Save(ctx context.Context, t *transcript.Transcript) error
	StampReopen(ctx context.Context, workspaceID string, at time.Time) error
}
