package pipeline

import (
	"errors"
	"fmt"

	"github.com/nikhilbhutani/voiceagent/internal/upstream"
)

// Stage names one step of the pipeline.
type Stage string

const (
	StageTranscription Stage = "transcription"
	StageGeneration    Stage = "generation"
	StageSynthesis     Stage = "synthesis"
)

// ErrMissingAudio is returned when the request carries no audio upload.
var ErrMissingAudio = errors.New("no audio file provided")

// ServiceError reports a transport or HTTP failure talking to a stage's
// downstream service.
type ServiceError struct {
	Stage Stage
	Err   error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service error: %v", e.Stage, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// EmptyResultError reports a stage whose service answered without usable text.
type EmptyResultError struct {
	Stage Stage
}

func (e *EmptyResultError) Error() string {
	switch e.Stage {
	case StageTranscription:
		return "could not transcribe audio"
	case StageGeneration:
		return "could not get response from LLM"
	}
	return fmt.Sprintf("%s returned no result", e.Stage)
}

// FailedStage returns the stage that produced err, if any.
func FailedStage(err error) (Stage, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	var ee *EmptyResultError
	if errors.As(err, &ee) {
		return ee.Stage, true
	}
	return "", false
}

// redactedError is the form of err kept in run records. Service errors are
// reduced to their stage and upstream class since reply bodies can echo the
// transcript.
func redactedError(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return fmt.Sprintf("%s service error: %s", se.Stage, upstream.Classify(se.Err))
	}
	var ee *EmptyResultError
	if errors.As(err, &ee) {
		return ee.Error()
	}
	if errors.Is(err, ErrMissingAudio) {
		return ErrMissingAudio.Error()
	}
	return upstream.Classify(err)
}
