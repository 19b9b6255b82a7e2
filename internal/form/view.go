package form

import "github.com/MikhailRaia/shortener-form/internal/model"

// State is the visual state of the form.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateResultShown
	StateErrorShown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateResultShown:
		return "result"
	case StateErrorShown:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText lets State render as its name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// View is an immutable snapshot of the form.
type View struct {
	State          State                     `json:"state"`
	Input          string                    `json:"input"`
	SubmitDisabled bool                      `json:"submit_disabled"`
	Result         *model.SubmissionResponse `json:"result,omitempty"`
	ErrorMessage   string                    `json:"error,omitempty"`
	CopyFocused    bool                      `json:"copy_focused"`
}

func (v View) Loading() bool {
	return v.State == StateLoading
}

func (v View) ResultVisible() bool {
	return v.State == StateResultShown && v.Result != nil
}

func (v View) ErrorVisible() bool {
	return v.State == StateErrorShown
}
