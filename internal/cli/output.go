package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case RegisterResult:
		o.printRegisterResult(v)
	case AdjustResult:
		o.printAdjustResult(v)
	case VestResult:
		o.printVestResult(v)
	case Outcome:
		o.printOutcome(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID                  string     `json:"id"`
	Balance             int64      `json:"balance"`
	Guns                int64      `json:"guns"`
	Vest                int64      `json:"vest"`
	Medkit              int64      `json:"medkit"`
	IsVested            bool       `json:"is_vested"`
	State               string     `json:"state"`
	LastIncapacitatedAt *time.Time `json:"last_incapacitated_at,omitempty"`
}

// RegisterResult response type
type RegisterResult struct {
	Player  Player `json:"player"`
	Created bool   `json:"created"`
}

// AdjustResult response type
type AdjustResult struct {
	Field string `json:"field"`
	Value int64  `json:"value"`
}

// VestResult response type
type VestResult struct {
	Armed bool `json:"armed"`
}

// Outcome response type
type Outcome struct {
	ID                   string `json:"id,omitempty"`
	Action               string `json:"action"`
	Kind                 string `json:"kind"`
	Actor                Player `json:"actor"`
	Target               Player `json:"target"`
	ApplyMarker          bool   `json:"apply_marker"`
	MarkerTimeoutSeconds int64  `json:"marker_timeout_seconds,omitempty"`
	RemoveMarker         bool   `json:"remove_marker"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (o *Output) printPlayer(p Player) {
	vestStr := "unarmed"
	if p.IsVested {
		vestStr = "armed"
	}
	_, _ = fmt.Fprintf(o.w, "Player: %s (%s)\n", p.ID, p.State)
	_, _ = fmt.Fprintf(o.w, "Balance: %d\n", p.Balance)
	_, _ = fmt.Fprintf(o.w, "Guns: %d\n", p.Guns)
	_, _ = fmt.Fprintf(o.w, "Vest: %d (%s)\n", p.Vest, vestStr)
	_, _ = fmt.Fprintf(o.w, "Medkits: %d\n", p.Medkit)
}

func (o *Output) printRegisterResult(r RegisterResult) {
	if r.Created {
		_, _ = fmt.Fprintf(o.w, "Registered %s\n", r.Player.ID)
	} else {
		_, _ = fmt.Fprintf(o.w, "%s is already registered\n", r.Player.ID)
	}
	o.printPlayer(r.Player)
}

func (o *Output) printAdjustResult(a AdjustResult) {
	_, _ = fmt.Fprintf(o.w, "%s: %d\n", a.Field, a.Value)
}

func (o *Output) printVestResult(v VestResult) {
	if v.Armed {
		_, _ = fmt.Fprintln(o.w, "Vest armed")
	} else {
		_, _ = fmt.Fprintln(o.w, "Vest not armed")
	}
}

func (o *Output) printOutcome(out Outcome) {
	switch out.Kind {
	case "absorbed":
		_, _ = fmt.Fprintf(o.w, "%s was shot but their vest saved them! (%d left)\n", out.Target.ID, out.Target.Vest)
	case "incapacitated":
		_, _ = fmt.Fprintf(o.w, "%s has been shot!\n", out.Target.ID)
	case "revived":
		_, _ = fmt.Fprintf(o.w, "%s has been revived by %s\n", out.Target.ID, out.Actor.ID)
	default:
		_, _ = fmt.Fprintf(o.w, "Outcome: %s\n", out.Kind)
	}
	if out.ApplyMarker {
		_, _ = fmt.Fprintf(o.w, "Apply marker for %s\n", time.Duration(out.MarkerTimeoutSeconds)*time.Second)
	}
	if out.RemoveMarker {
		_, _ = fmt.Fprintln(o.w, "Remove marker")
	}
	if out.ID != "" {
		_, _ = fmt.Fprintf(o.w, "Outcome ID: %s\n", out.ID)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	if h.Error != "" {
		_, _ = fmt.Fprintf(o.w, "Error: %s\n", h.Error)
	}
}
