package request

// AdjustRequest is the request body for granting or debiting a counter
type AdjustRequest struct {
	Field string `json:"field"`
	Delta int64  `json:"delta"`
}

// VestRequest is the request body for arming or disarming a vest
type VestRequest struct {
	Armed bool `json:"armed"`
}

// ShootRequest is the request body for a shot.
// The marker fields describe the target's platform state.
type ShootRequest struct {
	ActorID         string `json:"actor_id"`
	TargetID        string `json:"target_id"`
	TargetMarked    bool   `json:"target_marked"`
	TargetProtected bool   `json:"target_protected"`
}

// ReviveRequest is the request body for a revive
type ReviveRequest struct {
	MedicID       string `json:"medic_id"`
	PatientID     string `json:"patient_id"`
	PatientMarked bool   `json:"patient_marked"`
}

// MarkerFailureRequest reports that the caller could not apply or remove the
// marker for the outcome with OutcomeID
type MarkerFailureRequest struct {
	OutcomeID string `json:"outcome_id"`
	Reason    string `json:"reason"`
	Refund    bool   `json:"refund"`
}
