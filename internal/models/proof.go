package models

// RequirementType selects which raw metric column a proof averages
type RequirementType string

const (
	RequirementStepsAvg    RequirementType = "steps_avg"
	RequirementSleepAvg    RequirementType = "sleep_avg"
	RequirementRecoveryAvg RequirementType = "recovery_avg"
	RequirementHRVAvg      RequirementType = "hrv_avg"
	RequirementRHRAvg      RequirementType = "rhr_avg"
)

// Eligibility is the check-only result: did the user's window average
// clear the threshold, and what was it.
type Eligibility struct {
	Eligible    bool     `json:"eligible"`
	ActualValue *float64 `json:"actual_value,omitempty"`
}

// ProofResult carries the opaque token handed to the rewards ledger on an
// eligible claim. The token is a traceable identifier, not a cryptographic
// commitment.
type ProofResult struct {
	Eligible    bool     `json:"eligible"`
	ProofHash   *string  `json:"proof_hash,omitempty"`
	ActualValue *float64 `json:"actual_value,omitempty"`
	Message     string   `json:"message"`
}

// VerifyProofRequest is the API request to verify a threshold claim
type VerifyProofRequest struct {
	RequirementType RequirementType `json:"requirement_type" binding:"required"`
	Threshold       float64         `json:"threshold" binding:"required"`
	Days            int             `json:"days" binding:"required,min=1,max=90"`
}
