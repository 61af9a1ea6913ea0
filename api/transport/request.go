package transport

type LoginRequest struct {
	Address string `json:"address"`
}

type RegisterMemberRequest struct {
	Address string `json:"address"`
}

type PaySubscriptionRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

type SubmitProposalRequest struct {
	PerformerAddress string `json:"performer_address"`
	DepositCents     int64  `json:"deposit_cents"`
	DurationDays     int    `json:"duration_days"`
}

type DurationUpdateRequest struct {
	DurationDays int `json:"duration_days"`
}
