package domain

import "context"

// Repositories bundles the stores bound to one transaction.
type Repositories struct {
	Profiles    ProfileRepository
	Conferences ConferenceRepository
	Sessions    SessionRepository
	Tasks       TaskQueue
}

// Transactor runs closures in a transaction. A closure may run more than
// once when the store detects a conflicting writer, so it must rebuild any
// captured result on every run and keep side effects outside.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
