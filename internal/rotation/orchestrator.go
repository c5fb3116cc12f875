// Package rotation drives the access-key rotation transaction: validate the
// stored credentials, enforce the one-live-key invariant, create a new key,
// verify it, write it to every profile, then retire the old key. The run is
// an explicit state machine; the only retry is the bounded verification
// loop, and the only rollback is its failure edge.
package rotation

import (
	"context"
	"time"

	"github.com/systmms/keyrotate/internal/credstore"
	kerrors "github.com/systmms/keyrotate/internal/errors"
	"github.com/systmms/keyrotate/internal/identity"
	"github.com/systmms/keyrotate/internal/logging"
	"github.com/systmms/keyrotate/pkg/keys"
)

// ProviderFactory builds an identity-provider client authenticated as the
// given key pair. The orchestrator threads ActiveCredentials through this
// factory instead of mutating process-wide credential state.
type ProviderFactory func(ctx context.Context, active keys.AccessKey) (identity.Provider, error)

// Orchestrator performs key rotation for one identity across one or more
// profiles.
type Orchestrator struct {
	store       credstore.Store
	newProvider ProviderFactory
	logger      *logging.Logger

	verifyAttempts int
	verifyDelay    time.Duration
	sleep          func(time.Duration)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithVerifyBudget overrides the verification retry budget.
func WithVerifyBudget(attempts int, delay time.Duration) Option {
	return func(o *Orchestrator) {
		if attempts > 0 {
			o.verifyAttempts = attempts
		}
		o.verifyDelay = delay
	}
}

// WithSleep replaces the delay function. Tests use this to run the
// verification loop without waiting.
func WithSleep(sleep func(time.Duration)) Option {
	return func(o *Orchestrator) {
		o.sleep = sleep
	}
}

// New creates an orchestrator. The default verification budget is 20
// attempts with a 3 second delay between them.
func New(store credstore.Store, factory ProviderFactory, logger *logging.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:          store,
		newProvider:    factory,
		logger:         logger,
		verifyAttempts: 20,
		verifyDelay:    3 * time.Second,
		sleep:          time.Sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Rotate runs the full rotation transaction for the profile set. On error
// the returned Result still describes how far the run got; the system is
// left in its last verified-consistent state (see the Status values).
func (o *Orchestrator) Rotate(ctx context.Context, profiles ProfileSet, force bool) (*Result, error) {
	res := &Result{
		Status:    StatusFailed,
		Profiles:  profiles,
		StartedAt: time.Now(),
	}
	m := newMachine()

	finish := func(err error) (*Result, error) {
		res.FinishedAt = time.Now()
		res.Transitions = m.transitions
		return res, err
	}

	// Validating: every profile must hold a complete key pair.
	resolved := make([]keys.AccessKey, 0, len(profiles))
	for _, profile := range profiles {
		key, err := o.store.Get(profile)
		if err != nil {
			return finish(err)
		}
		if key == nil {
			return finish(kerrors.ConfigurationError{
				Profile: profile,
				Reason:  "not found in credential store",
			})
		}
		if !key.Complete() {
			return finish(kerrors.ConfigurationError{
				Profile: profile,
				Reason:  "incomplete access key pair",
			})
		}
		resolved = append(resolved, *key)
	}

	// Consistency: all profiles must reference the same identity.
	active := resolved[0]
	if distinct := distinctKeyIDs(resolved); len(distinct) > 1 {
		if !force {
			return finish(kerrors.InconsistentProfilesError{
				Profiles: profiles,
				KeyIDs:   distinct,
			})
		}
		warning := "profiles reference different access keys; proceeding with profile '" + profiles[0] + "'"
		o.logger.Warn("%s", warning)
		res.Warnings = append(res.Warnings, warning)
	}
	res.OldKeyID = active.ID

	if err := m.to(StateAuthenticating); err != nil {
		return finish(err)
	}
	oldProvider, err := o.newProvider(ctx, active)
	if err != nil {
		return finish(err)
	}
	if err := oldProvider.Validate(ctx); err != nil {
		return finish(err)
	}
	o.logger.Debug("Authenticated with key %s", keys.Mask(active.ID))

	if err := m.to(StateCountChecking); err != nil {
		return finish(err)
	}
	ids, err := oldProvider.ListKeys(ctx)
	if err != nil {
		return finish(err)
	}
	if len(ids) > 1 {
		if !force {
			return finish(kerrors.TooManyKeysError{Count: len(ids)})
		}
		// Best effort: a key that refuses to die does not stop the run;
		// the next run's count check sees it again.
		for _, id := range ids {
			if id == active.ID {
				continue
			}
			if err := oldProvider.DeleteKey(ctx, id); err != nil {
				warning := "failed to delete extra key " + keys.Mask(id) + ": " + err.Error()
				o.logger.Warn("%s", warning)
				res.Warnings = append(res.Warnings, warning)
				continue
			}
			o.logger.Info("Deleted extra access key %s", keys.Mask(id))
		}
	}

	if err := m.to(StateCreating); err != nil {
		return finish(err)
	}
	newKey, err := oldProvider.CreateKey(ctx)
	if err != nil {
		return finish(kerrors.KeyCreationError{Reason: "provider rejected the request", Err: err})
	}
	if !newKey.Complete() {
		return finish(kerrors.KeyCreationError{Reason: "provider returned an incomplete key pair"})
	}
	res.NewKeyID = newKey.ID
	o.logger.Info("Created new access key %s", keys.Mask(newKey.ID))

	if err := m.to(StateVerifying); err != nil {
		return finish(err)
	}
	verifyErr := o.verify(ctx, *newKey)
	if verifyErr != nil {
		// Rollback: restore the old key as the active credential and
		// delete the key that never worked. The credential set must
		// equal the one the run started with.
		if err := oldProvider.DeleteKey(ctx, newKey.ID); err != nil {
			warning := "rollback: failed to delete unverified key " + keys.Mask(newKey.ID) + ": " + err.Error()
			o.logger.Warn("%s", warning)
			res.Warnings = append(res.Warnings, warning)
		}
		if err := m.to(StateRolledBack); err != nil {
			return finish(err)
		}
		res.Status = StatusRolledBack
		res.NewKeyID = ""
		return finish(kerrors.VerificationError{Attempts: o.verifyAttempts, Err: verifyErr})
	}

	if err := m.to(StatePropagating); err != nil {
		return finish(err)
	}
	var updated []string
	for _, profile := range profiles {
		if err := o.store.Set(profile, *newKey); err != nil {
			// Already-updated profiles are not reverted; they hold a
			// working key. The error says which ones.
			return finish(kerrors.PropagationError{
				Profile: profile,
				Updated: updated,
				Err:     err,
			})
		}
		updated = append(updated, profile)
		o.logger.Info("Updated profile '%s'", profile)
	}

	if err := m.to(StateRetiring); err != nil {
		return finish(err)
	}
	// The new key is verified and propagated; it retires its predecessor.
	newProvider, err := o.newProvider(ctx, *newKey)
	if err != nil {
		return finish(kerrors.KeyDeletionError{KeyID: active.ID, Err: err})
	}
	if err := newProvider.DeleteKey(ctx, active.ID); err != nil {
		return finish(kerrors.KeyDeletionError{KeyID: active.ID, Err: err})
	}
	o.logger.Info("Deleted old access key %s", keys.Mask(active.ID))

	if err := m.to(StateDone); err != nil {
		return finish(err)
	}
	res.Status = StatusSucceeded
	return finish(nil)
}

// verify polls a read-only call with the new key until it succeeds or the
// budget is spent. The first success wins.
func (o *Orchestrator) verify(ctx context.Context, newKey keys.AccessKey) error {
	provider, err := o.newProvider(ctx, newKey)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= o.verifyAttempts; attempt++ {
		if _, err := provider.ListKeys(ctx); err == nil {
			o.logger.Debug("New key usable after %d attempt(s)", attempt)
			return nil
		} else {
			lastErr = err
			o.logger.Debug("Verification attempt %d/%d failed: %v", attempt, o.verifyAttempts, err)
		}
		if attempt < o.verifyAttempts {
			o.sleep(o.verifyDelay)
		}
	}
	return lastErr
}

func distinctKeyIDs(resolved []keys.AccessKey) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, k := range resolved {
		if !seen[k.ID] {
			seen[k.ID] = true
			ids = append(ids, k.ID)
		}
	}
	return ids
}
