package workflow

import (
	"context"
	"errors"
	"testing"
)

const (
	stateIdle      State = "IDLE"
	stateAskDates  State = "ASK_DATES"
	stateAskType   State = "ASK_TYPE"
	stateSubmitted State = "SUBMITTED"

	triggerStart  Trigger = "START"
	triggerDates  Trigger = "DATES"
	triggerType   Trigger = "TYPE"
	triggerCancel Trigger = "CANCEL"
)

func newTestBuilder() StateMachineBuilder {
	builder := NewBuilder()
	builder.Configure(stateIdle).
		Permit(triggerStart, stateAskDates)
	builder.Configure(stateAskDates).
		Permit(triggerDates, stateAskType).
		Permit(triggerCancel, stateIdle)
	builder.Configure(stateAskType).
		Permit(triggerType, stateSubmitted).
		Permit(triggerCancel, stateIdle)
	return builder
}

func TestState_String(t *testing.T) {
	if got := stateAskDates.String(); got != "ASK_DATES" {
		t.Errorf("State.String() = %v, want %v", got, "ASK_DATES")
	}
}

func TestTrigger_String(t *testing.T) {
	if got := triggerCancel.String(); got != "CANCEL" {
		t.Errorf("Trigger.String() = %v, want %v", got, "CANCEL")
	}
}

func TestBuilder_BuildRejectsUnknownState(t *testing.T) {
	builder := newTestBuilder()

	_, err := builder.Build(State("NOPE"))
	if !errors.Is(err, ErrUnknownState) {
		t.Errorf("Build() error = %v, want %v", err, ErrUnknownState)
	}
}

func TestBuilder_BuildAcceptsTransitionTarget(t *testing.T) {
	// SUBMITTED is never configured, only reached. It is still a known state.
	builder := newTestBuilder()

	machine, err := builder.Build(stateSubmitted)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if machine.State() != stateSubmitted {
		t.Errorf("State() = %v, want %v", machine.State(), stateSubmitted)
	}
	if len(machine.PermittedTriggers()) != 0 {
		t.Errorf("PermittedTriggers() = %v, want empty", machine.PermittedTriggers())
	}
}

func TestMachine_Fire(t *testing.T) {
	builder := newTestBuilder()
	machine, err := builder.Build(stateIdle)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if !machine.CanFire(triggerStart) {
		t.Error("CanFire() should return true for permitted trigger")
	}

	steps := []struct {
		trigger Trigger
		want    State
	}{
		{triggerStart, stateAskDates},
		{triggerDates, stateAskType},
		{triggerType, stateSubmitted},
	}
	for _, step := range steps {
		if err := machine.Fire(context.Background(), step.trigger); err != nil {
			t.Fatalf("Fire(%s) failed: %v", step.trigger, err)
		}
		if machine.State() != step.want {
			t.Errorf("State after %s = %v, want %v", step.trigger, machine.State(), step.want)
		}
	}
}

func TestMachine_FireInvalidTransition(t *testing.T) {
	builder := newTestBuilder()
	machine, _ := builder.Build(stateIdle)

	err := machine.Fire(context.Background(), triggerDates)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if machine.State() != stateIdle {
		t.Errorf("State should remain %v after failed Fire(), got %v", stateIdle, machine.State())
	}
}

func TestMachine_CancelFromAnyStep(t *testing.T) {
	for _, from := range []State{stateAskDates, stateAskType} {
		t.Run(string(from), func(t *testing.T) {
			builder := newTestBuilder()
			machine, _ := builder.Build(from)

			if err := machine.Fire(context.Background(), triggerCancel); err != nil {
				t.Fatalf("Fire(CANCEL) failed: %v", err)
			}
			if machine.State() != stateIdle {
				t.Errorf("State = %v, want %v", machine.State(), stateIdle)
			}
		})
	}
}

func TestMachine_PermitIf(t *testing.T) {
	type guardKey struct{}

	builder := NewBuilder()
	builder.Configure(stateAskType).
		PermitIf(triggerType, stateSubmitted, func(ctx context.Context) bool {
			allowed, _ := ctx.Value(guardKey{}).(bool)
			return allowed
		}).
		PermitIf(triggerType, stateAskDates, func(ctx context.Context) bool {
			allowed, _ := ctx.Value(guardKey{}).(bool)
			return !allowed
		})

	machine, _ := builder.Build(stateAskType)
	ctx := context.WithValue(context.Background(), guardKey{}, false)
	if err := machine.Fire(ctx, triggerType); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if machine.State() != stateAskDates {
		t.Errorf("State = %v, want %v", machine.State(), stateAskDates)
	}

	machine2, _ := builder.Build(stateAskType)
	ctx2 := context.WithValue(context.Background(), guardKey{}, true)
	if err := machine2.Fire(ctx2, triggerType); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if machine2.State() != stateSubmitted {
		t.Errorf("State = %v, want %v", machine2.State(), stateSubmitted)
	}
}

func TestMachine_AllGuardsFail(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(stateAskType).
		PermitIf(triggerType, stateSubmitted, func(ctx context.Context) bool {
			return false
		})

	machine, _ := builder.Build(stateAskType)
	err := machine.Fire(context.Background(), triggerType)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}
	if machine.State() != stateAskType {
		t.Errorf("State should remain %v, got %v", stateAskType, machine.State())
	}
}

func TestBuilder_MachinesAreIndependent(t *testing.T) {
	builder := newTestBuilder()
	m1, _ := builder.Build(stateIdle)
	m2, _ := builder.Build(stateIdle)

	if err := m1.Fire(context.Background(), triggerStart); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m2.State() != stateIdle {
		t.Errorf("machines should not share state, m2 = %v", m2.State())
	}
}
