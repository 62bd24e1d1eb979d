package application

import "testing"

func TestValidationError(t *testing.T) {
	t.Parallel()

	var nilErr *ValidationError
	if nilErr.HasErrors() {
		t.Fatal("nil validation error must not report errors")
	}
	if nilErr.Error() != "" {
		t.Fatalf("nil validation error message should be empty, got %q", nilErr.Error())
	}

	vErr := &ValidationError{}
	if vErr.HasErrors() {
		t.Fatal("empty validation error must not report errors")
	}

	vErr.add("client_name", "client name is required")
	if !vErr.HasErrors() {
		t.Fatal("expected recorded field error")
	}
	if vErr.Error() != "validation failed" {
		t.Fatalf("unexpected message %q", vErr.Error())
	}
	if vErr.FieldErrors["client_name"] != "client name is required" {
		t.Fatalf("unexpected field errors %+v", vErr.FieldErrors)
	}
}

func TestParseAction(t *testing.T) {
	t.Parallel()

	if action, err := ParseAction("ok"); err != nil || action != ActionOK {
		t.Fatalf("expected ActionOK, got %q (%v)", action, err)
	}
	if action, err := ParseAction("no"); err != nil || action != ActionNo {
		t.Fatalf("expected ActionNo, got %q (%v)", action, err)
	}
	for _, raw := range []string{"", "yes", "OK", "confirm"} {
		if _, err := ParseAction(raw); err == nil {
			t.Fatalf("expected ErrInvalidAction for %q", raw)
		}
	}
}

func TestActionTargetStatus(t *testing.T) {
	t.Parallel()

	if ActionOK.TargetStatus() != StatusConfirmed {
		t.Fatal("ok must target confirmed")
	}
	if ActionNo.TargetStatus() != StatusDeclined {
		t.Fatal("no must target declined")
	}
}
