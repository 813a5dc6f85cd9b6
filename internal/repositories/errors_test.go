package repositories

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCategories(t *testing.T) {
	err := fmt.Errorf("load draft: %w", NewError("drafts.get", ErrorKindNotFound, nil))
	if !IsNotFound(err) {
		t.Fatalf("expected wrapped error to be not found")
	}
	if IsConflict(err) {
		t.Fatalf("expected not found error not to be a conflict")
	}

	var repoErr RepositoryError
	if !errors.As(err, &repoErr) {
		t.Fatalf("expected RepositoryError")
	}
	if repoErr.Error() != "drafts.get: not found" {
		t.Fatalf("unexpected message %q", repoErr.Error())
	}

	conflict := NewError("orders.insert", ErrorKindConflict, errors.New("exists"))
	if !IsConflict(conflict) || conflict.IsUnavailable() {
		t.Fatalf("unexpected categories for %v", conflict)
	}
}
