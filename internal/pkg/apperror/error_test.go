package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSample = New(KindStateConflict, "SAMPLE", "sample conflict")

func TestError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", errSample.WithEmployee("emp-1"))

	assert.True(t, errors.Is(err, errSample))
	assert.False(t, errors.Is(err, New(KindStateConflict, "OTHER", "other")))
	assert.Equal(t, KindStateConflict, KindOf(err))
}

func TestError_MessageNamesEmployeeAndDepartment(t *testing.T) {
	err := New(KindConfigurationMissing, "NO_COMPENSATION", "no compensation configured").
		WithEmployee("emp-7").
		WithDepartment("dept-2")

	assert.Equal(t, "no compensation configured (employee emp-7) (department dept-2)", err.Error())
}

func TestTransient_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transient(cause, "failed to load sessions")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindTransient, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(cause))
}
