package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBadInputWrapsParameterKind(t *testing.T) {
	err := NewRedundantParameterError("year", "ignored for id lookups")

	assert.Equal(t, KindBadInput, KindOf(err))
	assert.Equal(t, KindRedundantParameter, CauseKind(err))
	assert.True(t, Has(err, KindRedundantParameter))
	assert.False(t, Has(err, KindInvalidValue))
	assert.True(t, IsRequestParameterKind(CauseKind(err)))
	assert.Contains(t, Detail(err), `redundant parameter "year"`)
}

func TestKindSurvivesFmtWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NewNoDataFoundError("Movie not found!"))

	assert.True(t, errors.Is(err, KindDataGatheringFailed))
	assert.True(t, errors.Is(err, KindNoDataFound))
	assert.True(t, errors.Is(err, New(KindNoDataFound, "", nil)))
	assert.Equal(t, "Movie not found!", Detail(err))
}

func TestDetailOfForeignCause(t *testing.T) {
	err := NewDataGatheringError(errors.New("connection refused"))

	assert.Equal(t, "connection refused", Detail(err))
	assert.Equal(t, Kind(""), CauseKind(err))
	assert.Equal(t, "plain", Detail(errors.New("plain")))
}

func TestErrorString(t *testing.T) {
	err := NewInnerError("template missing", errors.New("open template.docx"))
	assert.Equal(t, "APPLICATION_INNER_ERROR: template missing (caused by: open template.docx)", err.Error())
}
