package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID       uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity int64     `json:"quantity" validate:"gt=0"`
	Kind     string    `json:"type" validate:"required,oneof=IN OUT"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	errs := ValidateStruct(&sample{ID: uuid.New(), Quantity: 0, Kind: "IN"})
	require.Len(t, errs, 1)
	assert.Equal(t, "quantity", errs[0].FailedField)
	assert.Equal(t, "gt", errs[0].Tag)
	assert.Equal(t, "must be greater than 0", errs[0].Message())
}

func TestValidateStructUUIDRequired(t *testing.T) {
	errs := ValidateStruct(&sample{Quantity: 1, Kind: "OUT"})
	require.Len(t, errs, 1)
	assert.Equal(t, "product_id", errs[0].FailedField)
	assert.Equal(t, "is required", errs[0].Message())
}

func TestValidateStructOneOf(t *testing.T) {
	errs := ValidateStruct(&sample{ID: uuid.New(), Quantity: 3, Kind: "SIDEWAYS"})
	require.Len(t, errs, 1)
	assert.Equal(t, "oneof", errs[0].Tag)
}

func TestValidateStructValid(t *testing.T) {
	assert.Empty(t, ValidateStruct(&sample{ID: uuid.New(), Quantity: 1, Kind: "IN"}))
}
