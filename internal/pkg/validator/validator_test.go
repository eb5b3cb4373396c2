package validator

import (
	"errors"
	"testing"

	gvalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorInitialization(t *testing.T) {
	t.Run("should initialize validator instance", func(t *testing.T) {
		assert.NotNil(t, validator)
	})

	t.Run("should work correctly after initialization", func(t *testing.T) {
		type SimpleStruct struct {
			Name string `validate:"required"`
		}

		err := validator.Struct(SimpleStruct{Name: "mainnet"})
		assert.NoError(t, err)
	})
}

func TestFormatError(t *testing.T) {
	t.Run("should transform validation errors to formatted errors", func(t *testing.T) {
		testValidator := gvalidator.New()

		type TestStruct struct {
			Name string `validate:"required"`
		}

		err := testValidator.Struct(TestStruct{})
		require.Error(t, err)

		formattedErr := formatError(err)

		assert.ErrorIs(t, formattedErr, ErrValidationFailed)
		assert.Contains(t, formattedErr.Error(), "'Name': value '' does not meet the requirements for the 'required' validation")
	})

	t.Run("should return original error when not validation error", func(t *testing.T) {
		originalErr := errors.New("storage unavailable")
		formattedErr := formatError(originalErr)

		assert.Equal(t, originalErr, formattedErr)
	})

	t.Run("should handle multiple validation errors", func(t *testing.T) {
		testValidator := gvalidator.New()

		type MultiFieldStruct struct {
			Name   string `validate:"required"`
			RPCURL string `validate:"required,url"`
		}

		err := testValidator.Struct(MultiFieldStruct{RPCURL: "not a url"})
		require.Error(t, err)

		formattedErr := formatError(err)

		assert.ErrorIs(t, formattedErr, ErrValidationFailed)
		errStr := formattedErr.Error()
		assert.Contains(t, errStr, "'Name': value '' does not meet the requirements for the 'required' validation")
		assert.Contains(t, errStr, "'RPCURL': value 'not a url' does not meet the requirements for the 'url' validation")
	})
}

func TestValidate(t *testing.T) {
	t.Run("should pass when all constraints hold", func(t *testing.T) {
		type ChainEntry struct {
			Network string `validate:"required"`
			ChainID int64  `validate:"required,gt=0"`
			RPCURL  string `validate:"required,url"`
		}

		err := Validate(ChainEntry{
			Network: "polygon",
			ChainID: 137,
			RPCURL:  "https://polygon-rpc.com",
		})
		assert.NoError(t, err)
	})

	t.Run("should fail when a required field is missing", func(t *testing.T) {
		type ChainEntry struct {
			Network string `validate:"required"`
		}

		err := Validate(ChainEntry{})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("should validate slice elements with dive", func(t *testing.T) {
		type Endpoints struct {
			URLs []string `validate:"required,min=1,dive,required,url"`
		}

		assert.NoError(t, Validate(Endpoints{URLs: []string{"https://example.com"}}))
		assert.ErrorIs(t, Validate(Endpoints{URLs: []string{"nope"}}), ErrValidationFailed)
		assert.ErrorIs(t, Validate(Endpoints{}), ErrValidationFailed)
	})

	t.Run("should pass when validating empty struct", func(t *testing.T) {
		type EmptyStruct struct{}
		assert.NoError(t, Validate(EmptyStruct{}))
	})
}
