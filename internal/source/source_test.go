package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DispatchesByExtension(t *testing.T) {
	ctx := context.Background()

	yamlPath := writeFile(t, "a.YML", "records:\n  - {id: 1, name: y}\n")
	ds, err := Load(ctx, yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "y", ds.Records[0].Name())

	cuePath := writeFile(t, "a.cue", `records: [{id: 1, name: "c"}]`)
	ds, err = Load(ctx, cuePath)
	require.NoError(t, err)
	assert.Equal(t, "c", ds.Records[0].Name())

	dbPath := createDB(t, recordsSchema, `INSERT INTO records (id, name) VALUES (1, 's')`)
	ds, err = Load(ctx, dbPath)
	require.NoError(t, err)
	assert.Equal(t, "s", ds.Records[0].Name())
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load(context.Background(), "records.csv")
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeUnsupported, loadErr.Code)
	assert.Contains(t, err.Error(), ".csv")
}

func TestLoadError_Format(t *testing.T) {
	err := &LoadError{Code: ErrCodeInvalidRecord, Message: "record 1: bad"}
	assert.Equal(t, "E203: record 1: bad", err.Error())

	inner := errors.New("cause")
	wrapped := &LoadError{Code: ErrCodeReadFailed, Message: "x", Err: inner}
	assert.True(t, errors.Is(wrapped, inner))
}
