package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooseStringAcceptsStringsAndNumbers(t *testing.T) {
	var req CreateSchoolUnitRequest
	require.NoError(t, json.Unmarshal([]byte(`{"schoolUnit":"A","municipality":12,"typology":"SEDE"}`), &req))
	assert.Equal(t, "12", req.Municipality.String())
	assert.Equal(t, "SEDE", req.Typology.String())

	require.NoError(t, json.Unmarshal([]byte(`{"schoolUnit":"A","municipality":" 3 ","typology":null}`), &req))
	assert.Equal(t, "3", req.Municipality.String())
	assert.Equal(t, "", req.Typology.String())
}

func TestLooseStringRejectsOtherKinds(t *testing.T) {
	var req CreateSchoolUnitRequest
	assert.Error(t, json.Unmarshal([]byte(`{"municipality":true}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"municipality":{"id":1}}`), &req))
}

func TestUpdateRequestDistinguishesAbsentFields(t *testing.T) {
	var req UpdateSchoolUnitRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":"0"}`), &req))
	assert.Nil(t, req.Name)
	assert.Nil(t, req.Municipality)
	require.NotNil(t, req.Status)
	assert.Equal(t, "0", *req.Status)
}
