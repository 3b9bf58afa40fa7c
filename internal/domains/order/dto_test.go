package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangeStateRequest_Validate(t *testing.T) {
	valid := []Status{StatusOpen, StatusPicking, StatusReadyToPack, StatusPacked}
	for _, s := range valid {
		req := ChangeStateRequest{Status: s}
		assert.NoError(t, req.Validate(), "status=%s", s)
	}

	req := ChangeStateRequest{Status: Status("shipped")}
	assert.Error(t, req.Validate())

	req = ChangeStateRequest{Status: Status("")}
	assert.Error(t, req.Validate())
}

func TestSplitRequest_Validate(t *testing.T) {
	empty := SplitRequest{}
	assert.Error(t, empty.Validate())

	nonEmpty := SplitRequest{Assignments: []LineBatchAssignment{{LineID: 1, Batch: 2}}}
	assert.NoError(t, nonEmpty.Validate())
}

func TestToDTO_CopiesFields(t *testing.T) {
	o := &Order{
		ID:           7,
		ExternalID:   "ext-7",
		Number:       "ORD-7",
		CustomerName: "Jane",
		Status:       StatusPicking,
		ReadyToPack:  false,
	}
	dto := ToDTO(o)

	assert.Equal(t, o.ID, dto.ID)
	assert.Equal(t, o.Number, dto.Number)
	assert.Equal(t, o.Status, dto.Status)
	assert.False(t, dto.ReadyToPack)
}
