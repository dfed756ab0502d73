package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTaskStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    TaskStatus
		wantErr error
	}{
		{in: "pending", want: StatusPending},
		{in: "done", want: StatusDone},
		{in: "", wantErr: ErrInvalidStatus},
		{in: "Done", wantErr: ErrInvalidStatus},
		{in: "archived", wantErr: ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTaskStatus(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr error
	}{
		{name: "minimal task", task: Task{CollectionID: 1}},
		{name: "done task", task: Task{CollectionID: 1, Order: 3, Status: StatusDone}},
		{name: "missing collection", task: Task{}, wantErr: ErrInvalidData},
		{name: "negative order", task: Task{CollectionID: 1, Order: -1}, wantErr: ErrInvalidOrder},
		{name: "unknown status", task: Task{CollectionID: 1, Status: "blocked"}, wantErr: ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBoardAndCollectionValidate(t *testing.T) {
	assert.NoError(t, Board{Name: "Work"}.Validate())
	assert.ErrorIs(t, Board{Name: "   "}.Validate(), ErrInvalidName)

	assert.NoError(t, Collection{BoardID: 2, Name: "Todo"}.Validate())
	assert.ErrorIs(t, Collection{BoardID: 2}.Validate(), ErrInvalidName)
	assert.ErrorIs(t, Collection{Name: "Todo"}.Validate(), ErrInvalidData)
}
