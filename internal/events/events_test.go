package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Publish(_ context.Context, evt Event) error {
	r.got = append(r.got, evt)
	return r.err
}

func TestFanout(t *testing.T) {
	t.Parallel()

	kafkaErr := errors.New("kafka down")
	ok := &recorder{}
	failing := &recorder{err: kafkaErr}

	err := Fanout{failing, ok}.Publish(context.Background(), Event{ID: "e1", Type: SessionStarted})
	require.ErrorIs(t, err, kafkaErr)

	require.Len(t, ok.got, 1)
	assert.Equal(t, "e1", ok.got[0].ID)
	assert.Len(t, failing.got, 1)

	assert.NoError(t, Fanout{}.Publish(context.Background(), Event{}))
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{}))
}
