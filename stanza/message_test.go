package stanza

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageAnswer(t *testing.T) {
	req := &Message{Type: TypeSet, ID: "abc", From: "a@x", To: "b@x", SI: &SI{ID: "s1"}}

	reply := req.Answer(TypeResult)
	assert.Equal(t, TypeResult, reply.Type)
	assert.Equal(t, "abc", reply.ID)
	assert.Equal(t, JID("b@x"), reply.From)
	assert.Equal(t, JID("a@x"), reply.To)
	assert.Nil(t, reply.SI)

	errReply := req.ErrorAnswer(ErrorTypeCancel, ConditionBadRequest, "nope")
	require.NotNil(t, errReply.Error)
	assert.Equal(t, 400, errReply.Error.Code())
	assert.Equal(t, "bad-request (nope)", errReply.Error.String())
}

func TestMessageCloneIsDeep(t *testing.T) {
	date := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	orig := &Message{
		Type: TypeSet,
		ID:   "c1",
		SI: &SI{
			ID: "s1",
			File: &File{
				Name:  "a.bin",
				Date:  &date,
				Range: &Range{Offset: Uint64(5), Length: Uint64(10)},
			},
			Feature: &FeatureForm{Type: FormTypeForm, StreamMethods: []string{"m1", "m2"}},
		},
		Error:  &Error{Condition: ConditionForbidden},
		Expire: &Expire{Seconds: 60},
	}

	c := orig.Clone()
	require.Equal(t, orig, c)

	*c.SI.File.Range.Offset = 99
	c.SI.Feature.StreamMethods[0] = "changed"
	c.SI.File.Name = "b.bin"
	c.Error.Condition = ConditionBadRequest
	c.Expire.Seconds = 1

	assert.Equal(t, uint64(5), *orig.SI.File.Range.Offset)
	assert.Equal(t, "m1", orig.SI.Feature.StreamMethods[0])
	assert.Equal(t, "a.bin", orig.SI.File.Name)
	assert.Equal(t, ConditionForbidden, orig.Error.Condition)
	assert.Equal(t, uint32(60), orig.Expire.Seconds)

	assert.Nil(t, (*Message)(nil).Clone())
}

func TestRangeIsZero(t *testing.T) {
	var nilRange *Range
	assert.True(t, nilRange.IsZero())
	assert.True(t, (&Range{}).IsZero())
	assert.False(t, (&Range{Length: Uint64(1)}).IsZero())
}

func TestErrorCodeUnknownCondition(t *testing.T) {
	e := &Error{Condition: "something-new", AppCondition: AppConditionNoValidStreams}
	assert.Equal(t, 500, e.Code())
	assert.Equal(t, "something-new/no-valid-streams", e.String())
}

func TestNewExpire(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want uint32
	}{
		{"zero uses default", 0, DefaultExpireSeconds},
		{"negative uses default", -time.Second, DefaultExpireSeconds},
		{"truncates", 1500 * time.Millisecond, 1},
		{"hour", time.Hour, 3600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExpire(tt.in)
			assert.Equal(t, tt.want, e.Seconds)
			assert.Equal(t, time.Duration(tt.want)*time.Second, e.Duration())
		})
	}

	var nilExpire *Expire
	assert.Zero(t, nilExpire.Duration())
}

func TestUUIDGeneratorUnique(t *testing.T) {
	g := UUIDGenerator{}
	a, b := g.NewID(), g.NewID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)

	fixed := IDGeneratorFunc(func() string { return "fixed" })
	assert.Equal(t, "fixed", fixed.NewID())
}
