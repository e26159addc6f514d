// internal/procedure/procedure_test.go
package procedure

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/table"
	"github.com/tamzrod/c12tables/internal/table/tabletest"
)

func TestDecodeResponseSentinels(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want Response
	}{
		{"empty", nil, Response{ID: Unknown, Seq: 0xFF, Result: ResultUnknown, Synthesized: FieldID | FieldSeq | FieldResult}},
		{"one byte", []byte{0x06}, Response{ID: Unknown, Seq: 0xFF, Result: ResultUnknown, Synthesized: FieldID | FieldSeq | FieldResult}},
		{"id only", []byte{0x06, 0x00}, Response{ID: 6, Seq: 0xFF, Result: ResultUnknown, Synthesized: FieldSeq | FieldResult}},
		{"no result", []byte{0x06, 0x00, 0x09}, Response{ID: 6, Seq: 9, Result: ResultUnknown, Synthesized: FieldResult}},
		{"complete", []byte{0x06, 0x00, 0x09, 0x00}, Response{ID: 6, Seq: 9, Result: Completed, Data: []byte{}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DecodeResponse(tc.in, binary.LittleEndian)
			assert.Equal(t, tc.want.ID, got.ID)
			assert.Equal(t, tc.want.Seq, got.Seq)
			assert.Equal(t, tc.want.Result, got.Result)
			assert.Equal(t, tc.want.Synthesized, got.Synthesized)
			assert.Equal(t, tc.want.Degraded(), got.Degraded())
			assert.Empty(t, got.Data)
		})
	}
}

func TestDecodeResponseData(t *testing.T) {
	// mfg procedure 3, post-immediately selector
	got := DecodeResponse([]byte{0x03, 0x38, 0x01, 0x02, 0xAA, 0xBB}, binary.LittleEndian)
	assert.Equal(t, uint16(2048+3), got.ID)
	assert.Equal(t, PostImmediately, got.Selector)
	assert.Equal(t, InvalidParameter, got.Result)
	assert.Equal(t, []byte{0xAA, 0xBB}, got.Data)
	assert.False(t, got.Degraded())
	assert.Equal(t, "mfg-3 seq=1 result=invalid-parameter data=2 bytes", got.String())
}

func TestNames(t *testing.T) {
	assert.Equal(t, "set-date-time", Name(SetDateTime))
	assert.Equal(t, "mfg-1", Name(2049))
	assert.Equal(t, "std-40", Name(40))
	assert.Equal(t, "unknown", Name(Unknown))

	id, ok := Lookup("remote-reset")
	require.True(t, ok)
	assert.Equal(t, RemoteReset, id)
	_, ok = Lookup("nope")
	assert.False(t, ok)

	assert.Equal(t, "seq|result", (FieldSeq | FieldResult).String())
	assert.Equal(t, "none", Field(0).String())
}

func TestInvokeWritesEnvelope(t *testing.T) {
	dev := tabletest.NewDevice()
	iv := NewInvoker(dev)

	require.NoError(t, iv.Invoke(context.Background(), ChangeEndDeviceMode, ChangeModeParams(0x01), 5))
	assert.Equal(t, StateSent, iv.State())
	require.Len(t, dev.Calls, 1)
	assert.Equal(t, tabletest.Call{Op: "write", ID: RequestTableID, Count: 4}, dev.Calls[0])
	assert.Equal(t, []byte{0x06, 0x00, 0x05, 0x01}, dev.Images[RequestTableID])
}

func TestInvokeRefusedWhilePending(t *testing.T) {
	dev := tabletest.NewDevice()
	iv := NewInvoker(dev)
	ctx := context.Background()

	require.NoError(t, iv.Invoke(ctx, ColdStart, nil, 1))
	err := iv.Invoke(ctx, WarmStart, nil, 2)
	require.ErrorIs(t, err, ErrBusy)
	assert.Len(t, dev.Calls, 1)
	assert.Equal(t, uint8(1), iv.Pending().Seq)

	iv.Reset()
	require.NoError(t, iv.Invoke(ctx, WarmStart, nil, 2))
}

func TestInvokeFailureStaysIdle(t *testing.T) {
	dev := tabletest.NewDevice()
	dev.FailOn = 1
	iv := NewInvoker(dev)

	err := iv.Invoke(context.Background(), ColdStart, nil, 1)
	require.ErrorIs(t, err, table.ErrCommunication)
	assert.Equal(t, StateIdle, iv.State())
	assert.Equal(t, table.Dirty, iv.RequestTable().State())
}

func TestEnvelopeTablesCapabilities(t *testing.T) {
	dev := tabletest.NewDevice()
	iv := NewInvoker(dev)
	ctx := context.Background()

	require.NoError(t, iv.Invoke(ctx, ColdStart, nil, 1))
	err := iv.RequestTable().OffsetWrite(ctx, 0, 1)
	require.ErrorIs(t, err, table.ErrUnsupportedOperation)
	err = iv.RequestTable().Read(ctx)
	require.ErrorIs(t, err, table.ErrUnsupportedOperation)

	iv.ResponseTable().MarkDirty()
	err = iv.ResponseTable().Write(ctx)
	require.ErrorIs(t, err, table.ErrUnsupportedOperation)
	assert.Len(t, dev.Calls, 1)
}

func TestPollCompleted(t *testing.T) {
	dev := tabletest.NewDevice()
	iv := NewInvoker(dev)
	ctx := context.Background()

	require.NoError(t, iv.Invoke(ctx, RemoteReset, RemoteResetParams{DemandReset: true}.Encode(), 3))
	dev.Set(ResponseTableID, []byte{0x09, 0x00, 0x03, 0x00, 0x7F})

	resp, err := iv.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, Completed, resp.Result)
	assert.Equal(t, []byte{0x7F}, resp.Data)
	assert.Equal(t, StateCompleted, iv.State())
	assert.Equal(t, resp, iv.Last())

	_, err = iv.Poll(ctx)
	require.ErrorIs(t, err, ErrNotInvoked)
}

func TestPollSequenceMismatch(t *testing.T) {
	dev := tabletest.NewDevice()
	iv := NewInvoker(dev)
	ctx := context.Background()

	require.NoError(t, iv.Invoke(ctx, ClearData, nil, 7))
	dev.Set(ResponseTableID, []byte{0x03, 0x00, 0x06, 0x00})

	_, err := iv.Poll(ctx)
	require.ErrorIs(t, err, ErrSequenceMismatch)
	assert.Equal(t, StateSent, iv.State())

	dev.Set(ResponseTableID, []byte{0x02, 0x00, 0x07, 0x00})
	_, err = iv.Poll(ctx)
	require.ErrorIs(t, err, ErrSequenceMismatch)

	dev.Set(ResponseTableID, []byte{0x03, 0x00, 0x07, 0x00})
	_, err = iv.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, iv.State())
}

func TestPollNotCompletedStaysSent(t *testing.T) {
	dev := tabletest.NewDevice()
	iv := NewInvoker(dev)
	ctx := context.Background()

	require.NoError(t, iv.Invoke(ctx, SaveConfiguration, nil, 2))
	dev.Set(ResponseTableID, []byte{0x02, 0x00, 0x02, 0x01})

	resp, err := iv.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, NotCompleted, resp.Result)
	assert.Equal(t, StateSent, iv.State())

	dev.Set(ResponseTableID, []byte{0x02, 0x00, 0x02, 0x00})
	resp, err = iv.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, Completed, resp.Result)
	assert.Equal(t, StateCompleted, iv.State())
}

func TestPollDegraded(t *testing.T) {
	dev := tabletest.NewDevice()
	iv := NewInvoker(dev)
	ctx := context.Background()

	require.NoError(t, iv.Invoke(ctx, WarmStart, nil, 4))
	dev.Set(ResponseTableID, []byte{0x01, 0x00})

	resp, err := iv.Poll(ctx)
	require.NoError(t, err)
	assert.True(t, resp.Degraded())
	assert.Equal(t, FieldSeq|FieldResult, resp.Synthesized)
	assert.Equal(t, ResultUnknown, resp.Result)
	assert.Equal(t, StateDegraded, iv.State())

	// a degraded response is consumed
	require.NoError(t, iv.Invoke(ctx, WarmStart, nil, 5))
}

func TestCallUsesFreshSequence(t *testing.T) {
	dev := tabletest.NewDevice()
	iv := NewInvoker(dev)
	dev.Set(ResponseTableID, []byte{0x00, 0x00, 0x01, 0x00})

	resp, err := iv.Call(context.Background(), ColdStart, nil)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), resp.Seq)
	assert.Equal(t, []string{"write", "full-read"}, dev.Ops())
	assert.Equal(t, uint8(2), iv.NextSeq())
}

func TestSetDateTimeParams(t *testing.T) {
	ts := time.Date(2026, 10, 19, 13, 45, 30, 0, time.UTC) // Monday
	p := SetDateTimeParams{SetTime: true, SetDate: true, Time: ts, DST: true, GMT: true}

	b, err := p.Encode(cursor.TimeUint8, binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 26, 10, 19, 13, 45, 30, 0x19}, b)

	b, err = p.Encode(cursor.TimeBCD, binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x26, 0x10, 0x19, 0x13, 0x45, 0x30, 0x19}, b)

	b, err = SetDateTimeParams{SetQualifier: true, Time: ts}.Encode(cursor.TimeUint32Sec, binary.LittleEndian)
	require.NoError(t, err)
	require.Len(t, b, 6)
	assert.Equal(t, uint8(0x04), b[0])
	assert.Equal(t, uint32(ts.Unix()), binary.LittleEndian.Uint32(b[1:5]))
	assert.Equal(t, uint8(0x01), b[5])
}

func TestOtherParams(t *testing.T) {
	assert.Equal(t, []byte{0x1D}, RemoteResetParams{DemandReset: true, SeasonChange: true, NewSeason: 3}.Encode())
	assert.Equal(t, []byte{0x02}, RemoteResetParams{SelfRead: true}.Encode())
	assert.Equal(t, []byte{0x01, 0x34, 0x12}, UpdateLastReadParams(1, 0x1234, binary.LittleEndian))
	assert.Equal(t, []byte{0x01, 0x12, 0x34}, UpdateLastReadParams(1, 0x1234, binary.BigEndian))
	assert.Equal(t, []byte{0x02}, ResetListParams(2))
}
