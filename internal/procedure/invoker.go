// internal/procedure/invoker.go
package procedure

import (
	"context"
	"errors"
	"fmt"

	"github.com/tamzrod/c12tables/internal/logging"
	"github.com/tamzrod/c12tables/internal/table"
)

var (
	// ErrBusy is returned by Invoke while an earlier response is unconsumed.
	ErrBusy = errors.New("procedure: response pending")

	// ErrNotInvoked is returned by Poll with nothing outstanding.
	ErrNotInvoked = errors.New("procedure: nothing invoked")

	// ErrSequenceMismatch is returned by Poll when table 8 still holds the
	// response to some other request.
	ErrSequenceMismatch = errors.New("procedure: sequence mismatch")
)

// State of an Invoker.
//
//	StateIdle --Invoke--> StateSent --Poll--> StateCompleted | StateDegraded
//
// Poll leaves the invoker StateSent while the response is for another request
// or reports NotCompleted.
type State uint8

const (
	StateIdle State = iota
	StateSent
	StateCompleted
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSent:
		return "sent"
	case StateCompleted:
		return "completed"
	case StateDegraded:
		return "degraded"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Invoker runs procedures through tables 7 and 8, one at a time.
type Invoker struct {
	req     *table.Table
	reqRec  requestRecord
	resp    *table.Table
	respRec responseRecord
	log     logging.Logger

	state   State
	pending Request
	last    Response
	seq     uint8
}

// NewInvoker binds tables 7 and 8 on tr. Table 7 only takes whole writes;
// table 8 takes whatever size the device returns.
func NewInvoker(tr table.Transport, opts ...table.Option) *Invoker {
	iv := &Invoker{}
	reqOpts := append([]table.Option{table.WithVariableSize(), table.WithCapabilities(table.CapWrite)}, opts...)
	respOpts := append([]table.Option{table.WithVariableSize(), table.WithCapabilities(table.CapReadOnly)}, opts...)
	iv.req = table.New(tr, RequestTableID, 0, &iv.reqRec, reqOpts...)
	iv.resp = table.New(tr, ResponseTableID, 0, &iv.respRec, respOpts...)
	iv.log = iv.req.Logger()
	return iv
}

func (iv *Invoker) State() State                { return iv.state }
func (iv *Invoker) Pending() Request            { return iv.pending }
func (iv *Invoker) Last() Response              { return iv.last }
func (iv *Invoker) RequestTable() *table.Table  { return iv.req }
func (iv *Invoker) ResponseTable() *table.Table { return iv.resp }

// NextSeq returns a fresh sequence number for Invoke.
func (iv *Invoker) NextSeq() uint8 {
	iv.seq++
	return iv.seq
}

// Reset abandons an outstanding request.
func (iv *Invoker) Reset() {
	iv.state = StateIdle
	iv.pending = Request{}
}

// Invoke writes the request envelope for procedure id. It refuses while
// a previous request is outstanding.
func (iv *Invoker) Invoke(ctx context.Context, id uint16, params []byte, seq uint8) error {
	return iv.Send(ctx, Request{ID: id, Seq: seq, Params: params})
}

// Send writes a prepared request envelope.
func (iv *Invoker) Send(ctx context.Context, r Request) error {
	if iv.state == StateSent {
		return fmt.Errorf("%w: %s seq %d", ErrBusy, Name(iv.pending.ID), iv.pending.Seq)
	}
	r.Params = append([]byte(nil), r.Params...)
	iv.reqRec.req = r
	if err := iv.req.SetSize(r.size()); err != nil {
		return err
	}
	iv.req.MarkDirty()
	if err := iv.req.Write(ctx); err != nil {
		return err
	}
	iv.pending = r
	iv.state = StateSent
	iv.log.Debug("procedure sent", "proc", Name(r.ID), "seq", r.Seq, "params", len(r.Params))
	return nil
}

// Poll reads table 8 and matches it against the outstanding request.
func (iv *Invoker) Poll(ctx context.Context) (Response, error) {
	if iv.state != StateSent {
		return Response{}, ErrNotInvoked
	}
	iv.resp.Invalidate()
	if err := iv.resp.Read(ctx); err != nil {
		return Response{}, err
	}
	r := iv.respRec.resp

	if r.Synthesized&FieldID == 0 && r.ID != iv.pending.ID ||
		r.Synthesized&FieldSeq == 0 && r.Seq != iv.pending.Seq {
		iv.log.Debug("stale procedure response", "want", iv.pending.Seq, "got", r.Seq, "proc", Name(r.ID))
		return r, fmt.Errorf("%w: want %s seq %d, got %s seq %d",
			ErrSequenceMismatch, Name(iv.pending.ID), iv.pending.Seq, Name(r.ID), r.Seq)
	}

	iv.last = r
	switch {
	case r.Degraded():
		iv.state = StateDegraded
		iv.log.Warn("degraded procedure response", "proc", Name(iv.pending.ID), "synthesized", r.Synthesized.String())
	case r.Result == NotCompleted:
		// still running
	default:
		iv.state = StateCompleted
	}
	return r, nil
}

// Call invokes id with a fresh sequence number and polls once.
func (iv *Invoker) Call(ctx context.Context, id uint16, params []byte) (Response, error) {
	if err := iv.Invoke(ctx, id, params, iv.NextSeq()); err != nil {
		return Response{}, err
	}
	return iv.Poll(ctx)
}
