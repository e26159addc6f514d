// internal/procedure/envelope.go
package procedure

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/tamzrod/c12tables/internal/bitfield"
	"github.com/tamzrod/c12tables/internal/cursor"
)

// Request is the table 7 envelope.
type Request struct {
	ID       uint16 // biased procedure id
	Selector Selector
	Seq      uint8
	Params   []byte
}

func (r Request) IDB() bitfield.TableIDB {
	return bitfield.NewTableIDB(r.ID, uint8(r.Selector))
}

func (r Request) size() int { return 3 + len(r.Params) }

type requestRecord struct {
	req Request
}

func (r *requestRecord) Decode(c *cursor.Cursor) error {
	if c.Len() == 0 {
		r.req = Request{}
		return nil
	}
	v, err := c.ReadUint16()
	if err != nil {
		return err
	}
	idb := bitfield.TableIDB(v)
	r.req.ID, r.req.Selector = idb.ID(), Selector(idb.Selector())
	if r.req.Seq, err = c.ReadUint8(); err != nil {
		return err
	}
	r.req.Params, err = c.ReadBytes(c.Remaining())
	return err
}

func (r *requestRecord) Encode(c *cursor.Cursor) error {
	if err := c.WriteUint16(uint16(r.req.IDB())); err != nil {
		return err
	}
	if err := c.WriteUint8(r.req.Seq); err != nil {
		return err
	}
	return c.WriteBytes(r.req.Params, len(r.req.Params))
}

// Field flags a response field.
type Field uint8

const (
	FieldID Field = 1 << iota
	FieldSeq
	FieldResult
)

func (f Field) String() string {
	var parts []string
	for _, x := range []struct {
		f    Field
		name string
	}{{FieldID, "id"}, {FieldSeq, "seq"}, {FieldResult, "result"}} {
		if f&x.f != 0 {
			parts = append(parts, x.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Response is the table 8 envelope. Fields missing from a short response
// hold sentinels (Unknown, 0xFF, ResultUnknown) and are flagged in
// Synthesized.
type Response struct {
	ID          uint16
	Selector    Selector
	Seq         uint8
	Result      Result
	Data        []byte
	Synthesized Field
}

// Degraded reports whether any field had to be synthesized.
func (r Response) Degraded() bool { return r.Synthesized != 0 }

func (r Response) String() string {
	s := fmt.Sprintf("%s seq=%d result=%s data=%d bytes", Name(r.ID), r.Seq, r.Result, len(r.Data))
	if r.Degraded() {
		s += " synthesized=" + r.Synthesized.String()
	}
	return s
}

// DecodeResponse decodes whatever bytes the device returned. It never
// fails: missing fields get sentinels.
func DecodeResponse(b []byte, order binary.ByteOrder) Response {
	return decodeResponse(cursor.New(b, order))
}

func decodeResponse(c *cursor.Cursor) Response {
	resp := Response{ID: Unknown, Seq: 0xFF, Result: ResultUnknown}

	v, err := c.ReadUint16()
	if err != nil {
		resp.Synthesized = FieldID | FieldSeq | FieldResult
		return resp
	}
	idb := bitfield.TableIDB(v)
	resp.ID, resp.Selector = idb.ID(), Selector(idb.Selector())

	seq, err := c.ReadUint8()
	if err != nil {
		resp.Synthesized = FieldSeq | FieldResult
		return resp
	}
	resp.Seq = seq

	res, err := c.ReadUint8()
	if err != nil {
		resp.Synthesized = FieldResult
		return resp
	}
	resp.Result = Result(res)

	resp.Data, _ = c.ReadBytes(c.Remaining())
	return resp
}

type responseRecord struct {
	resp Response
}

func (r *responseRecord) Decode(c *cursor.Cursor) error {
	r.resp = decodeResponse(c)
	return nil
}

// Encode rebuilds a complete envelope from the decoded fields.
func (r *responseRecord) Encode(c *cursor.Cursor) error {
	if err := c.WriteUint16(uint16(bitfield.NewTableIDB(r.resp.ID, uint8(r.resp.Selector)))); err != nil {
		return err
	}
	if err := c.WriteUint8(r.resp.Seq); err != nil {
		return err
	}
	if err := c.WriteUint8(uint8(r.resp.Result)); err != nil {
		return err
	}
	return c.WriteBytes(r.resp.Data, len(r.resp.Data))
}
