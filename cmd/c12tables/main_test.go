// cmd/c12tables/main_test.go
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/c12tables/internal/bitfield"
	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/logging"
	"github.com/tamzrod/c12tables/internal/poller"
	"github.com/tamzrod/c12tables/internal/procedure"
	"github.com/tamzrod/c12tables/internal/recorder"
	"github.com/tamzrod/c12tables/internal/stdtable"
	"github.com/tamzrod/c12tables/internal/table"
	"github.com/tamzrod/c12tables/internal/transport/replay"
)

// seedCapture writes a minimal table 0 and table 3 into a file store and
// returns a config file replaying it.
func seedCapture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "db")

	dims := stdtable.Dimensions{StdTables: 1, MfgTables: 0, StdProcs: 2, MfgProcs: 0, MfgStatus: 1, Pending: 0}
	h := stdtable.Header{
		Format:       stdtable.FormatControl{TimeFormat: cursor.TimeUint8},
		Manufacturer: "ITRN",
		StdVersion:   2,
		Dims:         dims,
		Tables:       bitfield.NewSet(dims.StdTables, dims.MfgTables),
		Procedures:   bitfield.NewSet(dims.StdProcs, dims.MfgProcs),
		Writable:     bitfield.NewSet(dims.StdTables, dims.MfgTables),
	}
	h.Tables.SetBit(0)
	h.Tables.SetBit(3)
	img := make([]byte, h.Size())
	require.NoError(t, h.Encode(cursor.New(img, h.Format.ByteOrder())))

	mode := make([]byte, dims.ModeStatusSize())
	mode[0] = 0x01 // metering

	store, err := replay.Open(dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, store.Put("site", stdtable.GeneralConfigID, img))
	require.NoError(t, store.Put("site", stdtable.ModeStatusID, mode))
	require.NoError(t, store.Close())

	cfgPath := filepath.Join(dir, "c12tables.yaml")
	doc := fmt.Sprintf("transport:\n  kind: replay\n  replay:\n    path: %q\n    capture: site\nlog:\n  level: error\n", dbPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(doc), 0o644))
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// ---- tests ----

func TestParseTableID(t *testing.T) {
	id, err := parseTableID("2048")
	require.NoError(t, err)
	assert.Equal(t, uint16(2048), id)

	id, err = parseTableID("0x800")
	require.NoError(t, err)
	assert.Equal(t, uint16(2048), id)

	_, err = parseTableID("70000")
	require.Error(t, err)
}

func TestParseProcedure(t *testing.T) {
	id, err := parseProcedure("remote-reset")
	require.NoError(t, err)
	assert.Equal(t, procedure.RemoteReset, id)

	id, err = parseProcedure("2049")
	require.NoError(t, err)
	assert.Equal(t, uint16(2049), id)

	_, err = parseProcedure("reboot")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "c12tables dev")
}

func TestReadAndHeaderFromCapture(t *testing.T) {
	cfgPath := seedCapture(t)

	out, err := run(t, "--config", cfgPath, "read", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "table 0 (")
	assert.Contains(t, out, "ITRN")

	out, err = run(t, "--config", cfgPath, "header")
	require.NoError(t, err)
	assert.Contains(t, out, "manufacturer:   ITRN")
	assert.Contains(t, out, "[0 3]")
}

func TestStatusFromCapture(t *testing.T) {
	cfgPath := seedCapture(t)

	out, err := run(t, "--config", cfgPath, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Device is metering")
}

func TestReadMissingTableFails(t *testing.T) {
	cfgPath := seedCapture(t)

	_, err := run(t, "--config", cfgPath, "read", "9")
	require.ErrorIs(t, err, table.ErrCommunication)
}

func TestCapturesCommand(t *testing.T) {
	cfgPath := seedCapture(t)
	dbPath := filepath.Join(filepath.Dir(cfgPath), "db")

	out, err := run(t, "captures", "--path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "site tables=[0 3]")

	_, err = run(t, "captures", "--path", dbPath, "--drop", "site")
	require.NoError(t, err)
	out, err = run(t, "captures", "--path", dbPath)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestOrchestrateRecordsResults(t *testing.T) {
	store, err := replay.OpenInMemory(nil)
	require.NoError(t, err)
	defer store.Close()
	rec, err := recorder.New(store, "cap", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan poller.PollResult)
	done := make(chan struct{})
	go func() {
		orchestrate(ctx, in, rec, logging.Nop)
		close(done)
	}()

	in <- poller.PollResult{DeviceID: "d", At: time.Now(), Tables: []poller.TableImage{{ID: 3, Data: []byte{1}}}}
	in <- poller.PollResult{DeviceID: "d", Err: table.ErrCommunication, RawErrorCode: table.CodeComm}
	cancel()
	<-done

	img, err := store.Get("cap", 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, img)
}
