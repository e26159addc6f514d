// internal/bitfield/bitfield_test.go
package bitfield

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/c12tables/internal/table"
)

func TestContainsBoundGuard(t *testing.T) {
	bm := []byte{0xFF, 0xFF, 0xFF}
	for id := 0; id <= 0xFFFF; id++ {
		got := Contains(uint16(id), 3, bm)
		if id < 24 {
			require.True(t, got, "id %d", id)
		} else {
			require.False(t, got, "id %d", id)
		}
	}

	// declared width larger than what was fetched
	assert.False(t, Contains(8, 3, []byte{0xFF}))
	assert.False(t, Contains(0, 0, nil))
	assert.False(t, Contains(65535, 8192, make([]byte, 10)))
}

func TestContainsBitOrder(t *testing.T) {
	bm := []byte{0b1000_0000, 0b0000_0001}
	assert.True(t, Contains(7, 2, bm))
	assert.False(t, Contains(6, 2, bm))
	assert.True(t, Contains(8, 2, bm))
	assert.False(t, Contains(9, 2, bm))
}

func TestSetAndClearBit(t *testing.T) {
	bm := make([]byte, 2)
	require.True(t, SetBit(9, 2, bm))
	assert.Equal(t, []byte{0, 0x02}, bm)
	assert.False(t, SetBit(16, 2, bm))
	require.True(t, ClearBit(9, 2, bm))
	assert.Equal(t, []byte{0, 0}, bm)
}

func TestSetRoutesByBias(t *testing.T) {
	s := NewSet(2, 1)
	require.True(t, s.SetBit(3))
	require.True(t, s.SetBit(Bias+5))
	assert.False(t, s.SetBit(Bias+8))

	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(5))
	assert.True(t, s.Contains(Bias+5))
	assert.False(t, s.Contains(Bias+3))
	assert.Equal(t, []uint16{3, Bias + 5}, s.IDs())

	require.True(t, s.ClearBit(Bias+5))
	assert.Equal(t, []uint16{3}, s.IDs())
}

func TestCalendarRoundTrip(t *testing.T) {
	for typ := Holiday; typ <= MaxCalendarType; typ++ {
		for month := uint8(0); month < 12; month++ {
			for day := uint8(0); day < 31; day++ {
				e, ok := NewCalendarEvent(typ, month, day)
				require.True(t, ok)
				require.True(t, e.Defined())
				require.Equal(t, typ, e.Type())
				require.Equal(t, month, e.Month())
				require.Equal(t, day, e.Day())
			}
		}
	}
}

func TestCalendarLayout(t *testing.T) {
	e, ok := NewCalendarEvent(Season2, 11, 30)
	require.True(t, ok)
	// type 4, month 11 << 4, day 30 << 8, defined bits
	assert.Equal(t, CalendarEvent(0xC000|30<<8|11<<4|4), e)
	assert.Equal(t, "season-2 12-31", e.String())
}

func TestCalendarOutOfDomainLeavesWord(t *testing.T) {
	e, _ := NewCalendarEvent(DSTOn, 2, 9)
	before := e

	assert.False(t, e.SetMonth(12))
	assert.False(t, e.SetDay(31))
	assert.False(t, e.SetType(MaxCalendarType+1))
	assert.Equal(t, before, e)

	_, ok := NewCalendarEvent(Holiday, 12, 0)
	assert.False(t, ok)
}

func TestCalendarStrictSetters(t *testing.T) {
	var e CalendarEvent
	require.NoError(t, e.StrictSetMonth(5))
	assert.True(t, e.Defined())
	assert.Equal(t, uint8(5), e.Month())

	err := e.StrictSetDay(40)
	assert.ErrorIs(t, err, table.ErrInvalidFieldValue)
	assert.ErrorIs(t, e.StrictSetType(15), table.ErrInvalidFieldValue)
	assert.ErrorIs(t, e.StrictSetMonth(12), table.ErrInvalidFieldValue)
	assert.Equal(t, uint8(0), e.Day())

	e.Undefine()
	assert.False(t, e.Defined())
}

func TestDayEventLayout(t *testing.T) {
	e, ok := NewDayEvent(Output2, 23, 59)
	require.True(t, ok)
	assert.Equal(t, DayEvent(23<<10|59<<4|8), e)
	assert.Equal(t, Output2, e.Type())
	assert.Equal(t, uint8(23), e.Hour())
	assert.Equal(t, uint8(59), e.Minute())

	_, ok = NewDayEvent(Rate1, 24, 0)
	assert.False(t, ok)
	_, ok = NewDayEvent(DayEventType(12), 1, 0)
	assert.False(t, ok)
}

func TestDayEventSetters(t *testing.T) {
	e, _ := NewDayEvent(Rate3, 6, 30)
	before := e
	assert.False(t, e.SetMinute(60))
	assert.False(t, e.SetHour(24))
	assert.False(t, e.SetType(DayEventType(11)))
	assert.Equal(t, before, e)

	require.True(t, e.SetType(NoMoreChanges))
	assert.True(t, e.IsTerminator())

	assert.ErrorIs(t, e.StrictSetMinute(99), table.ErrInvalidFieldValue)
	require.NoError(t, e.StrictSetHour(7))
	assert.Equal(t, uint8(7), e.Hour())
}

func ev(t *testing.T, typ DayEventType, h, m uint8) DayEvent {
	t.Helper()
	e, ok := NewDayEvent(typ, h, m)
	require.True(t, ok)
	return e
}

func TestSortDayEvents(t *testing.T) {
	// terminator time bits read as 00:00 but it still sorts last
	term := Terminator

	events := []DayEvent{
		ev(t, Rate2, 17, 0),
		term,
		ev(t, Rate1, 6, 30),
		ev(t, Rate3, 6, 30),
		ev(t, Rate1, 0, 0),
	}
	SortDayEvents(events)
	assert.Equal(t, []DayEvent{
		ev(t, Rate1, 0, 0),
		ev(t, Rate1, 6, 30),
		ev(t, Rate3, 6, 30),
		ev(t, Rate2, 17, 0),
		term,
	}, events)

	again := append([]DayEvent(nil), events...)
	SortDayEvents(again)
	assert.Equal(t, events, again)
}

func TestSortDayEventsPermutations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		events := make([]DayEvent, 1+rng.Intn(8))
		for i := range events {
			events[i] = ev(t, DayEventType(rng.Intn(int(MaxDayEventType)+1)), uint8(rng.Intn(24)), uint8(rng.Intn(60)))
		}
		events = append(events, Terminator, Terminator)
		rng.Shuffle(len(events), func(i, j int) { events[i], events[j] = events[j], events[i] })

		SortDayEvents(events)
		for i := 1; i < len(events); i++ {
			require.LessOrEqual(t, CompareDayEvents(events[i-1], events[i]), 0)
		}
		require.True(t, events[len(events)-1].IsTerminator())
		require.True(t, events[len(events)-2].IsTerminator())

		sorted := append([]DayEvent(nil), events...)
		SortDayEvents(sorted)
		require.Equal(t, events, sorted)
	}
}

func TestTableIDB(t *testing.T) {
	idb := NewTableIDB(Bias+70, 2)
	assert.True(t, idb.Mfg())
	assert.Equal(t, uint16(70), idb.Number())
	assert.Equal(t, uint8(2), idb.Selector())
	assert.Equal(t, uint16(Bias+70), idb.ID())
	assert.Equal(t, TableIDB(0x2000|0x0800|70), idb)

	std := NewTableIDB(10, 0)
	assert.False(t, std.Mfg())
	assert.Equal(t, uint16(10), std.ID())
}
